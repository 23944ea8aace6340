package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podium-ml/podium/internal/domain"
	"github.com/podium-ml/podium/internal/ports"
)

func newJSONLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestSlogNotifier_NewLeader(t *testing.T) {
	var buf bytes.Buffer
	n := NewSlogNotifier(newJSONLogger(&buf))

	n.NewLeader(context.Background(), "model_B", "iris")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "leaderboard leader changed", entry["msg"])
	assert.Equal(t, "iris", entry["project"])
	assert.Equal(t, "model_B", entry["artifact"])
	assert.NotEmpty(t, entry["event_id"])
}

func TestSlogNotifier_SnapshotUpdated(t *testing.T) {
	var buf bytes.Buffer
	n := NewSlogNotifier(newJSONLogger(&buf))

	rec := domain.NewRecord("iris")
	rec.SortMetric = "auc"
	rec.ArtifactRefs = []domain.ArtifactRef{"model_B", "model_A"}
	n.SnapshotUpdated(context.Background(), rec)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "leaderboard snapshot updated", entry["msg"])
	assert.Equal(t, float64(2), entry["size"])
	assert.Equal(t, "model_B", entry["leader"])
	assert.Equal(t, "auc", entry["sort_metric"])
}

type countingNotifier struct {
	leaders   int
	snapshots int
}

func (c *countingNotifier) NewLeader(context.Context, domain.ArtifactRef, string) { c.leaders++ }
func (c *countingNotifier) SnapshotUpdated(context.Context, *domain.Record)       { c.snapshots++ }

func TestFanoutNotifier_DeliversToAll(t *testing.T) {
	first := &countingNotifier{}
	second := &countingNotifier{}
	fanout := FanoutNotifier{first, second}

	ctx := context.Background()
	fanout.NewLeader(ctx, "model_A", "iris")
	fanout.SnapshotUpdated(ctx, domain.NewRecord("iris"))

	for _, c := range []*countingNotifier{first, second} {
		assert.Equal(t, 1, c.leaders)
		assert.Equal(t, 1, c.snapshots)
	}

	// Empty fanout is a safe no-op.
	var empty FanoutNotifier
	empty.NewLeader(ctx, "model_A", "iris")
}

func TestSlogFeedback(t *testing.T) {
	var buf bytes.Buffer
	var fb ports.Feedback = NewSlogFeedback(newJSONLogger(&buf))

	fb.Warn(context.Background(), "artifact in the leaderboard has unexpectedly been deleted",
		"project", "iris", "artifact", "model_C")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "model_C", entry["artifact"])
}
