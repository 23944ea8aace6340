package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/podium-ml/podium/internal/domain"
	"github.com/podium-ml/podium/internal/ports"
)

// LeaderEvent describes a leadership change for external consumers.
type LeaderEvent struct {
	// ID uniquely identifies this event instance.
	ID string `json:"id"`

	// Project is the leaderboard project the change occurred in.
	Project string `json:"project"`

	// Artifact is the new top-ranked artifact reference.
	Artifact domain.ArtifactRef `json:"artifact"`

	// OccurredAt records when the change was observed post-commit.
	OccurredAt time.Time `json:"occurred_at"`
}

var _ ports.Notifier = (*SlogNotifier)(nil)

// SlogNotifier mirrors leaderboard events into structured logs. It is
// the default sink when no dashboard feed is attached.
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier creates a log-backed notifier. A nil logger falls
// back to slog.Default.
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogNotifier{logger: logger}
}

// NewLeader implements ports.Notifier.
func (n *SlogNotifier) NewLeader(ctx context.Context, ref domain.ArtifactRef, project string) {
	event := LeaderEvent{
		ID:         uuid.NewString(),
		Project:    project,
		Artifact:   ref,
		OccurredAt: time.Now().UTC(),
	}
	n.logger.InfoContext(ctx, "leaderboard leader changed",
		"event_id", event.ID,
		"project", event.Project,
		"artifact", string(event.Artifact),
	)
}

// SnapshotUpdated implements ports.Notifier.
func (n *SlogNotifier) SnapshotUpdated(ctx context.Context, record *domain.Record) {
	leader, _ := record.Leader()
	n.logger.DebugContext(ctx, "leaderboard snapshot updated",
		"project", record.Project,
		"size", record.Len(),
		"leader", string(leader),
		"sort_metric", record.SortMetric,
	)
}

var _ ports.Notifier = (FanoutNotifier)(nil)

// FanoutNotifier delivers every event to each wrapped notifier in
// order. Delivery is sequential; a slow sink delays the ones after it.
type FanoutNotifier []ports.Notifier

// NewLeader implements ports.Notifier.
func (f FanoutNotifier) NewLeader(ctx context.Context, ref domain.ArtifactRef, project string) {
	for _, n := range f {
		n.NewLeader(ctx, ref, project)
	}
}

// SnapshotUpdated implements ports.Notifier.
func (f FanoutNotifier) SnapshotUpdated(ctx context.Context, record *domain.Record) {
	for _, n := range f {
		n.SnapshotUpdated(ctx, record)
	}
}
