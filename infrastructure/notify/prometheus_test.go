package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/podium-ml/podium/internal/domain"
	"github.com/podium-ml/podium/internal/leaderboard"
)

func TestPrometheusObserver_RecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPrometheusObserver(reg)
	ctx := context.Background()

	rec := domain.NewRecord("iris")
	rec.ArtifactRefs = []domain.ArtifactRef{"model_B", "model_A"}
	rec.MetricValues = []float64{0.9, 0.8}

	ctx = obs.ReportStart(ctx, "iris", 1)
	obs.ReportEnd(ctx, "iris", &leaderboard.ReportResult{
		Record:        rec,
		LeaderChanged: true,
		Leader:        "model_B",
	}, nil, 25*time.Millisecond)

	obs.ReportEnd(ctx, "iris", nil, errors.New("store down"), 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		obs.reportsTotal.WithLabelValues("iris", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		obs.reportsTotal.WithLabelValues("iris", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		obs.leaderChangesTotal.WithLabelValues("iris")))
	assert.Equal(t, 2.0, testutil.ToFloat64(
		obs.leaderboardSize.WithLabelValues("iris")))
}

func TestPrometheusObserver_NoLeaderChange(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPrometheusObserver(reg)

	rec := domain.NewRecord("iris")
	rec.ArtifactRefs = []domain.ArtifactRef{"model_A"}

	obs.ReportEnd(context.Background(), "iris", &leaderboard.ReportResult{
		Record: rec,
		Leader: "model_A",
	}, nil, time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(
		obs.leaderChangesTotal.WithLabelValues("iris")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		obs.reportsTotal.WithLabelValues("iris", "success")))
}
