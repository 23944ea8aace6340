package notify

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/podium-ml/podium/internal/leaderboard"
)

var _ leaderboard.Observer = (*PrometheusObserver)(nil)

// PrometheusObserver implements the leaderboard.Observer interface
// using Prometheus. It provides real-time monitoring of report volume,
// latency, leadership churn, and leaderboard size.
type PrometheusObserver struct {
	reportsTotal       *prometheus.CounterVec
	leaderChangesTotal *prometheus.CounterVec
	reportDuration     *prometheus.HistogramVec
	leaderboardSize    *prometheus.GaugeVec
}

// NewPrometheusObserver creates a PrometheusObserver and registers all
// metrics with the given registerer. A nil registerer uses the default
// global registry.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &PrometheusObserver{
		reportsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaderboard_reports_total",
				Help: "Total number of report operations, by outcome.",
			},
			[]string{"project", "outcome"},
		),
		leaderChangesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaderboard_leader_changes_total",
				Help: "Total number of leadership changes.",
			},
			[]string{"project"},
		),
		reportDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "leaderboard_report_duration_seconds",
				Help:    "End-to-end duration of report operations, including store retries.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"project"},
		),
		leaderboardSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "leaderboard_size",
				Help: "Number of ranked artifacts after the latest committed report.",
			},
			[]string{"project"},
		),
	}
}

// ReportStart implements leaderboard.Observer. Prometheus needs no
// per-operation state, so the context passes through unchanged.
func (o *PrometheusObserver) ReportStart(ctx context.Context, _ string, _ int) context.Context {
	return ctx
}

// ReportEnd implements leaderboard.Observer by recording the outcome.
func (o *PrometheusObserver) ReportEnd(_ context.Context, project string, result *leaderboard.ReportResult, err error, elapsed time.Duration) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	if result != nil {
		o.leaderboardSize.WithLabelValues(project).Set(float64(result.Record.Len()))
		if result.LeaderChanged {
			o.leaderChangesTotal.WithLabelValues(project).Inc()
		}
	}
	o.reportsTotal.WithLabelValues(project, outcome).Inc()
	o.reportDuration.WithLabelValues(project).Observe(elapsed.Seconds())
}
