package ports

import (
	"context"

	"github.com/podium-ml/podium/internal/domain"
)

// Notifier receives leaderboard events after a successful commit.
// Notifications are delivered outside the atomic update, exactly once
// per Report call regardless of how many times the update function was
// retried, so implementations need not deduplicate.
type Notifier interface {
	// NewLeader is invoked when the top-ranked artifact changed,
	// including the transition from an empty leaderboard to its first
	// entry.
	NewLeader(ctx context.Context, ref domain.ArtifactRef, project string)

	// SnapshotUpdated is invoked after every committed update with the
	// new record, for external mirroring such as a dashboard feed.
	SnapshotUpdated(ctx context.Context, record *domain.Record)
}

// Feedback is the textual channel surfacing operator-facing events:
// leadership changes, dropped artifacts, and metric-selection warnings.
// Implementations decide the transport (structured logs, a UI stream).
type Feedback interface {
	// Info reports a noteworthy but healthy event.
	Info(ctx context.Context, msg string, args ...any)

	// Warn reports a recovered anomaly, such as an artifact that
	// disappeared from the registry.
	Warn(ctx context.Context, msg string, args ...any)
}
