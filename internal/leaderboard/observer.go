package leaderboard

import (
	"context"
	"time"
)

// Observer provides observability hooks around report operations.
// Implementations can add tracing, metrics, and logging without
// coupling observability concerns to the ranking algorithm itself.
// Hooks run outside the atomic update: ReportStart fires once per
// Report call before the update is attempted, ReportEnd once after the
// commit (or failure), regardless of how many internal retries the
// store performed.
type Observer interface {
	// ReportStart is called before the atomic update is attempted.
	// The returned context is threaded through the operation, allowing
	// implementations to attach spans.
	ReportStart(ctx context.Context, project string, refCount int) context.Context

	// ReportEnd is called after the operation completes. result is nil
	// when the report failed.
	ReportEnd(ctx context.Context, project string, result *ReportResult, err error, elapsed time.Duration)
}
