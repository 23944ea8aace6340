package notify

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/podium-ml/podium/internal/leaderboard"
)

var _ leaderboard.Observer = (*OTelObserver)(nil)

// OTelObserver implements observability for report operations using
// OpenTelemetry tracing. It creates a span per report, sets detailed
// attributes, and records leadership-change events. Span state travels
// in the context rather than on the struct, so a single observer is
// safe for concurrent reports.
type OTelObserver struct{}

// NewOTelObserver creates a new OpenTelemetry report observer.
func NewOTelObserver() *OTelObserver { return &OTelObserver{} }

// ReportStart implements leaderboard.Observer. It starts a span and
// returns the context carrying it.
func (o *OTelObserver) ReportStart(ctx context.Context, project string, refCount int) context.Context {
	tracer := otel.Tracer("leaderboard")
	ctx, span := tracer.Start(ctx, "Leaderboard.Report")
	span.SetAttributes(
		attribute.String("leaderboard.project", project),
		attribute.Int("leaderboard.reported_refs", refCount),
	)
	return ctx
}

// ReportEnd implements leaderboard.Observer. It finalizes the span
// started by ReportStart with the operation's outcome.
func (o *OTelObserver) ReportEnd(ctx context.Context, project string, result *leaderboard.ReportResult, err error, elapsed time.Duration) {
	span := trace.SpanFromContext(ctx)
	defer span.End()

	span.SetAttributes(attribute.Int64("leaderboard.elapsed_ms", elapsed.Milliseconds()))

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return
	}
	if result != nil {
		span.SetAttributes(
			attribute.Int("leaderboard.size", result.Record.Len()),
			attribute.Bool("leaderboard.leader_changed", result.LeaderChanged),
		)
		if result.LeaderChanged {
			span.AddEvent("leaderboard.leader_changed", trace.WithAttributes(
				attribute.String("leaderboard.project", project),
				attribute.String("leaderboard.leader", string(result.Leader)),
			))
		}
	}
	span.SetStatus(codes.Ok, "")
}
