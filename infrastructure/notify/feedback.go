// Package notify provides notification and observability adapters for
// the leaderboard engine: the operator feedback channel, post-commit
// notifiers, and tracing/metrics observers for report operations.
package notify

import (
	"context"
	"log/slog"

	"github.com/podium-ml/podium/internal/ports"
)

var _ ports.Feedback = (*SlogFeedback)(nil)

// SlogFeedback delivers the operator feedback channel through
// structured logs.
type SlogFeedback struct {
	logger *slog.Logger
}

// NewSlogFeedback creates a feedback channel backed by the given
// logger. A nil logger falls back to slog.Default.
func NewSlogFeedback(logger *slog.Logger) *SlogFeedback {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogFeedback{logger: logger}
}

// Info implements ports.Feedback.
func (f *SlogFeedback) Info(ctx context.Context, msg string, args ...any) {
	f.logger.InfoContext(ctx, msg, args...)
}

// Warn implements ports.Feedback.
func (f *SlogFeedback) Warn(ctx context.Context, msg string, args ...any) {
	f.logger.WarnContext(ctx, msg, args...)
}
