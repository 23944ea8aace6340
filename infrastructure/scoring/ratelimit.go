package scoring

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/podium-ml/podium/internal/domain"
	"github.com/podium-ml/podium/internal/ports"
)

var _ ports.Scorer = (*RateLimitedScorer)(nil)

// RateLimitedScorer throttles calls to the underlying scorer with a
// token bucket. Scoring services shared by a whole model search are
// easy to overwhelm when many workers report at once; the limiter
// spreads the load without changing scoring semantics.
type RateLimitedScorer struct {
	inner   ports.Scorer
	limiter *rate.Limiter
}

// NewRateLimitedScorer wraps inner with a token-bucket limiter allowing
// rps requests per second with the given burst.
func NewRateLimitedScorer(inner ports.Scorer, rps float64, burst int) (*RateLimitedScorer, error) {
	if inner == nil {
		return nil, fmt.Errorf("rate limited scorer: inner scorer is required")
	}
	if rps <= 0 {
		return nil, fmt.Errorf("rate limited scorer: rps must be positive, got %f", rps)
	}
	if burst < 1 {
		return nil, fmt.Errorf("rate limited scorer: burst must be at least 1, got %d", burst)
	}
	return &RateLimitedScorer{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// Score blocks until the limiter grants a token or the context is
// cancelled, then delegates to the underlying scorer.
func (r *RateLimitedScorer) Score(ctx context.Context, ref domain.ArtifactRef, dataset domain.DatasetRef, metric string) (float64, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}
	return r.inner.Score(ctx, ref, dataset, metric)
}
