// Package scoring provides scorer adapters that wrap an underlying
// ports.Scorer with cross-cutting behavior: request deduplication,
// rate limiting, and a fixture scorer for local use.
package scoring

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/podium-ml/podium/internal/domain"
	"github.com/podium-ml/podium/internal/ports"
)

var _ ports.Scorer = (*CachingScorer)(nil)

// CachingScorer memoizes score computations per artifact, dataset, and
// metric identity. Concurrent requests for the same identity collapse
// into a single call to the underlying scorer via singleflight, which
// matters under the leaderboard's retry semantics: a contended atomic
// update may score the same artifact from several writers at once.
//
// The cache only ever grows. Scores are immutable for a fixed
// artifact/dataset/metric triple, so no invalidation is needed; a
// dataset change produces new keys.
type CachingScorer struct {
	inner ports.Scorer

	sf singleflight.Group

	mu    sync.RWMutex
	cache map[string]float64
}

// NewCachingScorer wraps inner with a memoizing layer.
func NewCachingScorer(inner ports.Scorer) *CachingScorer {
	if inner == nil {
		panic("caching scorer: inner scorer is required")
	}
	return &CachingScorer{
		inner: inner,
		cache: make(map[string]float64),
	}
}

// Score returns the cached value for the identity when present, and
// otherwise computes it exactly once even under concurrent callers.
// Unresolvable-artifact errors are not cached: the artifact may
// reappear, and the engine drops it for the round either way.
func (c *CachingScorer) Score(ctx context.Context, ref domain.ArtifactRef, dataset domain.DatasetRef, metric string) (float64, error) {
	key := domain.SnapshotKey(ref, dataset, metric)

	c.mu.RLock()
	value, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return value, nil
	}

	result, err, _ := c.sf.Do(key, func() (any, error) {
		// Re-check inside the flight to close the race between the
		// cache read and the singleflight group.
		c.mu.RLock()
		value, ok := c.cache[key]
		c.mu.RUnlock()
		if ok {
			return value, nil
		}

		value, err := c.inner.Score(ctx, ref, dataset, metric)
		if err != nil {
			return 0.0, err
		}

		c.mu.Lock()
		c.cache[key] = value
		c.mu.Unlock()
		return value, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(float64), nil
}

// Len returns the number of cached scores.
func (c *CachingScorer) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}
