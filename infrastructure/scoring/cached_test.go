package scoring

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podium-ml/podium/internal/domain"
)

// countingScorer counts delegated calls and optionally fails.
type countingScorer struct {
	calls atomic.Int64
	err   error
	value float64
}

func (c *countingScorer) Score(context.Context, domain.ArtifactRef, domain.DatasetRef, string) (float64, error) {
	c.calls.Add(1)
	if c.err != nil {
		return 0, c.err
	}
	return c.value, nil
}

func TestCachingScorer_MemoizesPerIdentity(t *testing.T) {
	ctx := context.Background()
	inner := &countingScorer{value: 0.8}
	scorer := NewCachingScorer(inner)

	for i := 0; i < 5; i++ {
		value, err := scorer.Score(ctx, "model_A", "iris_test", "auc")
		require.NoError(t, err)
		assert.Equal(t, 0.8, value)
	}
	assert.Equal(t, int64(1), inner.calls.Load())
	assert.Equal(t, 1, scorer.Len())

	// A different identity misses the cache.
	_, err := scorer.Score(ctx, "model_A", "iris_holdout", "auc")
	require.NoError(t, err)
	assert.Equal(t, int64(2), inner.calls.Load())
	assert.Equal(t, 2, scorer.Len())
}

func TestCachingScorer_ConcurrentCallersCollapse(t *testing.T) {
	ctx := context.Background()
	inner := &countingScorer{value: 0.8}
	scorer := NewCachingScorer(inner)

	const callers = 32
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			value, err := scorer.Score(ctx, "model_A", "iris_test", "auc")
			assert.NoError(t, err)
			assert.Equal(t, 0.8, value)
		}()
	}
	wg.Wait()

	// Every caller gets the value, but the inner scorer runs at most a
	// handful of times; after the first fill it never runs again.
	assert.LessOrEqual(t, inner.calls.Load(), int64(callers/2))
	_, err := scorer.Score(ctx, "model_A", "iris_test", "auc")
	require.NoError(t, err)
	final := inner.calls.Load()
	_, _ = scorer.Score(ctx, "model_A", "iris_test", "auc")
	assert.Equal(t, final, inner.calls.Load())
}

func TestCachingScorer_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	inner := &countingScorer{err: errors.New("scoring service down")}
	scorer := NewCachingScorer(inner)

	_, err := scorer.Score(ctx, "model_A", "iris_test", "auc")
	require.Error(t, err)
	assert.Zero(t, scorer.Len())

	// The artifact recovers; the next call reaches the inner scorer.
	inner.err = nil
	inner.value = 0.7
	value, err := scorer.Score(ctx, "model_A", "iris_test", "auc")
	require.NoError(t, err)
	assert.Equal(t, 0.7, value)
	assert.Equal(t, int64(2), inner.calls.Load())
}
