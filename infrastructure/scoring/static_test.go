package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podium-ml/podium/internal/domain"
)

func TestStaticScorer(t *testing.T) {
	ctx := context.Background()
	s := NewStaticScorer()
	s.SetScore("model_A", "iris_test", "auc", 0.8)
	s.SetCategory("model_A", domain.CategoryBinomial)

	value, err := s.Score(ctx, "model_A", "iris_test", "auc")
	require.NoError(t, err)
	assert.Equal(t, 0.8, value)

	category, err := s.Category(ctx, "model_A")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryBinomial, category)

	// Unregistered category resolves unknown rather than erroring.
	s.SetScore("model_B", "iris_test", "auc", 0.7)
	category, err = s.Category(ctx, "model_B")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryUnknown, category)

	// An unregistered score is a wiring gap and must fail hard, not
	// masquerade as a deleted artifact.
	_, err = s.Score(ctx, "model_C", "iris_test", "auc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnresolvableArtifact)
	assert.Contains(t, err.Error(), "no score registered")
}

func TestStaticScorer_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewStaticScorer()
	s.SetScore("model_A", "iris_test", "auc", 0.8)
	s.SetCategory("model_A", domain.CategoryBinomial)

	require.NoError(t, s.Delete(ctx, "model_A"))

	_, err := s.Score(ctx, "model_A", "iris_test", "auc")
	assert.ErrorIs(t, err, domain.ErrUnresolvableArtifact)
	_, err = s.Category(ctx, "model_A")
	assert.ErrorIs(t, err, domain.ErrUnresolvableArtifact)
}
