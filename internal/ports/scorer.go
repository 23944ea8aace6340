package ports

import (
	"context"

	"github.com/podium-ml/podium/internal/domain"
)

// Scorer computes or retrieves the scalar metric value of an artifact
// against an evaluation dataset. How the score is computed is outside
// the leaderboard's scope; implementations typically front a model
// evaluation service or a metrics cache.
//
// Score is invoked from inside the store's atomic update and must
// therefore be safe to call redundantly: retries of the update function
// may score the same artifact more than once, at worst wasting the
// computation. Implementations must return a value wrapped in (or equal
// to) domain.ErrUnresolvableArtifact when the artifact no longer
// exists, so the engine can drop it from the ranking with a warning
// instead of failing the update.
type Scorer interface {
	Score(ctx context.Context, ref domain.ArtifactRef, dataset domain.DatasetRef, metric string) (float64, error)
}

// ModelRegistry resolves artifact references to model metadata and
// manages artifact lifecycle. The engine uses it for exactly two
// things: determining the model category of the first reported artifact
// (to pick the default sort metric) and invalidating artifacts when a
// leaderboard is deleted together with its children.
type ModelRegistry interface {
	// Category returns the model category of the referenced artifact.
	// It returns domain.ErrUnresolvableArtifact when the artifact does
	// not exist, and domain.CategoryUnknown for models outside the
	// supported categories.
	Category(ctx context.Context, ref domain.ArtifactRef) (domain.ModelCategory, error)

	// Delete invalidates the referenced artifact. Deleting an already
	// absent artifact is not an error.
	Delete(ctx context.Context, ref domain.ArtifactRef) error
}
