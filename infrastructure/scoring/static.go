package scoring

import (
	"context"
	"fmt"
	"sync"

	"github.com/podium-ml/podium/internal/domain"
	"github.com/podium-ml/podium/internal/ports"
)

var (
	_ ports.Scorer        = (*StaticScorer)(nil)
	_ ports.ModelRegistry = (*StaticScorer)(nil)
)

// StaticScorer serves scores and model categories from in-memory
// tables. It doubles as a ports.ModelRegistry, which makes it a
// convenient fixture for examples and for wiring an engine against
// precomputed evaluation results.
type StaticScorer struct {
	mu         sync.RWMutex
	scores     map[string]float64
	categories map[domain.ArtifactRef]domain.ModelCategory
	deleted    map[domain.ArtifactRef]bool
}

// NewStaticScorer creates an empty static scorer.
func NewStaticScorer() *StaticScorer {
	return &StaticScorer{
		scores:     make(map[string]float64),
		categories: make(map[domain.ArtifactRef]domain.ModelCategory),
		deleted:    make(map[domain.ArtifactRef]bool),
	}
}

// SetScore registers the score of an artifact against a dataset under a
// metric.
func (s *StaticScorer) SetScore(ref domain.ArtifactRef, dataset domain.DatasetRef, metric string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[domain.SnapshotKey(ref, dataset, metric)] = value
}

// SetCategory registers the model category of an artifact.
func (s *StaticScorer) SetCategory(ref domain.ArtifactRef, category domain.ModelCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[ref] = category
}

// Score implements ports.Scorer from the registered tables.
func (s *StaticScorer) Score(_ context.Context, ref domain.ArtifactRef, dataset domain.DatasetRef, metric string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.deleted[ref] {
		return 0, fmt.Errorf("artifact %q: %w", ref, domain.ErrUnresolvableArtifact)
	}
	value, ok := s.scores[domain.SnapshotKey(ref, dataset, metric)]
	if !ok {
		// A missing entry is a wiring gap, not a deleted artifact; it
		// must fail the round instead of silently dropping the ref.
		return 0, fmt.Errorf("no score registered for artifact %q on dataset %q under metric %q", ref, dataset, metric)
	}
	return value, nil
}

// Category implements ports.ModelRegistry from the registered tables.
// Artifacts without a registered category resolve as CategoryUnknown.
func (s *StaticScorer) Category(_ context.Context, ref domain.ArtifactRef) (domain.ModelCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.deleted[ref] {
		return "", fmt.Errorf("artifact %q: %w", ref, domain.ErrUnresolvableArtifact)
	}
	category, ok := s.categories[ref]
	if !ok {
		return domain.CategoryUnknown, nil
	}
	return category, nil
}

// Delete implements ports.ModelRegistry by marking the artifact gone;
// subsequent Score and Category calls report it unresolvable.
func (s *StaticScorer) Delete(_ context.Context, ref domain.ArtifactRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted[ref] = true
	return nil
}
