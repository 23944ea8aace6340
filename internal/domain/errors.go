package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur during leaderboard operations.
var (
	// ErrNotFound indicates that no record exists under the requested
	// store key.
	ErrNotFound = errors.New("record not found")

	// ErrNotPersisted indicates an operation on a project record that
	// was never committed to the shared store. Callers must trigger an
	// implicit creation (an empty record) before querying.
	ErrNotPersisted = errors.New("leaderboard not persisted")

	// ErrUnresolvableArtifact indicates that a referenced artifact can
	// no longer be found at scoring time, typically because it was
	// deleted out-of-band. Recovered locally by dropping the reference
	// with a warning; never fatal.
	ErrUnresolvableArtifact = errors.New("artifact unresolvable")

	// ErrMetricUnavailable indicates that a record's model category
	// cannot be mapped to a default sort metric. Recovered by leaving
	// the record unsorted for the round; surfaced as a warning.
	ErrMetricUnavailable = errors.New("no sort metric available")

	// ErrStoreUnavailable indicates the shared store could not serve
	// the operation at all. Fatal to the current call; no partial
	// commit is possible by construction.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrEmptyReport indicates a Report call with no artifact references.
	ErrEmptyReport = errors.New("no artifact references to report")
)

// ScoreError reports a failed scoring of a single artifact.
// It provides context about which artifact and metric were involved.
type ScoreError struct {
	// Artifact is the reference that failed to score.
	Artifact ArtifactRef

	// Metric is the metric name that was requested.
	Metric string

	// Err is the underlying error from the scorer.
	Err error
}

// Error implements the error interface for ScoreError.
func (e *ScoreError) Error() string {
	return fmt.Sprintf("score error: artifact=%s, metric=%s, err=%v", e.Artifact, e.Metric, e.Err)
}

// Unwrap returns the underlying error, supporting errors.Is/As.
func (e *ScoreError) Unwrap() error { return e.Err }

// NewScoreError creates a new ScoreError with the given details.
func NewScoreError(ref ArtifactRef, metric string, err error) *ScoreError {
	return &ScoreError{Artifact: ref, Metric: metric, Err: err}
}
