// Package ports defines the interface boundaries between the
// leaderboard engine and its external collaborators: the shared store,
// the scorer, the model registry, and the notification surfaces.
package ports

import (
	"context"

	"github.com/podium-ml/podium/internal/domain"
)

// UpdateFunc is the mutation applied by Store.AtomicUpdate. It receives
// the current committed record for the key, or nil when no record
// exists, and returns the record to commit.
//
// The function must be safe to invoke multiple times: the store retries
// it transparently against the freshly committed value whenever a
// concurrent mutation wins the race. It must therefore have no side
// effects beyond its return value, except external calls that are
// themselves idempotent (scoring an artifact is; sending a notification
// is not).
type UpdateFunc func(current *domain.Record) (*domain.Record, error)

// Store is the distributed key-value store holding durable leaderboard
// records. Implementations must guarantee per-key serializability: two
// concurrent AtomicUpdate calls for the same key never both observe the
// same current record as the starting point of a successful commit.
// Mutations on different keys are independent.
type Store interface {
	// Get returns the latest committed record for the key, or
	// domain.ErrNotFound when no record exists. The returned record is
	// a private copy the caller may retain.
	Get(ctx context.Context, key string) (*domain.Record, error)

	// AtomicUpdate applies fn to the current committed value (nil when
	// absent) and commits its result, retrying fn internally on
	// conflict. It returns the committed record. Errors returned by fn
	// abort the update without committing anything.
	//
	// Transient commit conflicts are resolved inside the store and are
	// never surfaced; domain.ErrStoreUnavailable wraps hard failures.
	AtomicUpdate(ctx context.Context, key string, fn UpdateFunc) (*domain.Record, error)

	// Delete removes the record under key. Deleting an absent key is
	// not an error.
	Delete(ctx context.Context, key string) error
}
