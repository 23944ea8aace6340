// Package store provides shared-store adapters for the leaderboard
// engine: an in-process store with optimistic concurrency for tests and
// single-node deployments, and a Postgres-backed store for clusters.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/podium-ml/podium/internal/domain"
	"github.com/podium-ml/podium/internal/ports"
)

var _ ports.Store = (*MemoryStore)(nil)

// MemoryStore is an in-process ports.Store with per-key versioned
// optimistic concurrency. The update function runs outside the lock so
// it may make blocking scorer calls; a commit only succeeds when no
// other writer committed the key in the meantime, otherwise the
// function is retried against the fresh value with backoff.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]memoryEntry
}

type memoryEntry struct {
	record  *domain.Record
	version uint64
}

// errConflict signals a lost optimistic-concurrency race. It never
// escapes AtomicUpdate.
var errConflict = fmt.Errorf("concurrent commit won the race")

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]memoryEntry)}
}

// Get returns a copy of the latest committed record for the key, or
// domain.ErrNotFound when no record exists.
func (s *MemoryStore) Get(_ context.Context, key string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.records[key]
	if !ok {
		return nil, fmt.Errorf("key %q: %w", key, domain.ErrNotFound)
	}
	return entry.record.Clone(), nil
}

// AtomicUpdate applies fn to the current committed value and commits
// the result, retrying transparently when a concurrent writer commits
// the same key first. Per-key mutations therefore serialize: the
// winning attempt always observed the latest committed record.
func (s *MemoryStore) AtomicUpdate(ctx context.Context, key string, fn ports.UpdateFunc) (*domain.Record, error) {
	attempt := func() (*domain.Record, error) {
		current, version := s.snapshot(key)

		updated, err := fn(current)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if updated == nil {
			return nil, backoff.Permanent(fmt.Errorf("key %q: update function returned nil record", key))
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.records[key].version != version {
			return nil, errConflict
		}
		s.records[key] = memoryEntry{record: updated.Clone(), version: version + 1}
		return updated.Clone(), nil
	}

	// Conflicts resolve quickly; keep the backoff tight so contending
	// writers serialize without visible stalls.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Millisecond
	bo.MaxInterval = 50 * time.Millisecond

	committed, err := backoff.Retry(ctx, attempt, backoff.WithBackOff(bo))
	if err != nil {
		return nil, err
	}
	return committed, nil
}

// Delete removes the record under key. Absent keys are a no-op.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// snapshot reads the current record copy and version for a key.
// A missing key reports version 0 and a nil record, which is the
// update function's signal to materialize a fresh one.
func (s *MemoryStore) snapshot(key string) (*domain.Record, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.records[key]
	if !ok {
		return nil, 0
	}
	return entry.record.Clone(), entry.version
}
