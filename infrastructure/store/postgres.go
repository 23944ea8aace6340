package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/podium-ml/podium/internal/domain"
	"github.com/podium-ml/podium/internal/ports"
)

var _ ports.Store = (*PostgresStore)(nil)

// Postgres error codes that indicate a transient concurrency conflict:
// unique violations from two writers racing the first insert of a key,
// serialization failures, and deadlocks. All are resolved by retrying
// the update against the freshly committed row.
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// recordRow is the relational shape of a leaderboard record: one row
// per store key with the record serialized as a JSONB document. The
// version column is bumped on every commit and exists for diagnostics;
// correctness comes from the row lock, not the version.
type recordRow struct {
	Key       string    `gorm:"primaryKey;column:key"`
	Document  []byte    `gorm:"column:document;type:jsonb;not null"`
	Version   int64     `gorm:"column:version;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (recordRow) TableName() string { return "leaderboards" }

// PostgresStore is a ports.Store backed by a Postgres table. Per-key
// serializability is provided by taking a row lock (SELECT ... FOR
// UPDATE) inside a transaction for the duration of the update function,
// so two concurrent updates to the same project never observe the same
// starting record.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore wraps an existing gorm connection and ensures the
// leaderboards table exists.
func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("postgres store: db is required")
	}
	if err := db.AutoMigrate(&recordRow{}); err != nil {
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Get returns the latest committed record for the key, or
// domain.ErrNotFound when no row exists.
func (s *PostgresStore) Get(ctx context.Context, key string) (*domain.Record, error) {
	var row recordRow
	err := s.db.WithContext(ctx).First(&row, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("key %q: %w", key, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("key %q: %w: %v", key, domain.ErrStoreUnavailable, err)
	}
	return decodeRecord(row.Document)
}

// AtomicUpdate runs fn against the current row under a FOR UPDATE lock
// and commits its result in the same transaction. Transient conflicts
// (racing first inserts, serialization failures, deadlocks) retry the
// whole transaction with backoff; errors from fn abort without retry.
func (s *PostgresStore) AtomicUpdate(ctx context.Context, key string, fn ports.UpdateFunc) (*domain.Record, error) {
	attempt := func() (*domain.Record, error) {
		var committed *domain.Record
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var (
				row     recordRow
				current *domain.Record
				version int64
			)
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&row, "key = ?", key).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				// First writer for this key; fn materializes the record.
			case err != nil:
				return err
			default:
				current, err = decodeRecord(row.Document)
				if err != nil {
					return err
				}
				version = row.Version
			}

			updated, err := fn(current)
			if err != nil {
				return backoff.Permanent(err)
			}
			if updated == nil {
				return backoff.Permanent(fmt.Errorf("key %q: update function returned nil record", key))
			}

			document, err := json.Marshal(updated)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("key %q: encode record: %w", key, err))
			}
			next := recordRow{
				Key:       key,
				Document:  document,
				Version:   version + 1,
				UpdatedAt: time.Now().UTC(),
			}
			if err := tx.Save(&next).Error; err != nil {
				return err
			}
			committed = updated
			return nil
		})
		if err != nil {
			if isTransientConflict(err) {
				return nil, err
			}
			var perm *backoff.PermanentError
			if errors.As(err, &perm) {
				return nil, err
			}
			return nil, backoff.Permanent(fmt.Errorf("key %q: %w: %v", key, domain.ErrStoreUnavailable, err))
		}
		return committed, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Millisecond
	bo.MaxInterval = 250 * time.Millisecond

	committed, err := backoff.Retry(ctx, attempt, backoff.WithBackOff(bo))
	if err != nil {
		return nil, err
	}
	return committed, nil
}

// Delete removes the row under key. Absent keys are a no-op.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&recordRow{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("key %q: %w: %v", key, domain.ErrStoreUnavailable, err)
	}
	return nil
}

func decodeRecord(document []byte) (*domain.Record, error) {
	var rec domain.Record
	if err := json.Unmarshal(document, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	if rec.Snapshots == nil {
		rec.Snapshots = make(map[string]domain.ScoreSnapshot)
	}
	return &rec, nil
}

// isTransientConflict reports whether err is a Postgres error that a
// retry of the transaction can resolve.
func isTransientConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected:
		return true
	}
	return false
}
