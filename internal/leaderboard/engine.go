// Package leaderboard implements the atomic leaderboard synchronization
// protocol for automated model search: many independent workers report
// candidate artifacts concurrently, and the engine maintains a single,
// globally consistent ranking of "best artifacts so far" per project.
//
// All mutation is funneled through the shared store's atomic
// read-modify-write primitive; the engine itself holds no authoritative
// state. A fresh engine pointed at an existing project picks up the
// persisted record and keeps adding to it, which allows a model search
// to run multiple times against the same leaderboard.
package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/podium-ml/podium/internal/domain"
	"github.com/podium-ml/podium/internal/ports"
)

// Dependencies bundles the external collaborators an Engine needs.
// Store, Scorer, and Registry are required; Notifier, Feedback, and
// Observer default to no-ops when nil.
type Dependencies struct {
	// Store is the distributed key-value store owning durable records.
	Store ports.Store

	// Scorer computes metric values for artifacts.
	Scorer ports.Scorer

	// Registry resolves artifact model categories and deletes artifacts.
	Registry ports.ModelRegistry

	// Notifier receives post-commit leadership and snapshot events.
	Notifier ports.Notifier

	// Feedback is the operator-facing textual channel.
	Feedback ports.Feedback

	// Observer receives tracing/metrics hooks around report operations.
	Observer Observer
}

// ReportResult describes the outcome of one committed report.
type ReportResult struct {
	// Record is the committed record after the update.
	Record *domain.Record

	// LeaderChanged is true when the top-ranked artifact differs from
	// the one before the update, including the first entry on a
	// previously empty leaderboard.
	LeaderChanged bool

	// Leader is the top-ranked artifact after the update. Empty when
	// the committed record ranks nothing.
	Leader domain.ArtifactRef
}

// Engine is the ranking engine for one project. It merges reported
// artifact references into the persisted record, deduplicates repeated
// reports, rescores every referenced artifact against the current
// evaluation dataset, recomputes the total ordering, and detects
// leadership changes.
//
// Engines are safe for concurrent use. Multiple engine instances, in
// the same process or on different machines, may report into the same
// project concurrently: consistency is achieved solely through the
// store's per-key atomic update, never through in-process locking.
type Engine struct {
	cfg      Config
	key      string
	store    ports.Store
	scorer   ports.Scorer
	registry ports.ModelRegistry
	notifier ports.Notifier
	feedback ports.Feedback
	observer Observer

	// mu guards the mutable local view: the current evaluation dataset
	// and the cached copy of the last-read committed record. The cache
	// is owned exclusively by this instance and may be stale; it is
	// never used as the starting point for a mutation.
	mu      sync.RWMutex
	dataset domain.DatasetRef
	cached  *domain.Record
}

// New creates an Engine for the configured project.
func New(cfg Config, deps Dependencies) (*Engine, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	if cfg.ScoreConcurrency <= 0 {
		cfg.ScoreConcurrency = DefaultConfig().ScoreConcurrency
	}
	if deps.Store == nil {
		return nil, errors.New("leaderboard engine: store is required")
	}
	if deps.Scorer == nil {
		return nil, errors.New("leaderboard engine: scorer is required")
	}
	if deps.Registry == nil {
		return nil, errors.New("leaderboard engine: model registry is required")
	}
	if deps.Notifier == nil {
		deps.Notifier = nopNotifier{}
	}
	if deps.Feedback == nil {
		deps.Feedback = nopFeedback{}
	}
	return &Engine{
		cfg:      cfg,
		key:      domain.RecordKey(cfg.Project),
		store:    deps.Store,
		scorer:   deps.Scorer,
		registry: deps.Registry,
		notifier: deps.Notifier,
		feedback: deps.Feedback,
		observer: deps.Observer,
		dataset:  domain.DatasetRef(cfg.Dataset),
	}, nil
}

// Project returns the project identifier this engine ranks.
func (e *Engine) Project() string { return e.cfg.Project }

// Key returns the shared-store key under which the record lives.
func (e *Engine) Key() string { return e.key }

// Dataset returns the evaluation dataset used for subsequent reports.
func (e *Engine) Dataset() domain.DatasetRef {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dataset
}

// SetDataset switches the evaluation dataset for subsequent reports.
// Cached score snapshots embed the dataset reference, so the next
// report misses the cache and rescores every ranked artifact.
func (e *Engine) SetDataset(ref domain.DatasetRef) {
	e.mu.Lock()
	e.dataset = ref
	e.mu.Unlock()
}

// warning is a deferred feedback event collected inside the atomic
// update and emitted once after the commit, keeping the update function
// free of side effects across retries.
type warning struct {
	msg  string
	args []any
}

// Report merges the given artifact references into the persisted
// ranking. It performs exactly one atomic update against the store,
// refreshes the local cache from the committed result, and then
// notifies: a snapshot event always, a new-leader event only when the
// top-ranked artifact changed.
//
// References already present in the ranking are deduplicated. Every
// artifact in the resulting union is rescored against the current
// evaluation dataset (cache permitting), because the dataset may have
// changed since the last call. Artifacts the scorer reports as
// unresolvable are dropped from the ranking with a warning.
func (e *Engine) Report(ctx context.Context, refs ...domain.ArtifactRef) (*ReportResult, error) {
	if len(refs) == 0 {
		return nil, domain.ErrEmptyReport
	}
	newRefs := mergeRefs(nil, refs)

	if e.observer != nil {
		ctx = e.observer.ReportStart(ctx, e.cfg.Project, len(newRefs))
	}
	start := time.Now()
	res, err := e.report(ctx, newRefs)
	if e.observer != nil {
		e.observer.ReportEnd(ctx, e.cfg.Project, res, err, time.Since(start))
	}
	return res, err
}

func (e *Engine) report(ctx context.Context, newRefs []domain.ArtifactRef) (*ReportResult, error) {
	dataset := e.Dataset()

	// Outcome of the winning attempt. The update function resets these
	// on entry so a retried attempt cannot leak warnings or a stale
	// leader-change flag from a losing one.
	var (
		warns         []warning
		leaderChanged bool
	)

	fn := func(current *domain.Record) (*domain.Record, error) {
		warns = warns[:0]
		leaderChanged = false

		rec := current.Clone()
		if rec == nil {
			rec = domain.NewRecord(e.cfg.Project)
		}

		// Lazily pin the sort metric from the first reported artifact's
		// model category. This is a one-way transition: once set it is
		// never overwritten here, only by an explicit SetMetric.
		if !rec.MetricSet() {
			if m, ok, w := e.selectMetric(ctx, newRefs[0]); ok {
				rec.SortMetric = m.Name
				rec.SortDescending = m.Descending
			} else if w != nil {
				warns = append(warns, *w)
			}
		}

		oldLeader, hadLeader := rec.Leader()
		union := mergeRefs(rec.ArtifactRefs, newRefs)

		dropped, err := e.rescore(ctx, rec, union, dataset)
		if err != nil {
			return nil, err
		}
		for _, ref := range dropped {
			warns = append(warns, warning{
				msg:  "artifact in the leaderboard has unexpectedly been deleted",
				args: []any{"project", e.cfg.Project, "artifact", ref},
			})
		}

		newLeader, hasLeader := rec.Leader()
		leaderChanged = hasLeader && (!hadLeader || newLeader != oldLeader)
		return rec, nil
	}

	committed, err := e.store.AtomicUpdate(ctx, e.key, fn)
	if err != nil {
		return nil, fmt.Errorf("report to leaderboard %q: %w", e.cfg.Project, err)
	}

	// We have updated the store but not this instance, so refresh the
	// local view from the committed result.
	e.mu.Lock()
	e.cached = committed.Clone()
	e.mu.Unlock()

	for _, w := range warns {
		e.feedback.Warn(ctx, w.msg, w.args...)
	}

	res := &ReportResult{Record: committed, LeaderChanged: leaderChanged}
	if leader, ok := committed.Leader(); ok {
		res.Leader = leader
	}

	e.notifier.SnapshotUpdated(ctx, committed.Clone())
	if leaderChanged {
		e.notifier.NewLeader(ctx, res.Leader, e.cfg.Project)
		e.feedback.Info(ctx, "new leader",
			"project", e.cfg.Project, "artifact", res.Leader)
	}
	return res, nil
}

// selectMetric determines the sort metric for a record that has none:
// the configured override if present, otherwise the default for the
// first artifact's model category. A nil warning with ok=false never
// occurs; when no metric can be determined the warning explains why the
// round stays unsorted.
func (e *Engine) selectMetric(ctx context.Context, first domain.ArtifactRef) (domain.Metric, bool, *warning) {
	if m, ok := e.cfg.overrideMetric(); ok {
		return m, true, nil
	}
	category, err := e.registry.Category(ctx, first)
	if err != nil {
		return domain.Metric{}, false, &warning{
			msg:  "cannot determine model category for default metric",
			args: []any{"project", e.cfg.Project, "artifact", first, "error", err},
		}
	}
	m, err := domain.DefaultMetricFor(category)
	if err != nil {
		return domain.Metric{}, false, &warning{
			msg:  "no default metric for model category, leaderboard stays unsorted",
			args: []any{"project", e.cfg.Project, "category", category},
		}
	}
	return m, true, nil
}

// rescore scores every reference in the union under the record's sort
// metric, reusing cached snapshots where the artifact/dataset/metric
// identity matches and invoking the scorer on misses, then installs the
// new total ordering on the record. It returns the references dropped
// because the scorer reported them unresolvable.
//
// When the record has no sort metric, scoring and reordering are
// skipped for the round: the union is kept in merge order with NaN
// metric values.
func (e *Engine) rescore(ctx context.Context, rec *domain.Record, union []domain.ArtifactRef, dataset domain.DatasetRef) ([]domain.ArtifactRef, error) {
	if !rec.MetricSet() {
		rec.ArtifactRefs = union
		rec.MetricValues = nanValues(len(union))
		return nil, nil
	}

	var dropped []domain.ArtifactRef
	entries := make([]rankedEntry, 0, len(union))
	for _, ref := range union {
		key := domain.SnapshotKey(ref, dataset, rec.SortMetric)
		snap, ok := rec.Snapshots[key]
		if !ok {
			value, err := e.scorer.Score(ctx, ref, dataset, rec.SortMetric)
			if errors.Is(err, domain.ErrUnresolvableArtifact) {
				dropped = append(dropped, ref)
				continue
			}
			if err != nil {
				return nil, domain.NewScoreError(ref, rec.SortMetric, err)
			}
			snap = domain.ScoreSnapshot{
				Artifact: ref,
				Dataset:  dataset,
				Metric:   rec.SortMetric,
				Value:    value,
				ScoredAt: time.Now().UTC(),
			}
			rec.Snapshots[key] = snap
		}
		entries = append(entries, rankedEntry{ref: ref, value: snap.Value})
	}

	sortRanked(entries, rec.SortDescending)

	refs := make([]domain.ArtifactRef, len(entries))
	values := make([]float64, len(entries))
	for i, entry := range entries {
		refs[i] = entry.ref
		values[i] = entry.value
	}
	rec.ArtifactRefs = refs
	rec.MetricValues = values
	return dropped, nil
}

// Ensure materializes an empty record for the project if none exists
// and returns the committed record. It is the explicit getOrCreate for
// callers that want to query before ever reporting.
func (e *Engine) Ensure(ctx context.Context) (*domain.Record, error) {
	committed, err := e.store.AtomicUpdate(ctx, e.key, func(current *domain.Record) (*domain.Record, error) {
		if current != nil {
			return current, nil
		}
		return domain.NewRecord(e.cfg.Project), nil
	})
	if err != nil {
		return nil, fmt.Errorf("ensure leaderboard %q: %w", e.cfg.Project, err)
	}
	e.mu.Lock()
	e.cached = committed.Clone()
	e.mu.Unlock()
	return committed, nil
}

// SetMetric explicitly overrides the record's sort metric and direction
// and re-sorts the ranking under it. Unlike the lazy default this may
// replace an already set metric.
func (e *Engine) SetMetric(ctx context.Context, metric domain.Metric) (*domain.Record, error) {
	if metric.Name == "" {
		return nil, fmt.Errorf("set metric on leaderboard %q: metric name is empty", e.cfg.Project)
	}
	dataset := e.Dataset()

	var warns []warning
	committed, err := e.store.AtomicUpdate(ctx, e.key, func(current *domain.Record) (*domain.Record, error) {
		warns = warns[:0]

		rec := current.Clone()
		if rec == nil {
			rec = domain.NewRecord(e.cfg.Project)
		}
		rec.SortMetric = metric.Name
		rec.SortDescending = metric.Descending

		dropped, err := e.rescore(ctx, rec, rec.ArtifactRefs, dataset)
		if err != nil {
			return nil, err
		}
		for _, ref := range dropped {
			warns = append(warns, warning{
				msg:  "artifact in the leaderboard has unexpectedly been deleted",
				args: []any{"project", e.cfg.Project, "artifact", ref},
			})
		}
		return rec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("set metric on leaderboard %q: %w", e.cfg.Project, err)
	}

	e.mu.Lock()
	e.cached = committed.Clone()
	e.mu.Unlock()

	for _, w := range warns {
		e.feedback.Warn(ctx, w.msg, w.args...)
	}
	e.notifier.SnapshotUpdated(ctx, committed.Clone())
	return committed, nil
}

// Snapshot returns the latest committed record for the project and
// refreshes the local cache. It returns domain.ErrNotPersisted when the
// record was never committed; call Ensure or Report first.
func (e *Engine) Snapshot(ctx context.Context) (*domain.Record, error) {
	rec, err := e.store.Get(ctx, e.key)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("leaderboard %q: %w", e.cfg.Project, domain.ErrNotPersisted)
	}
	if err != nil {
		return nil, fmt.Errorf("leaderboard %q: %w", e.cfg.Project, err)
	}
	e.mu.Lock()
	e.cached = rec.Clone()
	e.mu.Unlock()
	return rec, nil
}

// Cached returns a copy of the last-read committed record, or nil when
// this instance has not read one yet. The copy may be stale; it is
// refreshed by every Report, Snapshot, and query call.
func (e *Engine) Cached() *domain.Record {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cached.Clone()
}

// Leader returns the top-ranked artifact reference. The boolean is
// false when the leaderboard is empty.
func (e *Engine) Leader(ctx context.Context) (domain.ArtifactRef, bool, error) {
	rec, err := e.Snapshot(ctx)
	if err != nil {
		return "", false, err
	}
	leader, ok := rec.Leader()
	return leader, ok, nil
}

// Ranking returns the persisted ordering of artifact references,
// best first.
func (e *Engine) Ranking(ctx context.Context) ([]domain.ArtifactRef, error) {
	rec, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return rec.ArtifactRefs, nil
}

// Scores returns the metric values parallel to Ranking.
func (e *Engine) Scores(ctx context.Context) ([]float64, error) {
	rec, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return rec.MetricValues, nil
}

// RankingBy returns an ad-hoc ordering of the current artifact set
// under the given metric, without mutating the persisted record. Scores
// already cached in the record are reused; misses are fetched from the
// scorer with bounded concurrency. Artifacts the scorer reports
// unresolvable are dropped from the view with a warning.
//
// When the requested metric matches the persisted sort metric, the
// persisted ordering is returned as-is.
func (e *Engine) RankingBy(ctx context.Context, metric domain.Metric) ([]domain.ArtifactRef, []float64, error) {
	if metric.Name == "" {
		// Both slices must come from the same committed record; reading
		// them separately could zip refs and values from two commits.
		rec, err := e.Snapshot(ctx)
		if err != nil {
			return nil, nil, err
		}
		return rec.ArtifactRefs, rec.MetricValues, nil
	}

	rec, err := e.Snapshot(ctx)
	if err != nil {
		return nil, nil, err
	}
	if metric.Name == rec.SortMetric && metric.Descending == rec.SortDescending {
		return rec.ArtifactRefs, rec.MetricValues, nil
	}

	dataset := e.Dataset()

	type scored struct {
		ref   domain.ArtifactRef
		value float64
		drop  bool
	}
	results := make([]scored, len(rec.ArtifactRefs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.ScoreConcurrency)
	for i, ref := range rec.ArtifactRefs {
		g.Go(func() error {
			if snap, ok := rec.Snapshots[domain.SnapshotKey(ref, dataset, metric.Name)]; ok {
				results[i] = scored{ref: ref, value: snap.Value}
				return nil
			}
			value, err := e.scorer.Score(gctx, ref, dataset, metric.Name)
			if errors.Is(err, domain.ErrUnresolvableArtifact) {
				results[i] = scored{ref: ref, drop: true}
				return nil
			}
			if err != nil {
				return domain.NewScoreError(ref, metric.Name, err)
			}
			results[i] = scored{ref: ref, value: value}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("rank leaderboard %q by %q: %w", e.cfg.Project, metric.Name, err)
	}

	entries := make([]rankedEntry, 0, len(results))
	for _, r := range results {
		if r.drop {
			e.feedback.Warn(ctx, "artifact in the leaderboard has unexpectedly been deleted",
				"project", e.cfg.Project, "artifact", r.ref)
			continue
		}
		entries = append(entries, rankedEntry{ref: r.ref, value: r.value})
	}
	sortRanked(entries, metric.Descending)

	refs := make([]domain.ArtifactRef, len(entries))
	values := make([]float64, len(entries))
	for i, entry := range entries {
		refs[i] = entry.ref
		values[i] = entry.value
	}
	return refs, values, nil
}

// ScoresBy returns the metric values parallel to RankingBy under the
// given metric.
func (e *Engine) ScoresBy(ctx context.Context, metric domain.Metric) ([]float64, error) {
	_, values, err := e.RankingBy(ctx, metric)
	return values, err
}

// Delete destroys the project's record in the shared store. The
// referenced artifacts themselves are left untouched.
func (e *Engine) Delete(ctx context.Context) error {
	if err := e.store.Delete(ctx, e.key); err != nil {
		return fmt.Errorf("delete leaderboard %q: %w", e.cfg.Project, err)
	}
	e.mu.Lock()
	e.cached = nil
	e.mu.Unlock()
	return nil
}

// DeleteWithArtifacts invalidates every ranked artifact through the
// model registry, then destroys the record. Artifacts that are already
// gone are skipped with a warning.
func (e *Engine) DeleteWithArtifacts(ctx context.Context) error {
	rec, err := e.store.Get(ctx, e.key)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete leaderboard %q: %w", e.cfg.Project, err)
	}
	if rec != nil {
		for _, ref := range rec.ArtifactRefs {
			if err := e.registry.Delete(ctx, ref); err != nil {
				if errors.Is(err, domain.ErrUnresolvableArtifact) {
					e.feedback.Warn(ctx, "artifact already deleted",
						"project", e.cfg.Project, "artifact", ref)
					continue
				}
				return fmt.Errorf("delete artifact %q: %w", ref, err)
			}
		}
	}
	return e.Delete(ctx)
}

// nanValues returns n NaN metric values for rounds without a sort metric.
func nanValues(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = nan
	}
	return values
}

type nopNotifier struct{}

func (nopNotifier) NewLeader(context.Context, domain.ArtifactRef, string) {}
func (nopNotifier) SnapshotUpdated(context.Context, *domain.Record)       {}

type nopFeedback struct{}

func (nopFeedback) Info(context.Context, string, ...any) {}
func (nopFeedback) Warn(context.Context, string, ...any) {}
