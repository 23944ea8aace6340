// Package domain contains pure, dependency-free domain models and types
// for the leaderboard engine.
package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"
)

// ArtifactRef is an opaque reference to a trained model artifact.
// It is resolvable to the artifact's data and metadata through an
// external model registry; the leaderboard never inspects it beyond
// using it as an identity.
type ArtifactRef string

// DatasetRef is an opaque reference to the evaluation dataset against
// which all artifacts in a project are scored for ranking purposes.
type DatasetRef string

// RecordKeyPrefix is prepended to the project identifier to derive the
// key under which a project's record lives in the shared store.
const RecordKeyPrefix = "Leaderboard_"

// RecordKey deterministically derives the shared-store key for a project.
func RecordKey(project string) string { return RecordKeyPrefix + project }

// ScoreSnapshot captures one scoring of an artifact against an
// evaluation dataset under a specific metric. Snapshots are cached in
// the record to avoid recomputation across updates.
type ScoreSnapshot struct {
	// Artifact is the scored artifact reference.
	Artifact ArtifactRef `json:"artifact"`

	// Dataset is the evaluation dataset the artifact was scored against.
	Dataset DatasetRef `json:"dataset"`

	// Metric is the name of the metric that produced Value.
	Metric string `json:"metric"`

	// Value is the scalar metric value.
	Value float64 `json:"value"`

	// ScoredAt records when the score was computed.
	ScoredAt time.Time `json:"scored_at"`
}

// SnapshotKey derives the metrics-identity key under which a score
// snapshot is cached: one entry per artifact, dataset, and metric
// combination. Changing the evaluation dataset therefore misses the
// cache and forces a rescore of every artifact.
func SnapshotKey(ref ArtifactRef, dataset DatasetRef, metric string) string {
	return fmt.Sprintf("%s|%s|%s", ref, dataset, metric)
}

// Record is the durable leaderboard state stored under one project key
// in the shared store. The store exclusively owns the durable record;
// engine instances hold only transient copies of the last-read snapshot.
//
// Invariants:
//   - ArtifactRefs contains no duplicate reference and is ordered by
//     current rank, index 0 being the best.
//   - MetricValues is parallel to ArtifactRefs: MetricValues[i] is the
//     score of ArtifactRefs[i] under SortMetric.
//   - Snapshots grows monotonically within the record's lifetime.
//   - SortMetric transitions Unset -> Set exactly once via the lazy
//     default; only an explicit override may change it afterwards.
type Record struct {
	// Project identifies the logical project this record ranks.
	// Immutable after creation.
	Project string `json:"project"`

	// ArtifactRefs holds the ranked, duplicate-free artifact references.
	ArtifactRefs []ArtifactRef `json:"artifact_refs"`

	// MetricValues holds the sort-metric score for each ranked artifact,
	// in the same order as ArtifactRefs.
	MetricValues []float64 `json:"metric_values"`

	// Snapshots caches score computations keyed by SnapshotKey.
	Snapshots map[string]ScoreSnapshot `json:"snapshots"`

	// SortMetric is the name of the metric ordering this record.
	// Empty means no metric has been determined yet.
	SortMetric string `json:"sort_metric"`

	// SortDescending pairs a direction with SortMetric: true when larger
	// values rank better (e.g. auc), false when smaller values do
	// (e.g. mean residual deviance).
	SortDescending bool `json:"sort_descending"`
}

// NewRecord materializes a fresh, empty record for a project.
// The record is not persisted until committed through the store.
func NewRecord(project string) *Record {
	return &Record{
		Project:   project,
		Snapshots: make(map[string]ScoreSnapshot),
	}
}

// Clone returns a deep copy of the record. Store adapters and the
// engine clone before handing records across goroutine or mutation
// boundaries so the committed state can never be torn.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cp := &Record{
		Project:        r.Project,
		ArtifactRefs:   slices.Clone(r.ArtifactRefs),
		MetricValues:   slices.Clone(r.MetricValues),
		SortMetric:     r.SortMetric,
		SortDescending: r.SortDescending,
	}
	if r.Snapshots != nil {
		cp.Snapshots = maps.Clone(r.Snapshots)
	} else {
		cp.Snapshots = make(map[string]ScoreSnapshot)
	}
	return cp
}

// Leader returns the top-ranked artifact reference.
// The boolean reports whether the leaderboard has any entry.
func (r *Record) Leader() (ArtifactRef, bool) {
	if r == nil || len(r.ArtifactRefs) == 0 {
		return "", false
	}
	return r.ArtifactRefs[0], true
}

// Len returns the number of ranked artifacts.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ArtifactRefs)
}

// Contains reports whether the given artifact reference is ranked.
func (r *Record) Contains(ref ArtifactRef) bool {
	return r != nil && slices.Contains(r.ArtifactRefs, ref)
}

// MetricSet reports whether the sticky sort metric has been determined.
func (r *Record) MetricSet() bool { return r != nil && r.SortMetric != "" }

// recordJSON is the wire shape of Record. Metric values are pointers so
// the NaN placeholders of an unsorted round encode as JSON null, which
// encoding/json otherwise rejects.
type recordJSON struct {
	Project        string                   `json:"project"`
	ArtifactRefs   []ArtifactRef            `json:"artifact_refs"`
	MetricValues   []*float64               `json:"metric_values"`
	Snapshots      map[string]ScoreSnapshot `json:"snapshots"`
	SortMetric     string                   `json:"sort_metric"`
	SortDescending bool                     `json:"sort_descending"`
}

// MarshalJSON implements json.Marshaler, encoding NaN metric values
// as null.
func (r *Record) MarshalJSON() ([]byte, error) {
	values := make([]*float64, len(r.MetricValues))
	for i := range r.MetricValues {
		if !math.IsNaN(r.MetricValues[i]) {
			values[i] = &r.MetricValues[i]
		}
	}
	return json.Marshal(recordJSON{
		Project:        r.Project,
		ArtifactRefs:   r.ArtifactRefs,
		MetricValues:   values,
		Snapshots:      r.Snapshots,
		SortMetric:     r.SortMetric,
		SortDescending: r.SortDescending,
	})
}

// UnmarshalJSON implements json.Unmarshaler, decoding null metric
// values back to NaN.
func (r *Record) UnmarshalJSON(data []byte) error {
	var wire recordJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.Project = wire.Project
	r.ArtifactRefs = wire.ArtifactRefs
	r.Snapshots = wire.Snapshots
	r.SortMetric = wire.SortMetric
	r.SortDescending = wire.SortDescending
	r.MetricValues = make([]float64, len(wire.MetricValues))
	for i, v := range wire.MetricValues {
		if v == nil {
			r.MetricValues[i] = math.NaN()
		} else {
			r.MetricValues[i] = *v
		}
	}
	return nil
}
