package leaderboard

import (
	"math"
	"sort"

	"github.com/podium-ml/podium/internal/domain"
)

// nan marks entries that have no usable score this round.
var nan = math.NaN()

// rankedEntry pairs an artifact reference with its sort-metric value
// while the union is being ordered.
type rankedEntry struct {
	ref   domain.ArtifactRef
	value float64
}

// sortRanked orders entries by metric value in the requested direction,
// breaking ties lexicographically on the artifact reference so that
// repeated runs over identical scores always produce the same total
// order. Entries without a usable score (NaN) sink to the end in
// reference order.
func sortRanked(entries []rankedEntry, descending bool) {
	sort.Slice(entries, func(i, j int) bool {
		vi, vj := entries[i].value, entries[j].value
		ni, nj := math.IsNaN(vi), math.IsNaN(vj)
		switch {
		case ni && nj:
			return entries[i].ref < entries[j].ref
		case ni:
			return false
		case nj:
			return true
		}
		if vi != vj {
			if descending {
				return vi > vj
			}
			return vi < vj
		}
		return entries[i].ref < entries[j].ref
	})
}

// mergeRefs forms the duplicate-free union of the existing ranking and
// a batch of newly reported references, preserving the existing order
// and appending genuinely new references in batch order. Reporting
// pipelines such as a grid search may resubmit references already
// present; those are eliminated here.
func mergeRefs(existing, incoming []domain.ArtifactRef) []domain.ArtifactRef {
	seen := make(map[domain.ArtifactRef]struct{}, len(existing)+len(incoming))
	union := make([]domain.ArtifactRef, 0, len(existing)+len(incoming))
	for _, ref := range existing {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		union = append(union, ref)
	}
	for _, ref := range incoming {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		union = append(union, ref)
	}
	return union
}
