package extract

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

type span struct {
	start int
	end   int
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// Merge resolves overlapping spans across recognizer outputs into one list
// with no two entities overlapping, ordered by start position.
//
// The policy is greedy first-wins interval scheduling: candidates are walked
// in ascending start order (stable, so input order breaks ties) and a
// candidate overlapping any already accepted span is discarded. There is no
// confidence weighting; earliest-starting spans win by contract, and callers
// depend on that tie-break.
func Merge(entities []Entity) []Entity {
	sorted := make([]Entity, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartPos < sorted[j].StartPos
	})

	accepted := mapset.NewThreadUnsafeSet[span]()
	merged := make([]Entity, 0, len(sorted))

	for _, entity := range sorted {
		candidate := span{entity.StartPos, entity.EndPos}
		overlapping := false
		accepted.Each(func(s span) bool {
			if candidate.overlaps(s) {
				overlapping = true
				return true
			}
			return false
		})
		if overlapping {
			continue
		}
		merged = append(merged, entity)
		accepted.Add(candidate)
	}

	return merged
}
