package engine

import (
	"sort"
)

// DefaultMinSharedShingles is the noise floor: candidates sharing fewer
// distinct shingles with the query are discarded.
const DefaultMinSharedShingles = 3

// MatchCandidate is one candidate source produced during matching. Transient;
// computed per query and discarded after aggregation.
type MatchCandidate struct {
	SourceID       string
	SharedShingles int
	Containment    float64
	Jaccard        float64
	MatchedHashes  map[uint64]struct{}
}

// Matcher finds candidate overlapping documents through the fingerprint index
// and computes containment and Jaccard similarity for each.
type Matcher struct {
	index     *Index
	minShared int
}

// NewMatcher creates a matcher over the given index. minShared <= 0 falls
// back to DefaultMinSharedShingles.
func NewMatcher(index *Index, minShared int) *Matcher {
	if minShared <= 0 {
		minShared = DefaultMinSharedShingles
	}
	return &Matcher{index: index, minShared: minShared}
}

// Match looks up every distinct query shingle in the index and accumulates a
// per-source shared-shingle counter. Containment is asymmetric by design: it
// measures how much of the query is found in the source, which is what an
// originality judgment needs. exclude lets callers keep a document's own
// prior versions out of its candidate list.
func (m *Matcher) Match(fp FingerprintSet, exclude map[string]struct{}) []MatchCandidate {
	queryHashes := fp.DistinctHashes()
	querySize := len(queryHashes)
	if querySize == 0 {
		return nil
	}

	shared := make(map[string]int)
	matchedBySource := make(map[string]map[uint64]struct{})

	for hash := range queryHashes {
		occurrences := m.index.Lookup(hash)
		if len(occurrences) == 0 {
			continue
		}
		// A hash counts once per source even when the source repeats it.
		seen := make(map[string]struct{}, len(occurrences))
		for _, occ := range occurrences {
			if _, skip := exclude[occ.DocID]; skip {
				continue
			}
			if _, dup := seen[occ.DocID]; dup {
				continue
			}
			seen[occ.DocID] = struct{}{}
			shared[occ.DocID]++
			if matchedBySource[occ.DocID] == nil {
				matchedBySource[occ.DocID] = make(map[uint64]struct{})
			}
			matchedBySource[occ.DocID][hash] = struct{}{}
		}
	}

	candidates := make([]MatchCandidate, 0, len(shared))
	for sourceID, count := range shared {
		if count < m.minShared {
			continue
		}
		sourceSize := m.index.SourceSize(sourceID)
		union := querySize + sourceSize - count
		var jaccard float64
		if union > 0 {
			jaccard = float64(count) / float64(union)
		}
		candidates = append(candidates, MatchCandidate{
			SourceID:       sourceID,
			SharedShingles: count,
			Containment:    float64(count) / float64(querySize),
			Jaccard:        jaccard,
			MatchedHashes:  matchedBySource[sourceID],
		})
	}

	// Descending containment; source id breaks ties for determinism.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Containment != candidates[j].Containment {
			return candidates[i].Containment > candidates[j].Containment
		}
		return candidates[i].SourceID < candidates[j].SourceID
	})
	return candidates
}
