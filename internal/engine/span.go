package engine

import (
	"sort"

	"github.com/quillcheck/engine/internal/models"
)

// Spans maps the matched shingle hashes of one source back to contiguous
// token spans on the query document. Ranges that overlap or sit within one
// shingle width of each other merge into a single span, so a paragraph-length
// copy reports as one highlight rather than dozens of overlapping k-gram
// hits.
func Spans(fp FingerprintSet, matched map[uint64]struct{}) []models.Span {
	if len(matched) == 0 {
		return nil
	}
	ranges := make([]models.Span, 0, len(matched))
	for _, f := range fp.Fingerprints {
		if _, ok := matched[f.Hash]; ok {
			ranges = append(ranges, models.Span{Start: f.Start, End: f.End})
		}
	}
	return MergeSpans(ranges, fp.ShingleSize)
}

// MergeSpans merges overlapping or near-adjacent spans (gap <= maxGap) into
// minimal ordered disjoint spans. Feeding already-merged spans back through
// produces the same spans.
func MergeSpans(spans []models.Span, maxGap int) []models.Span {
	if len(spans) == 0 {
		return nil
	}
	if maxGap < 0 {
		maxGap = 0
	}

	sorted := make([]models.Span, len(spans))
	copy(sorted, spans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	merged := []models.Span{sorted[0]}
	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End+maxGap {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}
