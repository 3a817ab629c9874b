package engine

import (
	"time"

	"github.com/quillcheck/engine/internal/models"
)

// Aggregate combines ranked candidates and their reconstructed spans into the
// final ComparisonResult. The overall score is the percentage of the query
// document's token range covered by the union of all matched spans across all
// sources; summing per-source containment would double-count overlapping
// matches. Per-source SimilarityPercent stays each source's own containment
// for transparency even when its spans overlap another source's.
func Aggregate(
	docID string,
	fp FingerprintSet,
	candidates []MatchCandidate,
	spansBySource map[string][]models.Span,
	dryRun bool,
) models.ComparisonResult {
	result := models.ComparisonResult{
		DocumentID: docID,
		Matches:    make([]models.SourceMatch, 0, len(candidates)),
		DryRun:     dryRun,
		CheckedAt:  time.Now().UTC(),
	}

	var all []models.Span
	for _, cand := range candidates {
		spans := spansBySource[cand.SourceID]
		result.Matches = append(result.Matches, models.SourceMatch{
			SourceID:          cand.SourceID,
			SimilarityPercent: clampPercent(cand.Containment * 100),
			JaccardPercent:    clampPercent(cand.Jaccard * 100),
			Spans:             spans,
		})
		all = append(all, spans...)
	}

	if fp.TokenCount > 0 && len(all) > 0 {
		// Strict merge: coverage counts only tokens inside reported spans.
		covered := 0
		for _, s := range MergeSpans(all, 0) {
			covered += s.Len()
		}
		result.OverallScore = clampPercent(float64(covered) / float64(fp.TokenCount) * 100)
	}
	return result
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
