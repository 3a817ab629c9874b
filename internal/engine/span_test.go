package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillcheck/engine/internal/models"
)

func TestSpansMergesOverlappingWindows(t *testing.T) {
	fp := fingerprintText(t, "the quick brown fox jumps over the lazy dog", 5)

	// Every shingle matched: a single span over the whole token range.
	spans := Spans(fp, fp.DistinctHashes())
	require.Len(t, spans, 1)
	assert.Equal(t, models.Span{Start: 0, End: 9}, spans[0])
}

func TestSpansKeepsUnrelatedFragmentsApart(t *testing.T) {
	merged := MergeSpans([]models.Span{
		{Start: 0, End: 5},
		{Start: 40, End: 45},
	}, 5)
	require.Len(t, merged, 2)
	assert.Equal(t, models.Span{Start: 0, End: 5}, merged[0])
	assert.Equal(t, models.Span{Start: 40, End: 45}, merged[1])
}

func TestMergeSpansJoinsWithinShingleWidth(t *testing.T) {
	merged := MergeSpans([]models.Span{
		{Start: 0, End: 5},
		{Start: 8, End: 13}, // gap of 3 <= k=5
	}, 5)
	require.Len(t, merged, 1)
	assert.Equal(t, models.Span{Start: 0, End: 13}, merged[0])
}

func TestMergeSpansIsIdempotent(t *testing.T) {
	input := []models.Span{
		{Start: 3, End: 8},
		{Start: 0, End: 5},
		{Start: 20, End: 25},
		{Start: 24, End: 30},
	}
	once := MergeSpans(input, 2)
	twice := MergeSpans(once, 2)
	assert.Equal(t, once, twice, "merging merged spans must be a fixed point")
}

func TestMergeSpansUnsortedInput(t *testing.T) {
	merged := MergeSpans([]models.Span{
		{Start: 9, End: 15},
		{Start: 0, End: 5},
		{Start: 4, End: 9},
	}, 0)
	require.Len(t, merged, 1)
	assert.Equal(t, models.Span{Start: 0, End: 15}, merged[0])
}

func TestSpansEmptyMatchSet(t *testing.T) {
	fp := fingerprintText(t, "the quick brown fox jumps over the lazy dog", 5)
	assert.Nil(t, Spans(fp, nil))
}
