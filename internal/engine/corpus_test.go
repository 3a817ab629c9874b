package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillcheck/engine/internal/models"
)

func testManager(opts Options) *Manager {
	if opts.MinTokens == 0 {
		opts.MinTokens = 5
	}
	if opts.MinSharedShingles == 0 {
		opts.MinSharedShingles = 1
	}
	return NewManager(opts)
}

func checkText(t *testing.T, m *Manager, id, text string, opts CheckOptions) models.ComparisonResult {
	t.Helper()
	_, result, err := m.Check(context.Background(), id, "course-1", text, models.CheckMetadata{}, opts)
	require.NoError(t, err)
	return result
}

func TestCheckIdenticalDocumentScoresHundred(t *testing.T) {
	m := testManager(Options{})
	text := "the quick brown fox jumps over the lazy dog"

	first := checkText(t, m, "doc-b", text, CheckOptions{})
	assert.Zero(t, first.OverallScore, "first submission has no corpus to match")

	second := checkText(t, m, "doc-a", text, CheckOptions{})
	assert.InDelta(t, 100.0, second.OverallScore, 1e-9)
	require.Len(t, second.Matches, 1)
	assert.Equal(t, "doc-b", second.Matches[0].SourceID)
	assert.InDelta(t, 100.0, second.Matches[0].SimilarityPercent, 1e-9)
	require.Len(t, second.Matches[0].Spans, 1)
	assert.Equal(t, models.Span{Start: 0, End: 9}, second.Matches[0].Spans[0])
}

func TestCheckSharedPhraseScoresProportionally(t *testing.T) {
	m := testManager(Options{})

	shared := "alpha bravo charlie delta echo"
	filler := func(prefix string, n int) string {
		words := make([]string, n)
		for i := range words {
			words[i] = fmt.Sprintf("%s%d", prefix, i)
		}
		return strings.Join(words, " ")
	}

	// Source: the shared phrase plus its own unique filler.
	checkText(t, m, "source", shared+" "+filler("src", 95), CheckOptions{})

	// Query: 100 tokens, 5 of them the shared phrase.
	result := checkText(t, m, "query", shared+" "+filler("qry", 95), CheckOptions{})

	require.Len(t, result.Matches, 1)
	require.Len(t, result.Matches[0].Spans, 1)
	// One 5-token span out of 100 tokens.
	assert.Equal(t, 5, result.Matches[0].Spans[0].Len())
	assert.InDelta(t, 5.0, result.OverallScore, 1e-9)
}

func TestCheckDryRunLeavesCorpusUnchanged(t *testing.T) {
	m := testManager(Options{})
	text := "the quick brown fox jumps over the lazy dog"
	checkText(t, m, "source", text, CheckOptions{})

	preview := checkText(t, m, "", text, CheckOptions{DryRun: true})
	require.Len(t, preview.Matches, 1)
	assert.True(t, preview.DryRun)
	assert.Equal(t, 1, m.Index().Len(), "dry run must not admit")

	// A second identical check sees identical corpus state.
	again := checkText(t, m, "", text, CheckOptions{DryRun: true})
	require.Len(t, again.Matches, 1)
	assert.Equal(t, preview.OverallScore, again.OverallScore)
	assert.Equal(t, preview.Matches[0].SourceID, again.Matches[0].SourceID)
}

func TestCheckMonotonicityUnderAppendedText(t *testing.T) {
	source := "one two three four five six seven eight nine ten"
	base := source
	padded := source + " completely unrelated suffix words appended here making it longer overall"

	mBase := testManager(Options{})
	checkText(t, mBase, "source", source, CheckOptions{})
	baseResult := checkText(t, mBase, "", base, CheckOptions{DryRun: true})

	mPadded := testManager(Options{})
	checkText(t, mPadded, "source", source, CheckOptions{})
	paddedResult := checkText(t, mPadded, "", padded, CheckOptions{DryRun: true})

	require.Len(t, baseResult.Matches, 1)
	require.Len(t, paddedResult.Matches, 1)
	assert.LessOrEqual(t, paddedResult.Matches[0].SimilarityPercent, baseResult.Matches[0].SimilarityPercent,
		"appending unrelated text must never raise containment")
}

func TestCheckRejectsDuplicateSubmission(t *testing.T) {
	m := testManager(Options{})
	text := "the quick brown fox jumps over the lazy dog"
	checkText(t, m, "doc-a", text, CheckOptions{})

	_, _, err := m.Check(context.Background(), "doc-a", "course-1", text, models.CheckMetadata{}, CheckOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateSubmission))
}

func TestCheckEmptyDocumentAborted(t *testing.T) {
	m := testManager(Options{MinTokens: 20})
	_, _, err := m.Check(context.Background(), "", "course-1", "too short", models.CheckMetadata{}, CheckOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyDocument))
	assert.Equal(t, 0, m.Index().Len(), "failed check must not mutate the corpus")
}

func TestCheckTimeoutLeavesIndexUnmodified(t *testing.T) {
	m := testManager(Options{CheckTimeout: time.Nanosecond})
	text := "the quick brown fox jumps over the lazy dog"
	time.Sleep(time.Millisecond)

	_, _, err := m.Check(context.Background(), "doc-a", "course-1", text, models.CheckMetadata{}, CheckOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Equal(t, 0, m.Index().Len())
}

func TestCheckExcludesPriorVersions(t *testing.T) {
	m := testManager(Options{})
	text := "the quick brown fox jumps over the lazy dog"
	checkText(t, m, "essay-v1", text, CheckOptions{})

	result := checkText(t, m, "essay-v2", text, CheckOptions{ExcludeIDs: []string{"essay-v1"}})
	assert.Empty(t, result.Matches)
	assert.Zero(t, result.OverallScore)
}

func TestEvictRemovesDocumentFromMatching(t *testing.T) {
	m := testManager(Options{})
	text := "the quick brown fox jumps over the lazy dog"
	checkText(t, m, "doc-a", text, CheckOptions{})

	require.NoError(t, m.Evict("doc-a"))
	assert.Equal(t, 0, m.Index().Len())

	result := checkText(t, m, "", text, CheckOptions{DryRun: true})
	assert.Empty(t, result.Matches)

	err := m.Evict("doc-a")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDocumentNotFound))
}

func TestCapacityBoundEvictsOldest(t *testing.T) {
	m := testManager(Options{MaxDocuments: 2})
	checkText(t, m, "doc-1", "first document body one two three four five six", CheckOptions{})
	checkText(t, m, "doc-2", "second document body one two three four five six", CheckOptions{})
	checkText(t, m, "doc-3", "third document body one two three four five six", CheckOptions{})

	assert.Equal(t, 2, m.Index().Len())
	assert.False(t, m.Index().Contains("doc-1"), "oldest admitted document evicted first")
	assert.True(t, m.Index().Contains("doc-2"))
	assert.True(t, m.Index().Contains("doc-3"))
}

func TestRestoreRebuildsIndexWithoutMatching(t *testing.T) {
	m := testManager(Options{})
	tokens, err := NewNormalizer(1).Normalize("the quick brown fox jumps over the lazy dog")
	require.NoError(t, err)

	doc := &models.Document{ID: "restored", Tokens: tokens}
	require.NoError(t, m.Restore(doc))
	assert.True(t, m.Index().Contains("restored"))

	result := checkText(t, m, "", "the quick brown fox jumps over the lazy dog", CheckOptions{DryRun: true})
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "restored", result.Matches[0].SourceID)
}

func TestCheckGeneratesDocumentID(t *testing.T) {
	m := testManager(Options{})
	doc, result, err := m.Check(context.Background(), "", "course-1",
		"the quick brown fox jumps over the lazy dog", models.CheckMetadata{}, CheckOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, doc.ID, result.DocumentID)
}
