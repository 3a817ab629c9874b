package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillcheck/engine/internal/models"
)

func mustTokens(t *testing.T, raw string) []models.Token {
	t.Helper()
	tokens, err := NewNormalizer(1).Normalize(raw)
	require.NoError(t, err)
	return tokens
}

func TestShinglesWindowCountAndOffsets(t *testing.T) {
	tokens := mustTokens(t, "one two three four five six seven")
	fs := Shingles(tokens, 5)

	// 7 tokens, k=5, stride 1.
	require.Len(t, fs.Fingerprints, 3)
	assert.Equal(t, 7, fs.TokenCount)
	assert.Equal(t, 5, fs.ShingleSize)

	assert.Equal(t, 0, fs.Fingerprints[0].Start)
	assert.Equal(t, 5, fs.Fingerprints[0].End)
	assert.Equal(t, 2, fs.Fingerprints[2].Start)
	assert.Equal(t, 7, fs.Fingerprints[2].End)
}

func TestShinglesDegenerateShortDocument(t *testing.T) {
	tokens := mustTokens(t, "just three tokens")
	fs := Shingles(tokens, 5)

	// Whole document collapses into a single shingle.
	require.Len(t, fs.Fingerprints, 1)
	assert.Equal(t, 0, fs.Fingerprints[0].Start)
	assert.Equal(t, 3, fs.Fingerprints[0].End)
}

func TestShinglesAreDeterministic(t *testing.T) {
	tokens := mustTokens(t, "the quick brown fox jumps over the lazy dog")
	first := Shingles(tokens, 5)
	for i := 0; i < 5; i++ {
		again := Shingles(tokens, 5)
		assert.Equal(t, first, again)
	}
}

func TestShinglesEqualTextEqualHashes(t *testing.T) {
	a := Shingles(mustTokens(t, "The Quick Brown Fox Jumps Over The Lazy Dog"), 5)
	b := Shingles(mustTokens(t, "the quick  brown fox jumps over the lazy dog."), 5)
	require.Len(t, b.Fingerprints, len(a.Fingerprints))
	for i := range a.Fingerprints {
		assert.Equal(t, a.Fingerprints[i].Hash, b.Fingerprints[i].Hash)
	}
}

func TestShinglesSeparatorPreventsBoundaryCollisions(t *testing.T) {
	a := Shingles(mustTokens(t, "ab c"), 2)
	b := Shingles(mustTokens(t, "a bc"), 2)
	assert.NotEqual(t, a.Fingerprints[0].Hash, b.Fingerprints[0].Hash)
}

func TestDistinctHashesDeduplicates(t *testing.T) {
	tokens := mustTokens(t, "ha ha ha ha ha ha ha")
	fs := Shingles(tokens, 2)
	require.Len(t, fs.Fingerprints, 6)
	assert.Len(t, fs.DistinctHashes(), 1)
}
