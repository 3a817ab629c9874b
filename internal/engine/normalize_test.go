package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLowercasesAndStripsPunctuation(t *testing.T) {
	n := NewNormalizer(1)
	tokens, err := n.Normalize("The QUICK, brown fox; jumps!   over the lazy dog.")
	require.NoError(t, err)

	texts := make([]string, len(tokens))
	for i, tok := range tokens {
		texts[i] = tok.Text
	}
	assert.Equal(t, []string{"the", "quick", "brown", "fox", "jumps", "over", "the", "lazy", "dog"}, texts)
}

func TestNormalizeKeepsByteOffsets(t *testing.T) {
	n := NewNormalizer(1)
	raw := "Alpha beta"
	tokens, err := n.Normalize(raw)
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	assert.Equal(t, "alpha", tokens[0].Text)
	assert.Equal(t, 0, tokens[0].Start)
	assert.Equal(t, 5, tokens[0].End)
	assert.Equal(t, "beta", raw[tokens[1].Start:tokens[1].End])
}

func TestNormalizePunctuationSplitsTokens(t *testing.T) {
	n := NewNormalizer(1)
	tokens, err := n.Normalize("end.Start")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "end", tokens[0].Text)
	assert.Equal(t, "start", tokens[1].Text)
}

func TestNormalizeIsDeterministic(t *testing.T) {
	n := NewNormalizer(1)
	raw := "Some text, with MIXED case and   spacing; repeated runs must agree."
	first, err := n.Normalize(raw)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := n.Normalize(raw)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestNormalizeRejectsShortDocuments(t *testing.T) {
	n := NewNormalizer(20)
	_, err := n.Normalize("only five tokens right here")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyDocument))
}

func TestNormalizeRejectsInvalidUTF8(t *testing.T) {
	n := NewNormalizer(1)
	_, err := n.Normalize("abc" + string([]byte{0xff, 0xfe}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedEncoding))
}

func TestNormalizeAcceptsExactlyMinTokens(t *testing.T) {
	n := NewNormalizer(20)
	raw := strings.Repeat("word ", 20)
	tokens, err := n.Normalize(raw)
	require.NoError(t, err)
	assert.Len(t, tokens, 20)
}
