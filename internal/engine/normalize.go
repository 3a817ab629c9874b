package engine

import (
	"unicode"
	"unicode/utf8"

	"github.com/quillcheck/engine/internal/models"
)

// DefaultMinTokens is the minimum token count a document must produce after
// normalization before it is accepted for fingerprinting.
const DefaultMinTokens = 20

// Normalizer canonicalizes raw text into a token sequence. It is pure and
// deterministic: byte-identical input always yields identical tokens, which
// is the correctness foundation for fingerprint equality.
type Normalizer struct {
	minTokens int
}

// NewNormalizer creates a normalizer. minTokens <= 0 falls back to
// DefaultMinTokens.
func NewNormalizer(minTokens int) *Normalizer {
	if minTokens <= 0 {
		minTokens = DefaultMinTokens
	}
	return &Normalizer{minTokens: minTokens}
}

// Normalize lowercases, strips punctuation and collapses whitespace, keeping
// byte offsets into the raw text for every token. Returns
// ErrUnsupportedEncoding for invalid UTF-8 and ErrEmptyDocument when fewer
// than minTokens tokens survive.
func (n *Normalizer) Normalize(raw string) ([]models.Token, error) {
	if !utf8.ValidString(raw) {
		return nil, ErrUnsupportedEncoding
	}

	tokens := make([]models.Token, 0, len(raw)/6)
	var cur []rune
	curStart := -1

	flush := func(end int) {
		if len(cur) == 0 {
			return
		}
		tokens = append(tokens, models.Token{
			Text:  string(cur),
			Start: curStart,
			End:   end,
		})
		cur = cur[:0]
		curStart = -1
	}

	for i, r := range raw {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if curStart < 0 {
				curStart = i
			}
			cur = append(cur, unicode.ToLower(r))
		case unicode.IsSpace(r):
			flush(i)
		default:
			// Punctuation is dropped. It terminates a token so that
			// "end.Start" does not fuse into one word.
			flush(i)
		}
	}
	flush(len(raw))

	if len(tokens) < n.minTokens {
		return nil, ErrEmptyDocument
	}
	return tokens, nil
}
