package engine

import (
	"hash/fnv"

	"github.com/quillcheck/engine/internal/models"
)

const (
	// DefaultShingleSize is the default k-gram window width in tokens.
	DefaultShingleSize = 5

	// HashVersion identifies the fingerprint hash scheme. Bump when the
	// hashing changes so persisted corpora are not mixed across schemes.
	HashVersion = "fnv64a-v1"
)

// Fingerprint is one shingle hash with the token-index range [Start, End) of
// the window it was computed from.
type Fingerprint struct {
	Hash  uint64 `bson:"hash" json:"hash"`
	Start int    `bson:"start" json:"start"`
	End   int    `bson:"end" json:"end"`
}

// FingerprintSet is the ordered fingerprint sequence of one document. Built
// once per document and immutable afterwards.
type FingerprintSet struct {
	Fingerprints []Fingerprint
	TokenCount   int
	ShingleSize  int
}

// DistinctHashes returns the set of distinct shingle hashes in the set.
func (fs FingerprintSet) DistinctHashes() map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(fs.Fingerprints))
	for _, fp := range fs.Fingerprints {
		set[fp.Hash] = struct{}{}
	}
	return set
}

// Shingles slides a k-token window with stride 1 over the token sequence,
// hashing each window to a 64-bit fingerprint. If fewer than k tokens are
// present the whole document becomes a single shingle. Pure; safe to call
// concurrently for different documents.
func Shingles(tokens []models.Token, k int) FingerprintSet {
	if k <= 0 {
		k = DefaultShingleSize
	}

	fs := FingerprintSet{
		TokenCount:  len(tokens),
		ShingleSize: k,
	}
	if len(tokens) == 0 {
		return fs
	}

	if len(tokens) < k {
		fs.Fingerprints = []Fingerprint{{
			Hash:  hashWindow(tokens),
			Start: 0,
			End:   len(tokens),
		}}
		return fs
	}

	fs.Fingerprints = make([]Fingerprint, 0, len(tokens)-k+1)
	for i := 0; i+k <= len(tokens); i++ {
		fs.Fingerprints = append(fs.Fingerprints, Fingerprint{
			Hash:  hashWindow(tokens[i : i+k]),
			Start: i,
			End:   i + k,
		})
	}
	return fs
}

// hashWindow hashes the window's token texts joined by a single separator
// byte, so ("ab","c") and ("a","bc") do not collide trivially.
func hashWindow(window []models.Token) uint64 {
	h := fnv.New64a()
	for i, tok := range window {
		if i > 0 {
			h.Write([]byte{' '})
		}
		h.Write([]byte(tok.Text))
	}
	return h.Sum64()
}
