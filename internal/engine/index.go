package engine

import (
	"sync"
)

// indexShards is the number of lock stripes. Shingle hashes spread uniformly,
// so contention is bounded to documents colliding on the same stripe.
const indexShards = 64

// Occurrence records one shingle occurrence: which document and at which
// token-index range. Duplicate shingles within one document at different
// offsets are retained, not merged.
type Occurrence struct {
	DocID string
	Start int
	End   int
}

type indexShard struct {
	mu      sync.RWMutex
	buckets map[uint64][]Occurrence
}

type docEntry struct {
	distinct int      // distinct shingle hash count, the Jaccard denominator
	hashes   []uint64 // distinct hashes, kept so Remove can reach every bucket
}

// Index is the inverted fingerprint index: shingle hash to the occurrences of
// that shingle across the corpus. It stores only hashes and offsets, never
// raw text. Lookups are safe for unlimited concurrent readers; Insert and
// Remove lock only the shards they touch.
type Index struct {
	shards [indexShards]indexShard

	docMu sync.RWMutex
	docs  map[string]docEntry
}

// NewIndex creates an empty fingerprint index.
func NewIndex() *Index {
	idx := &Index{docs: make(map[string]docEntry)}
	for i := range idx.shards {
		idx.shards[i].buckets = make(map[uint64][]Occurrence)
	}
	return idx
}

func (idx *Index) shardFor(hash uint64) *indexShard {
	return &idx.shards[hash%indexShards]
}

// Insert appends every fingerprint of the document to its bucket. Returns
// ErrDuplicateSubmission when the document id is already admitted; the index
// rejects rather than silently overwriting.
func (idx *Index) Insert(docID string, fp FingerprintSet) error {
	distinct := fp.DistinctHashes()
	hashes := make([]uint64, 0, len(distinct))
	for h := range distinct {
		hashes = append(hashes, h)
	}

	// The document table is the serialization point for admissions of the
	// same id: the reservation below makes duplicate checks atomic.
	idx.docMu.Lock()
	if _, exists := idx.docs[docID]; exists {
		idx.docMu.Unlock()
		return ErrDuplicateSubmission
	}
	idx.docs[docID] = docEntry{distinct: len(distinct), hashes: hashes}
	idx.docMu.Unlock()

	// Group occurrences by shard so each stripe is locked once.
	grouped := make(map[int][]Fingerprint)
	for _, f := range fp.Fingerprints {
		s := int(f.Hash % indexShards)
		grouped[s] = append(grouped[s], f)
	}

	for s, fps := range grouped {
		shard := &idx.shards[s]
		shard.mu.Lock()
		for _, f := range fps {
			shard.buckets[f.Hash] = append(shard.buckets[f.Hash], Occurrence{
				DocID: docID,
				Start: f.Start,
				End:   f.End,
			})
		}
		shard.mu.Unlock()
	}
	return nil
}

// Lookup returns a copy of the occurrence list for a hash. The copy keeps
// callers safe from concurrent bucket growth.
func (idx *Index) Lookup(hash uint64) []Occurrence {
	shard := idx.shardFor(hash)
	shard.mu.RLock()
	bucket := shard.buckets[hash]
	if len(bucket) == 0 {
		shard.mu.RUnlock()
		return nil
	}
	out := make([]Occurrence, len(bucket))
	copy(out, bucket)
	shard.mu.RUnlock()
	return out
}

// Remove deletes every occurrence referencing the document id and returns
// the number of buckets touched. After Remove no occurrence for the id is
// reachable from any bucket.
func (idx *Index) Remove(docID string) int {
	idx.docMu.Lock()
	entry, exists := idx.docs[docID]
	if !exists {
		idx.docMu.Unlock()
		return 0
	}
	delete(idx.docs, docID)
	idx.docMu.Unlock()

	touched := 0
	for _, hash := range entry.hashes {
		shard := idx.shardFor(hash)
		shard.mu.Lock()
		bucket := shard.buckets[hash]
		kept := bucket[:0]
		for _, occ := range bucket {
			if occ.DocID != docID {
				kept = append(kept, occ)
			}
		}
		if len(kept) == 0 {
			delete(shard.buckets, hash)
		} else {
			shard.buckets[hash] = kept
		}
		shard.mu.Unlock()
		touched++
	}
	return touched
}

// Contains reports whether the document id has been admitted.
func (idx *Index) Contains(docID string) bool {
	idx.docMu.RLock()
	_, ok := idx.docs[docID]
	idx.docMu.RUnlock()
	return ok
}

// SourceSize returns the distinct shingle count of an admitted document, the
// denominator contribution for Jaccard similarity. Returns 0 for unknown ids.
func (idx *Index) SourceSize(docID string) int {
	idx.docMu.RLock()
	entry := idx.docs[docID]
	idx.docMu.RUnlock()
	return entry.distinct
}

// Len returns the number of admitted documents.
func (idx *Index) Len() int {
	idx.docMu.RLock()
	n := len(idx.docs)
	idx.docMu.RUnlock()
	return n
}
