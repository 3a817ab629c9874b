package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quillcheck/engine/internal/models"
	"github.com/rs/zerolog/log"
)

// Options configures the corpus manager and the pipeline stages it owns.
type Options struct {
	ShingleSize       int
	MinTokens         int
	MinSharedShingles int
	CheckTimeout      time.Duration
	// MaxDocuments bounds corpus size; admitting beyond it evicts the oldest
	// admitted document. 0 means unbounded.
	MaxDocuments int
}

// CheckOptions are per-check knobs supplied by the caller.
type CheckOptions struct {
	// DryRun matches without admitting, for preview checks that must not
	// pollute the corpus.
	DryRun bool
	// ExcludeIDs keeps a document's own prior versions out of its matches.
	ExcludeIDs []string
}

// Manager owns the fingerprint index lifecycle: admission of new documents,
// the compare-then-insert ordering, and eviction. All pipeline state other
// than the index is task-local, so concurrent checks of different documents
// are free to interleave.
type Manager struct {
	opts    Options
	norm    *Normalizer
	index   *Index
	matcher *Matcher

	orderMu sync.Mutex
	order   []string // admission order, drives FIFO capacity eviction
}

// NewManager creates a corpus manager with an empty index.
func NewManager(opts Options) *Manager {
	if opts.ShingleSize <= 0 {
		opts.ShingleSize = DefaultShingleSize
	}
	idx := NewIndex()
	return &Manager{
		opts:    opts,
		norm:    NewNormalizer(opts.MinTokens),
		index:   idx,
		matcher: NewMatcher(idx, opts.MinSharedShingles),
	}
}

// Index exposes the underlying index for read-only introspection (size
// metrics, health).
func (m *Manager) Index() *Index {
	return m.index
}

// Check runs the full pipeline for one submission: normalize, fingerprint,
// match against the existing corpus, reconstruct spans, aggregate, and then,
// unless opts.DryRun, admit the document into the index. Insert is the final
// step, so the document is never compared against itself and cancellation
// before admission leaves no partial writes.
func (m *Manager) Check(
	ctx context.Context,
	docID, collectionTag, rawText string,
	meta models.CheckMetadata,
	opts CheckOptions,
) (*models.Document, models.ComparisonResult, error) {
	if docID == "" {
		docID = uuid.New().String()
	}

	if m.opts.CheckTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.CheckTimeout)
		defer cancel()
	}

	// Reject duplicates up front; re-admitting would corrupt match history.
	if !opts.DryRun && m.index.Contains(docID) {
		return nil, models.ComparisonResult{}, ErrDuplicateSubmission
	}

	tokens, err := m.norm.Normalize(rawText)
	if err != nil {
		return nil, models.ComparisonResult{}, err
	}
	if err := checkDeadline(ctx); err != nil {
		return nil, models.ComparisonResult{}, err
	}

	doc := &models.Document{
		ID:            docID,
		CollectionTag: collectionTag,
		SourceLabel:   meta.SourceLabel,
		Tokens:        tokens,
		ByteLen:       len(rawText),
		SubmittedAt:   meta.SubmittedAt,
	}
	if doc.SubmittedAt.IsZero() {
		doc.SubmittedAt = time.Now().UTC()
	}

	fp := Shingles(tokens, m.opts.ShingleSize)
	if err := checkDeadline(ctx); err != nil {
		return nil, models.ComparisonResult{}, err
	}

	exclude := make(map[string]struct{}, len(opts.ExcludeIDs)+1)
	exclude[docID] = struct{}{}
	for _, id := range opts.ExcludeIDs {
		exclude[id] = struct{}{}
	}

	candidates := m.matcher.Match(fp, exclude)
	if err := checkDeadline(ctx); err != nil {
		return nil, models.ComparisonResult{}, err
	}

	spansBySource := make(map[string][]models.Span, len(candidates))
	for _, cand := range candidates {
		spansBySource[cand.SourceID] = Spans(fp, cand.MatchedHashes)
	}
	if err := checkDeadline(ctx); err != nil {
		return nil, models.ComparisonResult{}, err
	}

	result := Aggregate(docID, fp, candidates, spansBySource, opts.DryRun)

	if !opts.DryRun {
		if err := m.admit(docID, fp); err != nil {
			return nil, models.ComparisonResult{}, err
		}
	}
	return doc, result, nil
}

// Restore re-admits a previously persisted document without matching, used
// when rebuilding the in-memory index after a restart.
func (m *Manager) Restore(doc *models.Document) error {
	fp := Shingles(doc.Tokens, m.opts.ShingleSize)
	return m.admit(doc.ID, fp)
}

// Evict fully removes a document from the index, e.g. when a submission is
// withdrawn or superseded.
func (m *Manager) Evict(docID string) error {
	if m.index.Remove(docID) == 0 && !m.forget(docID) {
		return ErrDocumentNotFound
	}
	m.forget(docID)
	log.Info().Str("documentId", docID).Msg("Document evicted from corpus")
	return nil
}

func (m *Manager) admit(docID string, fp FingerprintSet) error {
	if err := m.index.Insert(docID, fp); err != nil {
		return err
	}

	m.orderMu.Lock()
	m.order = append(m.order, docID)
	var evict string
	if m.opts.MaxDocuments > 0 && len(m.order) > m.opts.MaxDocuments {
		evict = m.order[0]
		m.order = m.order[1:]
	}
	m.orderMu.Unlock()

	if evict != "" {
		m.index.Remove(evict)
		log.Info().
			Str("documentId", evict).
			Int("maxDocuments", m.opts.MaxDocuments).
			Msg("Oldest document evicted at capacity")
	}
	return nil
}

func (m *Manager) forget(docID string) bool {
	m.orderMu.Lock()
	defer m.orderMu.Unlock()
	for i, id := range m.order {
		if id == docID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			return true
		}
	}
	return false
}

func checkDeadline(ctx context.Context) error {
	err := ctx.Err()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	default:
		return err
	}
}
