package checker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quillcheck/engine/internal/engine"
	"github.com/quillcheck/engine/internal/metrics"
	"github.com/quillcheck/engine/internal/models"
	"github.com/quillcheck/engine/internal/registry"
	"github.com/quillcheck/engine/internal/repository"
)

// ResultsStore persists comparison results. Satisfied by
// repository.ResultsRepository.
type ResultsStore interface {
	InsertResult(ctx context.Context, result *models.ComparisonResult) error
	GetLatestResultByDocumentID(ctx context.Context, documentID string) (*models.ComparisonResult, error)
}

// DocumentsStore persists admitted corpus documents. Satisfied by
// repository.DocumentsRepository.
type DocumentsStore interface {
	InsertDocument(ctx context.Context, doc *models.Document) error
	DeleteDocument(ctx context.Context, documentID string) error
	GetAllDocuments(ctx context.Context) ([]*models.Document, error)
}

// SourceResolver resolves source ids to display metadata. Satisfied by
// registry.Resolver.
type SourceResolver interface {
	Resolve(ctx context.Context, sourceID string) *registry.SourceInfo
}

// Service runs the check pipeline end to end: corpus manager for the
// similarity engine, Mongo for persistence, the source registry for match
// metadata.
type Service struct {
	manager       *engine.Manager
	resultsRepo   ResultsStore
	documentsRepo DocumentsStore
	resolver      SourceResolver
}

var _ ResultsStore = (*repository.ResultsRepository)(nil)
var _ DocumentsStore = (*repository.DocumentsRepository)(nil)

func NewService(
	manager *engine.Manager,
	resultsRepo ResultsStore,
	documentsRepo DocumentsStore,
	resolver SourceResolver,
) *Service {
	return &Service{
		manager:       manager,
		resultsRepo:   resultsRepo,
		documentsRepo: documentsRepo,
		resolver:      resolver,
	}
}

// Check runs one check request through the engine, enriches matches with
// registry metadata and, unless the request is a dry run, persists the
// admitted document and its result.
func (s *Service) Check(ctx context.Context, req *models.CheckRequest) (*models.ComparisonResult, error) {
	start := time.Now()

	doc, result, err := s.manager.Check(ctx, req.DocumentID, req.CollectionTag, req.RawText,
		req.Metadata, engine.CheckOptions{DryRun: req.DryRun})
	if err != nil {
		metrics.ChecksTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	s.enrichMatches(ctx, &result)

	if !req.DryRun {
		if err := s.documentsRepo.InsertDocument(ctx, doc); err != nil {
			log.Error().Err(err).Str("documentId", doc.ID).Msg("Failed to persist corpus document")
		}
		if err := s.resultsRepo.InsertResult(ctx, &result); err != nil {
			log.Error().Err(err).Str("documentId", doc.ID).Msg("Failed to persist comparison result")
		}
	}

	metrics.ChecksTotal.WithLabelValues("completed").Inc()
	metrics.CheckDuration.Observe(time.Since(start).Seconds())
	metrics.CorpusSize.Set(float64(s.manager.Index().Len()))

	log.Info().
		Str("documentId", doc.ID).
		Str("collectionTag", req.CollectionTag).
		Float64("overallScore", result.OverallScore).
		Int("matches", len(result.Matches)).
		Bool("dryRun", req.DryRun).
		Dur("elapsed", time.Since(start)).
		Msg("Check completed")

	return &result, nil
}

// ProcessSubmission handles one stream submission; a full check with
// admission, never a dry run.
func (s *Service) ProcessSubmission(ctx context.Context, submission *models.Submission) error {
	req := &models.CheckRequest{
		DocumentID:    submission.DocumentID,
		CollectionTag: submission.CollectionTag,
		RawText:       submission.RawText,
		Metadata: models.CheckMetadata{
			SubmittedAt: submission.SubmittedAt,
			SourceLabel: submission.SourceLabel,
		},
	}

	if _, err := s.Check(ctx, req); err != nil {
		return fmt.Errorf("failed to check submission: %w", err)
	}

	return nil
}

// Evict withdraws a document from the corpus and its persisted copy.
func (s *Service) Evict(ctx context.Context, documentID string) error {
	if err := s.manager.Evict(documentID); err != nil {
		return err
	}

	if err := s.documentsRepo.DeleteDocument(ctx, documentID); err != nil {
		// The in-memory eviction already succeeded; a missing persisted copy
		// only matters for the next rebuild.
		log.Warn().Err(err).Str("documentId", documentID).Msg("Failed to delete persisted document")
	}

	metrics.CorpusSize.Set(float64(s.manager.Index().Len()))
	return nil
}

// Result returns the most recent persisted result for a document id.
func (s *Service) Result(ctx context.Context, documentID string) (*models.ComparisonResult, error) {
	return s.resultsRepo.GetLatestResultByDocumentID(ctx, documentID)
}

// Rebuild re-admits the persisted corpus into the in-memory index, oldest
// first so capacity eviction keeps its FIFO order across restarts.
func (s *Service) Rebuild(ctx context.Context) error {
	docs, err := s.documentsRepo.GetAllDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to load persisted corpus: %w", err)
	}

	restored := 0
	for _, doc := range docs {
		if err := s.manager.Restore(doc); err != nil {
			log.Warn().Err(err).Str("documentId", doc.ID).Msg("Skipping document during rebuild")
			continue
		}
		restored++
	}

	metrics.CorpusSize.Set(float64(s.manager.Index().Len()))
	log.Info().Int("restored", restored).Int("persisted", len(docs)).Msg("Corpus index rebuilt")
	return nil
}

func (s *Service) enrichMatches(ctx context.Context, result *models.ComparisonResult) {
	for i := range result.Matches {
		match := &result.Matches[i]
		if s.resolver != nil {
			if info := s.resolver.Resolve(ctx, match.SourceID); info != nil {
				match.SourceLabel = info.Label
				match.ExternalURL = info.ExternalURL
				continue
			}
		}
		if match.SourceLabel == "" {
			match.SourceLabel = match.SourceID
		}
	}
}
