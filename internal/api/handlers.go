package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/quillcheck/engine/internal/checker"
	"github.com/quillcheck/engine/internal/config"
	"github.com/quillcheck/engine/internal/engine"
	"github.com/quillcheck/engine/internal/models"
)

// Handler holds dependencies for handlers
type Handler struct {
	cfg      *config.Config
	checkSvc *checker.Service
	manager  *engine.Manager
	checkSem chan struct{} // Semaphore for bounded concurrency
}

// NewHandler creates a new handler
func NewHandler(cfg *config.Config, checkSvc *checker.Service, manager *engine.Manager) *Handler {
	return &Handler{
		cfg:      cfg,
		checkSvc: checkSvc,
		manager:  manager,
		checkSem: make(chan struct{}, cfg.MaxConcurrentChecks),
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"corpusDocuments": h.manager.Index().Len(),
	})
}

// Check runs the ingest-compare-aggregate pipeline synchronously and returns
// the ComparisonResult. Admission into the corpus is implicit in a successful
// check unless dryRun is set.
func (h *Handler) Check(c *gin.Context) {
	var req models.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	ctx := c.Request.Context()

	// Acquire semaphore (bounded concurrency)
	select {
	case h.checkSem <- struct{}{}:
	case <-ctx.Done():
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}
	defer func() { <-h.checkSem }()

	result, err := h.checkSvc.Check(ctx, &req)
	if err != nil {
		status, resp := mapEngineError(err)
		if status == http.StatusInternalServerError {
			log.Error().Err(err).Str("documentId", req.DocumentID).Msg("Check failed")
		}
		c.JSON(status, resp)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResult returns the most recent persisted result for a document.
func (h *Handler) GetResult(c *gin.Context) {
	documentID := c.Param("documentId")

	result, err := h.checkSvc.Result(c.Request.Context(), documentID)
	if err != nil {
		log.Error().Err(err).Str("documentId", documentID).Msg("Failed to load result")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to load result",
			Code:  "INTERNAL_ERROR",
		})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No result for documentId",
			Code:  "RESULT_NOT_FOUND",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// EvictDocument withdraws a document from the corpus.
func (h *Handler) EvictDocument(c *gin.Context) {
	documentID := c.Param("id")

	if err := h.checkSvc.Evict(c.Request.Context(), documentID); err != nil {
		if errors.Is(err, engine.ErrDocumentNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: "Document not found in corpus",
				Code:  "DOCUMENT_NOT_FOUND",
			})
			return
		}
		log.Error().Err(err).Str("documentId", documentID).Msg("Eviction failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to evict document",
			Code:  "INTERNAL_ERROR",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"documentId": documentID, "evicted": true})
}

// mapEngineError maps the engine's error taxonomy onto HTTP statuses and
// stable error codes.
func mapEngineError(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, engine.ErrEmptyDocument):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Error: "Document is empty after normalization",
			Code:  "EMPTY_DOCUMENT",
		}
	case errors.Is(err, engine.ErrUnsupportedEncoding):
		return http.StatusUnsupportedMediaType, ErrorResponse{
			Error: "Raw text is not valid UTF-8",
			Code:  "UNSUPPORTED_ENCODING",
		}
	case errors.Is(err, engine.ErrDuplicateSubmission):
		return http.StatusConflict, ErrorResponse{
			Error: "Document already admitted to the corpus",
			Code:  "DUPLICATE_SUBMISSION",
		}
	case errors.Is(err, engine.ErrTimeout):
		return http.StatusGatewayTimeout, ErrorResponse{
			Error: "Check exceeded its deadline",
			Code:  "TIMEOUT",
		}
	case errors.Is(err, engine.ErrIndexUnavailable):
		return http.StatusServiceUnavailable, ErrorResponse{
			Error: "Fingerprint index unavailable, retry later",
			Code:  "INDEX_UNAVAILABLE",
		}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Error: "Internal error",
			Code:  "INTERNAL_ERROR",
		}
	}
}
