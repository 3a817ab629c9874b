package engine

import (
	"errors"
)

// Error taxonomy of the similarity engine. Stage-local errors are
// deterministic for a given input and must not be retried; only
// ErrIndexUnavailable is transient and safe for the caller to retry.
var (
	// ErrEmptyDocument indicates normalization yielded fewer tokens than the
	// configured minimum. The check is aborted before fingerprinting.
	ErrEmptyDocument = errors.New("document is empty after normalization")

	// ErrUnsupportedEncoding indicates the raw text is not valid UTF-8.
	ErrUnsupportedEncoding = errors.New("raw text is not valid UTF-8")

	// ErrIndexUnavailable indicates the fingerprint index could not be
	// reached within the bounded retry window. Recoverable.
	ErrIndexUnavailable = errors.New("fingerprint index unavailable")

	// ErrTimeout indicates the check pipeline exceeded its deadline. The
	// index is left unmodified; partial matches are discarded, not admitted.
	ErrTimeout = errors.New("check exceeded deadline")

	// ErrDuplicateSubmission indicates admission of a documentId already
	// present in the index. Rejected rather than overwritten to preserve
	// matching history.
	ErrDuplicateSubmission = errors.New("document already admitted")

	// ErrDocumentNotFound indicates eviction of a documentId the index does
	// not contain.
	ErrDocumentNotFound = errors.New("document not found in corpus")
)
