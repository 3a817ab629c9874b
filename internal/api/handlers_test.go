package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillcheck/engine/internal/engine"
)

func TestMapEngineError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{engine.ErrEmptyDocument, http.StatusUnprocessableEntity, "EMPTY_DOCUMENT"},
		{engine.ErrUnsupportedEncoding, http.StatusUnsupportedMediaType, "UNSUPPORTED_ENCODING"},
		{engine.ErrDuplicateSubmission, http.StatusConflict, "DUPLICATE_SUBMISSION"},
		{engine.ErrTimeout, http.StatusGatewayTimeout, "TIMEOUT"},
		{engine.ErrIndexUnavailable, http.StatusServiceUnavailable, "INDEX_UNAVAILABLE"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			status, resp := mapEngineError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, resp.Code)
		})
	}
}

func TestMapEngineErrorWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("check failed: %w", engine.ErrTimeout)
	status, resp := mapEngineError(wrapped)
	assert.Equal(t, http.StatusGatewayTimeout, status)
	assert.Equal(t, "TIMEOUT", resp.Code)
}
