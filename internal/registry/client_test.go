package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientResolve(t *testing.T) {
	url := "https://example.com/paper-123"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/sources/paper-123", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		json.NewEncoder(w).Encode(SourceInfo{
			SourceID:    "paper-123",
			Label:       "Reference Paper",
			ExternalURL: &url,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	info, err := client.Resolve(context.Background(), "paper-123")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Reference Paper", info.Label)
	require.NotNil(t, info.ExternalURL)
	assert.Equal(t, url, *info.ExternalURL)
}

func TestClientResolveUnknownSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	info, err := client.Resolve(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestClientResolveServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "boom", "message": "broken"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "")
	_, err := client.Resolve(context.Background(), "any")
	assert.Error(t, err)
}

func TestResolverDegradesWithoutRegistry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	resolver := NewResolver(NewClient(server.URL, ""), nil)
	assert.Nil(t, resolver.Resolve(context.Background(), "doc-1"),
		"registry failure must degrade to an unresolved source, not an error")
}
