package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SourceInfo is what the registry knows about a source document: a
// human-readable label and, for internet sources, a public URL.
type SourceInfo struct {
	SourceID    string  `json:"sourceId"`
	Label       string  `json:"label"`
	ExternalURL *string `json:"externalUrl"`
}

// Client talks to the external source-registry service, which resolves source
// document ids to display metadata. The engine itself stores only ids.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a registry API client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type registryError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Resolve fetches metadata for one source document id.
func (c *Client) Resolve(ctx context.Context, sourceID string) (*SourceInfo, error) {
	url := fmt.Sprintf("%s/api/v1/sources/%s", c.baseURL, sourceID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		var errResp registryError
		if err := json.Unmarshal(body, &errResp); err != nil {
			return nil, fmt.Errorf("registry error (status %d): %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("registry error: %s - %s", errResp.Error, errResp.Message)
	}

	var info SourceInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &info, nil
}
