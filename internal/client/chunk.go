package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ChunkClient resolves content chunk ids to their text via the queries
// API.
type ChunkClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewChunkClient(baseURL, apiKey string) *ChunkClient {
	return &ChunkClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

func (c *ChunkClient) ChunkText(ctx context.Context, chunkID uint) (string, error) {
	url := fmt.Sprintf("%s/api/chunk/%d", c.baseURL, chunkID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build chunk request failed: %w", err)
	}
	setServiceHeaders(req, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chunk request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chunk response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chunk response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse chunk json failed: %w", err)
	}
	return parsed.Text, nil
}
