package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gnosis-influencer/internal/pkg/correlation"
)

// PersonaCache is the optional read-through cache in front of the
// profiles API. Implemented by cache.PersonaCache.
type PersonaCache interface {
	Get(ctx context.Context, contentID uint) (string, bool, error)
	Set(ctx context.Context, contentID uint, instructions string) error
}

// PersonaClient fetches AI persona descriptors from the profiles API.
type PersonaClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      PersonaCache
}

func NewPersonaClient(baseURL, apiKey string, personaCache PersonaCache) *PersonaClient {
	return &PersonaClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		cache:      personaCache,
	}
}

// SystemInstructions returns the persona's system instructions for the
// content domain; empty string when the descriptor carries none.
func (c *PersonaClient) SystemInstructions(ctx context.Context, contentID uint) (string, error) {
	if c.cache != nil {
		if cached, hit, err := c.cache.Get(ctx, contentID); err == nil && hit {
			return cached, nil
		}
	}

	url := fmt.Sprintf("%s/api/ais/content/%d", c.baseURL, contentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build persona request failed: %w", err)
	}
	setServiceHeaders(req, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("persona request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read persona response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("persona response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		SystemsInstructions string `json:"systems_instructions"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse persona json failed: %w", err)
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, contentID, parsed.SystemsInstructions)
	}
	return parsed.SystemsInstructions, nil
}

// setServiceHeaders attaches the shared service API key and, when the
// request context carries one, the correlation id.
func setServiceHeaders(req *http.Request, apiKey string) {
	req.Header.Set("X-API-KEY", apiKey)
	if id := correlation.FromContext(req.Context()); id != "" {
		req.Header.Set(correlation.Header, id)
	}
}
