package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gnosis-influencer/internal/app"
)

// Two interchangeable transports implement app.SimilaritySearcher: the
// GraphQL variant used by the main deployment (user-scoped) and a plain
// REST variant (user and content scoped). The pipeline never branches on
// which one is wired.

const searchSimilarChunksQuery = `
query search($userId: String!, $queryText: String!, $limit: Int!) {
    searchSimilarChunks(userId: $userId, query: $queryText, limit: $limit) {
        chunkId
        contentId
        fileName
        text
        similarityScore
    }
}
`

type GraphQLSearcher struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

func NewGraphQLSearcher(endpoint, apiKey string) *GraphQLSearcher {
	return &GraphQLSearcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}

func (s *GraphQLSearcher) SearchSimilar(ctx context.Context, input app.SearchInput) ([]app.SearchMatch, error) {
	reqBody := map[string]interface{}{
		"query": searchSimilarChunksQuery,
		"variables": map[string]interface{}{
			// the schema types userId as String
			"userId":    strconv.FormatUint(uint64(input.UserID), 10),
			"queryText": input.QueryText,
			"limit":     input.Limit,
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal search request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("build search request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setServiceHeaders(req, s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Data struct {
			SearchSimilarChunks []struct {
				ChunkID uint   `json:"chunkId"`
				Text    string `json:"text"`
			} `json:"searchSimilarChunks"`
		} `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse search json failed: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("search graphql error: %s", parsed.Errors[0].Message)
	}

	matches := make([]app.SearchMatch, 0, len(parsed.Data.SearchSimilarChunks))
	for _, item := range parsed.Data.SearchSimilarChunks {
		matches = append(matches, app.SearchMatch{
			ChunkID: item.ChunkID,
			Text:    item.Text,
		})
	}
	return matches, nil
}

type RESTSearcher struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewRESTSearcher(baseURL, apiKey string) *RESTSearcher {
	return &RESTSearcher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

func (s *RESTSearcher) SearchSimilar(ctx context.Context, input app.SearchInput) ([]app.SearchMatch, error) {
	params := url.Values{}
	params.Set("user_id", strconv.FormatUint(uint64(input.UserID), 10))
	params.Set("content_id", strconv.FormatUint(uint64(input.ContentID), 10))
	params.Set("query_text", input.QueryText)
	params.Set("limit", strconv.Itoa(input.Limit))

	searchURL := s.baseURL + "/api/search?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request failed: %w", err)
	}
	setServiceHeaders(req, s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search response status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Results []struct {
			ChunkID uint   `json:"chunk_id"`
			Text    string `json:"text"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse search json failed: %w", err)
	}

	matches := make([]app.SearchMatch, 0, len(parsed.Results))
	for _, item := range parsed.Results {
		matches = append(matches, app.SearchMatch{
			ChunkID: item.ChunkID,
			Text:    item.Text,
		})
	}
	return matches, nil
}
