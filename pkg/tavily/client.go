// Package tavily provides a client for the Tavily web search API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.tavily.com"

// Client performs web searches against the Tavily API.
type Client interface {
	Search(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error)
}

// SearchOptions tunes a single search call. Zero values fall back to
// advanced depth, general topic, and 5 results.
type SearchOptions struct {
	MaxResults     int
	Depth          string // "basic" or "advanced"
	Topic          string // "general", "news", or "finance"
	TimeRange      string // "day", "week", "month", or "year"
	IncludeDomains []string
}

// searchRequest is the request body for POST /search.
type searchRequest struct {
	Query             string   `json:"query"`
	SearchDepth       string   `json:"search_depth"`
	Topic             string   `json:"topic"`
	MaxResults        int      `json:"max_results"`
	IncludeAnswer     bool     `json:"include_answer"`
	IncludeRawContent string   `json:"include_raw_content"`
	TimeRange         string   `json:"time_range,omitempty"`
	IncludeDomains    []string `json:"include_domains,omitempty"`
}

// SearchResponse is the response from POST /search.
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

// SearchResult is a single search hit. RawContent carries the full rendered
// page when include_raw_content is requested; Content is the provider's
// snippet.
type SearchResult struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content"`
	Score      float64 `json:"score"`
}

// Text returns the best available content for a result, preferring the full
// raw content over the snippet.
func (r SearchResult) Text() string {
	if r.RawContent != "" {
		return r.RawContent
	}
	return r.Content
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a Tavily API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error) {
	req := searchRequest{
		Query:             query,
		SearchDepth:       opts.Depth,
		Topic:             opts.Topic,
		MaxResults:        clampResults(opts.MaxResults),
		IncludeAnswer:     false, // synthesis happens in the extraction runners
		IncludeRawContent: "markdown",
		TimeRange:         opts.TimeRange,
		IncludeDomains:    opts.IncludeDomains,
	}
	if req.SearchDepth == "" {
		req.SearchDepth = "advanced"
	}
	if req.Topic == "" {
		req.Topic = "general"
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "tavily: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "tavily: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "tavily: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "tavily: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("tavily: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result SearchResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "tavily: unmarshal response")
	}

	return &result, nil
}

// clampResults bounds max_results to the provider's accepted [1,20] range,
// defaulting to 5.
func clampResults(n int) int {
	if n <= 0 {
		return 5
	}
	if n > 20 {
		return 20
	}
	return n
}
