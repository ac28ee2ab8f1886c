// Package websearch finds web pages for the video discovery agent.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tmc/langchaingo/tools"
	"github.com/tmc/langchaingo/tools/duckduckgo"
)

// DefaultTavilyURL is the Tavily search endpoint.
const DefaultTavilyURL = "https://api.tavily.com/search"

// DefaultMaxResults is how many results one search returns.
const DefaultMaxResults = 5

// Result is one search hit.
type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Tavily is a client for the Tavily search API. It also satisfies
// langchaingo's tools.Tool so it can stand in for any search tool.
type Tavily struct {
	apiKey     string
	endpoint   string
	maxResults int
	client     *http.Client
}

var _ tools.Tool = (*Tavily)(nil)

// TavilyOption configures a Tavily client.
type TavilyOption func(*Tavily)

// WithEndpoint overrides the API URL.
func WithEndpoint(url string) TavilyOption {
	return func(t *Tavily) { t.endpoint = url }
}

// WithMaxResults sets the result count for Call.
func WithMaxResults(n int) TavilyOption {
	return func(t *Tavily) { t.maxResults = n }
}

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(c *http.Client) TavilyOption {
	return func(t *Tavily) { t.client = c }
}

func NewTavily(apiKey string, opts ...TavilyOption) *Tavily {
	t := &Tavily{
		apiKey:     apiKey,
		endpoint:   DefaultTavilyURL,
		maxResults: DefaultMaxResults,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth,omitempty"`
}

type tavilyResponse struct {
	Query   string   `json:"query"`
	Results []Result `json:"results"`
}

// StatusError is a non-2xx reply from the search API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tavily: HTTP %d: %s", e.StatusCode, e.Body)
}

// Search runs query and returns up to maxResults hits.
func (t *Tavily) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = t.maxResults
	}
	body, err := json.Marshal(tavilyRequest{
		APIKey:     t.apiKey,
		Query:      query,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	var out tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("tavily: decode response: %w", err)
	}
	if len(out.Results) > maxResults {
		out.Results = out.Results[:maxResults]
	}
	return out.Results, nil
}

func (t *Tavily) Name() string {
	return "tavily_search"
}

func (t *Tavily) Description() string {
	return "Search the web. Input is a search query; output lists titles, URLs and snippets."
}

// Call searches and formats the hits as text for a language model.
func (t *Tavily) Call(ctx context.Context, input string) (string, error) {
	results, err := t.Search(ctx, input, t.maxResults)
	if err != nil {
		return "", err
	}
	return Format(results), nil
}

// Format renders results as Title/URL/Content blocks.
func Format(results []Result) string {
	if len(results) == 0 {
		return "No results found."
	}
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "Title: %s\nURL: %s\nContent: %s\n\n", r.Title, r.URL, r.Content)
	}
	return strings.TrimSpace(b.String())
}

// New picks Tavily when apiKey is set and falls back to DuckDuckGo.
func New(apiKey string) (tools.Tool, error) {
	if apiKey != "" {
		return NewTavily(apiKey), nil
	}
	return duckduckgo.New(DefaultMaxResults, duckduckgo.DefaultUserAgent)
}
