package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"datalens/internal/errors"
	"datalens/ports"
)

// Config holds SerpAPI client settings
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Client implements ports.WebSearcher over the SerpAPI Google engine
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a SerpAPI search client
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.ConfigInvalid("missing SerpAPI key")
	}
	if strings.TrimSpace(config.BaseURL) == "" {
		config.BaseURL = "https://serpapi.com"
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// Search fetches up to num organic results for the query. An empty
// result list is not an error.
func (c *Client) Search(ctx context.Context, query string, num int) ([]ports.Snippet, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.InvalidInput("search query is empty")
	}
	if num <= 0 {
		num = 3
	}

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))
	params.Set("api_key", c.config.APIKey)

	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/search.json?" + params.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, errors.ExternalServiceError("serpapi", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalServiceError("serpapi", fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.Unauthorized("SerpAPI key was rejected")
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, errors.ExternalServiceError("serpapi", fmt.Errorf("http %d: %s", resp.StatusCode, string(raw)))
	}

	type organicResult struct {
		Title   string `json:"title"`
		Snippet string `json:"snippet"`
		Link    string `json:"link"`
	}
	type respBody struct {
		OrganicResults []organicResult `json:"organic_results"`
		Error          string          `json:"error"`
	}
	var decoded respBody
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, errors.ExternalServiceError("serpapi", fmt.Errorf("unmarshal response: %w", err))
	}
	// SerpAPI reports quota and parameter problems in-band
	if decoded.Error != "" {
		return nil, errors.ExternalServiceError("serpapi", fmt.Errorf("%s", decoded.Error))
	}

	if len(decoded.OrganicResults) > num {
		decoded.OrganicResults = decoded.OrganicResults[:num]
	}

	snippets := make([]ports.Snippet, 0, len(decoded.OrganicResults))
	for _, r := range decoded.OrganicResults {
		snippets = append(snippets, ports.Snippet{
			Title:   r.Title,
			Snippet: r.Snippet,
			Link:    r.Link,
		})
	}
	return snippets, nil
}
