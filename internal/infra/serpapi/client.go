package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"stockvoice/internal/domain"
)

const DefaultBaseURL = "https://serpapi.com"

// Client runs Google web searches through SerpAPI.
type Client struct {
	client *resty.Client
	apiKey string
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(timeout)

	return &Client{
		client: client,
		apiKey: apiKey,
	}
}

type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
}

type organicResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
}

// Search returns the organic results in rank order. A response without
// organic_results yields an empty slice.
func (c *Client) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":       query,
			"api_key": c.apiKey,
		}).
		Get("/search.json")
	if err != nil {
		return nil, fmt.Errorf("sending search request: %w", c.redact(err))
	}

	if !resp.IsSuccess() {
		return nil, &domain.SearchRequestError{Status: http.StatusText(resp.StatusCode())}
	}

	var result searchResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(result.OrganicResults))
	for _, r := range result.OrganicResults {
		results = append(results, domain.SearchResult{
			Title:   r.Title,
			Snippet: r.Snippet,
			Link:    r.Link,
		})
	}
	return results, nil
}

// redact strips the request URL, which carries api_key, from transport errors.
func (c *Client) redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s /search.json: %w", urlErr.Op, urlErr.Err)
	}
	if c.apiKey != "" && strings.Contains(err.Error(), c.apiKey) {
		return errors.New(strings.ReplaceAll(err.Error(), c.apiKey, "REDACTED"))
	}
	return err
}
