// Package search provides the internet-search collaborator used for prompt
// enrichment. Lookups go through the DuckDuckGo Instant Answer API.
package search

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

// Fixed user-facing notices. Search never fails a generation request, it
// degrades to one of these strings instead.
const (
	FailureNotice  = "Ошибка при попытке поиска в интернете."
	DisabledNotice = "Поиск в интернете отключен."
	NotFoundNotice = "Ничего не найдено."
)

// Client queries the instant-answer API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	enabled    bool
}

// NewClient creates a search client. A disabled client answers every query
// with the disabled notice.
func NewClient(baseURL string, enabled bool) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		enabled: enabled,
	}
}

type instantAnswer struct {
	Abstract      string `json:"Abstract"`
	RelatedTopics []struct {
		Text string `json:"Text"`
	} `json:"RelatedTopics"`
}

// Search returns a short text for the query. It never returns an error: any
// internal failure yields the fixed failure notice so the caller can splice
// the result into a prompt unconditionally.
func (c *Client) Search(ctx context.Context, query string) string {
	if !c.enabled {
		return DisabledNotice
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		log.Printf("WARN: search request build failed: %v", err)
		return FailureNotice
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("WARN: search request failed: %v", err)
		return FailureNotice
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("WARN: search returned status %d", resp.StatusCode)
		return FailureNotice
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("WARN: search response read failed: %v", err)
		return FailureNotice
	}

	var answer instantAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		log.Printf("WARN: search response parse failed: %v", err)
		return FailureNotice
	}

	if answer.Abstract != "" {
		return answer.Abstract
	}
	if len(answer.RelatedTopics) > 0 && answer.RelatedTopics[0].Text != "" {
		return answer.RelatedTopics[0].Text
	}
	return NotFoundNotice
}
