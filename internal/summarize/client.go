// Package summarize wraps the stateless page-summary endpoint: one POST with
// query parameters, plain-text body back.
package summarize

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// DefaultLanguage is used when the caller does not name one.
const DefaultLanguage = "en"

// Client issues summary requests against a fixed endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient builds a summarizer client. A nil http.Client falls back to
// http.DefaultClient.
func NewClient(endpoint string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{endpoint: endpoint, http: client}
}

// Summarize requests a summary of website in the given language and returns
// the response body as text. The request is a POST with url/language query
// parameters and no body. On any failure the summary is empty; callers that
// tolerate missing summaries ignore the error.
func (c *Client) Summarize(ctx context.Context, website, language string) (string, error) {
	if language == "" {
		language = DefaultLanguage
	}

	q := url.Values{}
	q.Set("url", website)
	q.Set("language", language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("summarize: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("summarize: status=%d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("summarize: read body: %w", err)
	}
	return string(body), nil
}
