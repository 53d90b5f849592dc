// Package client talks to the remote scraping service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/use-agent/scrapedesk/models"
)

// DefaultEndpoint is the scraping service the UI has always talked to.
const DefaultEndpoint = "http://127.0.0.1:5000/scrape"

// Client issues scrape requests. It never retries and never inspects the
// HTTP status: any JSON body is handed back to the caller.
type Client struct {
	endpoint string
	http     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a Client for endpoint. A zero timeout means a request may stay
// pending until the service answers or ctx is done.
func New(endpoint string, timeout time.Duration, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the service URL requests are sent to.
func (c *Client) Endpoint() string { return c.endpoint }

// Scrape POSTs req to the service and decodes the reply. Transport failures
// are reported with ErrCodeTransport, undecodable bodies with ErrCodeDecode.
func (c *Client) Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeTransport, "create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeTransport, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeTransport, "read response", err)
	}

	var out *models.ScrapeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeDecode,
			fmt.Sprintf("decode response (status %d)", resp.StatusCode), err)
	}
	if out == nil {
		return nil, models.NewScrapeError(models.ErrCodeDecode,
			fmt.Sprintf("decode response (status %d): body is null", resp.StatusCode), nil)
	}
	return out, nil
}
