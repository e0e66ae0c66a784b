// Package apod fetches the fact of the day from NASA's Astronomy Picture of
// the Day API.
package apod

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/observability"
)

const mediaTypeImage = "image"

// Client implements domain.FactProvider using the APOD API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an APOD client.
func NewClient(apiKey, baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchFact requests today's entry.
func (c *Client) FetchFact(ctx context.Context) (domain.Fact, error) {
	fact, err := c.fetch(ctx)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	c.metrics.FactRequests.WithLabelValues(outcome).Inc()
	return fact, err
}

func (c *Client) fetch(ctx context.Context) (domain.Fact, error) {
	params := url.Values{"api_key": {c.apiKey}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.Fact{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Fact{}, fmt.Errorf("apod request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Fact{}, fmt.Errorf("apod API error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Fact{}, fmt.Errorf("decode response: %w", err)
	}
	if payload.Title == "" && payload.Explanation == "" {
		return domain.Fact{}, domain.ErrMalformedFact
	}

	fact := domain.Fact{
		Title:       payload.Title,
		Explanation: payload.Explanation,
		Date:        payload.Date,
	}
	// Videos and other media have no still image to show.
	if payload.MediaType == "" || payload.MediaType == mediaTypeImage {
		fact.ImageURL = payload.URL
	}
	c.logger.Debug("fetched fact of the day", "date", payload.Date, "media_type", payload.MediaType)
	return fact, nil
}

// APOD API response type.

type response struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	URL         string `json:"url"`
	MediaType   string `json:"media_type"`
	Date        string `json:"date"`
}
