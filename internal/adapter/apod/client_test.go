package apod

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/observability"
	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const (
	testAPIKey        = "test-key"
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := &Client{
		apiKey:     testAPIKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	t.Cleanup(c.httpClient.CloseIdleConnections)
	return c
}

func TestClient_FetchFact_Image(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testAPIKey, r.URL.Query().Get("api_key"))

		resp := response{
			Title:       "The Pillars of Creation",
			Explanation: "Columns of cool gas and dust.",
			URL:         "https://apod.nasa.gov/apod/image/pillars.jpg",
			MediaType:   "image",
			Date:        "2026-10-16",
		}
		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	fact, err := c.FetchFact(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "The Pillars of Creation", fact.Title)
	assert.Equal(t, "Columns of cool gas and dust.", fact.Explanation)
	assert.Equal(t, "https://apod.nasa.gov/apod/image/pillars.jpg", fact.ImageURL)
	assert.Equal(t, "2026-10-16", fact.Date)
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.FactRequests.WithLabelValues("success")), 0)
}

func TestClient_FetchFact_VideoDropsImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set(headerContentType, contentTypeJSON)
		_, _ = w.Write([]byte(`{"title":"Eclipse","explanation":"A video.","url":"https://youtube.com/embed/x","media_type":"video"}`))
	}))
	defer srv.Close()

	fact, err := testClient(t, srv.URL).FetchFact(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Eclipse", fact.Title)
	assert.Empty(t, fact.ImageURL)
}

func TestClient_FetchFact_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":"OVER_RATE_LIMIT"}}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.FetchFact(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.InDelta(t, 1, testutil.ToFloat64(c.metrics.FactRequests.WithLabelValues("error")), 0)
}

func TestClient_FetchFact_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).FetchFact(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestClient_FetchFact_EmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"url":"https://apod.nasa.gov/x.jpg"}`))
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).FetchFact(context.Background())
	require.ErrorIs(t, err, domain.ErrMalformedFact)
}

func TestClient_FetchFact_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	c.httpClient.Timeout = 20 * time.Millisecond
	_, err := c.FetchFact(context.Background())
	require.Error(t, err)
}

func TestClient_FetchFact_MockTransport(t *testing.T) {
	const base = "https://api.nasa.gov/planetary/apod"
	mt := httpmock.NewMockTransport()
	mt.RegisterResponder(http.MethodGet, base,
		httpmock.NewStringResponder(http.StatusOK, `{"title":"Moon","explanation":"Full.","url":"https://apod.nasa.gov/moon.jpg"}`))

	c := testClient(t, base)
	c.httpClient.Transport = mt

	fact, err := c.FetchFact(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Moon", fact.Title)
	// An absent media type is treated as an image.
	assert.Equal(t, "https://apod.nasa.gov/moon.jpg", fact.ImageURL)
	assert.Equal(t, 1, mt.GetTotalCallCount())
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
