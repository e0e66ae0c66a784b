package observability

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestNewLogger(t *testing.T) {
	assert.NotNil(t, NewLogger("info", "json"))
	assert.NotNil(t, NewLogger("debug", "text"))
}

func TestMetricsForTesting_Increment(t *testing.T) {
	m := NewMetricsForTesting()
	m.Queries.WithLabelValues("summary.total", "success").Inc()
	m.FactCache.WithLabelValues("hit").Add(2)

	assert.InDelta(t, 1, testutil.ToFloat64(m.Queries.WithLabelValues("summary.total", "success")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.FactCache.WithLabelValues("hit")), 0)
}

type captureHandler struct {
	records []slog.Record
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *captureHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r)
	return nil
}
func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(string) slog.Handler      { return h }

func TestGormLogger_Trace(t *testing.T) {
	h := &captureHandler{}
	gl := NewGormLogger(slog.New(h), 100*time.Millisecond)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(context.Background(), time.Now(), sql, nil)
	gl.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	gl.Trace(context.Background(), time.Now(), sql, errors.New("boom"))

	require.Len(t, h.records, 3)
	assert.Equal(t, slog.LevelDebug, h.records[0].Level)
	assert.Equal(t, slog.LevelWarn, h.records[1].Level)
	assert.True(t, strings.Contains(h.records[1].Message, "slow"))
	assert.Equal(t, slog.LevelWarn, h.records[2].Level)
	assert.Equal(t, "query error", h.records[2].Message)
}
