package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger adapts slog to GORM's logger.Interface.
// Statements log at DEBUG; errors and slow statements log at WARN.
type GormLogger struct {
	logger        *slog.Logger
	slowThreshold time.Duration
}

// NewGormLogger creates a GORM logger. A zero slowThreshold disables slow query warnings.
func NewGormLogger(logger *slog.Logger, slowThreshold time.Duration) *GormLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &GormLogger{
		logger:        logger.With("component", "store"),
		slowThreshold: slowThreshold,
	}
}

// LogMode returns the adapter itself; verbosity follows the slog handler level.
func (g *GormLogger) LogMode(_ gormlogger.LogLevel) gormlogger.Interface {
	return g
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	g.logger.DebugContext(ctx, fmt.Sprintf(msg, data...))
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	g.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	g.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
}

// Trace logs one executed statement.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		g.logger.WarnContext(ctx, "query error",
			"sql", sql,
			"rows", rows,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold:
		g.logger.WarnContext(ctx, "slow query",
			"sql", sql,
			"rows", rows,
			"duration_ms", elapsed.Milliseconds(),
			"threshold", g.slowThreshold,
		)
	default:
		g.logger.DebugContext(ctx, "sql query",
			"sql", sql,
			"rows", rows,
			"duration_ms", elapsed.Milliseconds(),
		)
	}
}
