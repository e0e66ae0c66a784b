// Package testutil provides an in-memory SQLite store seeded with a small,
// hand-checked asteroid dataset for package tests.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/neo-explorer-service/internal/adapter/store"
	"github.com/couchcryptid/neo-explorer-service/internal/observability"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OpenStore returns a migrated, empty in-memory store closed at test cleanup.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: observability.NewGormLogger(DiscardLogger(), 0),
	})
	require.NoError(t, err)

	// Every pooled connection to ":memory:" is a separate database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s, err := store.New(db, DiscardLogger(), observability.NewMetricsForTesting())
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))

	t.Cleanup(func() { _ = s.Close() })
	return s
}

// SeedStore returns a store loaded with Asteroids and Approaches.
func SeedStore(t testing.TB) *store.Store {
	t.Helper()

	s := OpenStore(t)
	ctx := context.Background()
	require.NoError(t, s.InsertAsteroids(ctx, Asteroids(), 100))
	require.NoError(t, s.InsertApproaches(ctx, Approaches(), 100))
	return s
}
