// Command seed loads asteroid and close approach CSV exports into the
// dashboard database. Every row is checked before anything is written:
// diameters must satisfy min <= max, each approach needs a miss distance in
// at least one unit, and every approach must reference a known asteroid.
//
// Usage:
//
//	go run ./cmd/seed \
//	  --asteroids data/asteroids.csv \
//	  --approaches data/close_approach.csv \
//	  --migrate
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/couchcryptid/neo-explorer-service/internal/adapter/store"
	"github.com/couchcryptid/neo-explorer-service/internal/config"
	"github.com/couchcryptid/neo-explorer-service/internal/domain"
	"github.com/couchcryptid/neo-explorer-service/internal/observability"
	"github.com/joho/godotenv"
	"github.com/jszwec/csvutil"
	"github.com/spf13/cobra"
)

type options struct {
	asteroids  string
	approaches string
	migrate    bool
	batchSize  int
}

// writer is the subset of the store the seed command writes through.
type writer interface {
	Migrate(ctx context.Context) error
	InsertAsteroids(ctx context.Context, asteroids []domain.Asteroid, batchSize int) error
	InsertApproaches(ctx context.Context, approaches []domain.CloseApproach, batchSize int) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Load asteroid and close approach CSV files into the database",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)

			st, err := store.Open(cfg, logger, observability.NewMetrics())
			if err != nil {
				return err
			}
			defer st.Close()

			return seed(cmd.Context(), st, opts, logger)
		},
	}

	cmd.Flags().StringVar(&opts.asteroids, "asteroids", "", "path to the asteroids CSV file")
	cmd.Flags().StringVar(&opts.approaches, "approaches", "", "path to the close approach CSV file")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "create or update the schema before loading")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 500, "rows per insert statement")
	_ = cmd.MarkFlagRequired("asteroids")
	_ = cmd.MarkFlagRequired("approaches")

	return cmd
}

func seed(ctx context.Context, w writer, opts options, logger *slog.Logger) error {
	start := time.Now()

	asteroids, err := loadAsteroids(opts.asteroids)
	if err != nil {
		return err
	}
	approaches, err := loadApproaches(opts.approaches, asteroids)
	if err != nil {
		return err
	}

	if opts.migrate {
		if err := w.Migrate(ctx); err != nil {
			return err
		}
	}
	if err := w.InsertAsteroids(ctx, asteroids, opts.batchSize); err != nil {
		return err
	}
	if err := w.InsertApproaches(ctx, approaches, opts.batchSize); err != nil {
		return err
	}

	logger.Info("seed complete",
		"asteroids", len(asteroids),
		"approaches", len(approaches),
		"duration", time.Since(start),
	)
	return nil
}

func loadAsteroids(path string) ([]domain.Asteroid, error) {
	asteroids, err := decodeFile[domain.Asteroid](path)
	if err != nil {
		return nil, err
	}

	var errs []error
	seen := make(map[int64]bool, len(asteroids))
	for i, a := range asteroids {
		if err := a.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s row %d: %w", path, i+2, err))
		}
		if seen[a.ID] {
			errs = append(errs, fmt.Errorf("%s row %d: duplicate asteroid id %d", path, i+2, a.ID))
		}
		seen[a.ID] = true
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return asteroids, nil
}

func loadApproaches(path string, asteroids []domain.Asteroid) ([]domain.CloseApproach, error) {
	approaches, err := decodeFile[domain.CloseApproach](path)
	if err != nil {
		return nil, err
	}

	known := make(map[int64]bool, len(asteroids))
	for _, a := range asteroids {
		known[a.ID] = true
	}

	var errs []error
	for i := range approaches {
		c := &approaches[i]
		row := i + 2
		if !known[c.NeoReferenceID] {
			errs = append(errs, fmt.Errorf("%s row %d: unknown asteroid %d", path, row, c.NeoReferenceID))
		}
		if _, err := time.Parse(domain.DateLayout, c.CloseApproachDate); err != nil {
			errs = append(errs, fmt.Errorf("%s row %d: close_approach_date %q: want YYYY-MM-DD", path, row, c.CloseApproachDate))
		}
		if err := c.Normalize(); err != nil {
			errs = append(errs, fmt.Errorf("%s row %d: %w", path, row, err))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return approaches, nil
}

func decodeFile[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := csvutil.NewDecoder(csv.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", path, err)
	}
	// Missing numbers decode as zero; Normalize derives absent distance units.
	dec.Map = func(field, _ string, v any) string {
		if field == "" {
			switch v.(type) {
			case float64, int64:
				return "0"
			}
		}
		return field
	}

	var out []T
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}
