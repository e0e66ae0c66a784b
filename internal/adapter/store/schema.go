package store

import (
	"context"
	"fmt"

	"github.com/couchcryptid/neo-explorer-service/internal/domain"
)

// Migrate creates or updates the asteroids and close_approach tables. Only
// the seed command writes; the dashboard treats both tables as read-only.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&domain.Asteroid{}, &domain.CloseApproach{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// InsertAsteroids writes asteroids in batches of batchSize.
func (s *Store) InsertAsteroids(ctx context.Context, asteroids []domain.Asteroid, batchSize int) error {
	if len(asteroids) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(asteroids, batchSize).Error; err != nil {
		return fmt.Errorf("insert asteroids: %w", err)
	}
	return nil
}

// InsertApproaches writes close approaches in batches of batchSize.
func (s *Store) InsertApproaches(ctx context.Context, approaches []domain.CloseApproach, batchSize int) error {
	if len(approaches) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(approaches, batchSize).Error; err != nil {
		return fmt.Errorf("insert close approaches: %w", err)
	}
	return nil
}
