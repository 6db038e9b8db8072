// Package repository holds the learned-weight stores and the feedback log.
package repository

import (
	"context"

	"github.com/Sajal133/truerate-api/internal/domain/model"
)

// Store persists learned weights by key. Writes are last-writer-wins with no
// transactional guarantee.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (float64, bool, error)
	// Put overwrites the value for key.
	Put(ctx context.Context, key string, value float64) error
	// GetAll returns every stored weight.
	GetAll(ctx context.Context) (map[string]float64, error)
	// Close releases underlying resources.
	Close() error
}

// FeedbackLog records feedback votes and summarises them.
type FeedbackLog interface {
	// Record stores a vote. A repeat of the same text and vote overwrites the earlier one.
	Record(ctx context.Context, rec model.FeedbackRecord) error
	// Stats summarises all recorded votes.
	Stats(ctx context.Context) (model.FeedbackStats, error)
}

// Backend names used in metrics and stats.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)
