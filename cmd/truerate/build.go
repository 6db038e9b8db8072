package main

import (
	"context"
	"fmt"

	"github.com/Sajal133/truerate-api/internal/adapters/repository"
	service "github.com/Sajal133/truerate-api/internal/app"
	"github.com/Sajal133/truerate-api/internal/config"
	"github.com/Sajal133/truerate-api/internal/domain/types"
	"github.com/Sajal133/truerate-api/pkg/logger"
)

// openStores builds the weight store and, where the backend supports it,
// the feedback log. A nil log leaves the service on its in-memory log.
func openStores(ctx context.Context, c *config.Config) (repository.Store, repository.FeedbackLog, error) {
	switch c.WeightStore {
	case config.StoreSQLite:
		st, err := repository.NewSQLiteStore(c.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return st, st, nil
	case config.StoreRedis:
		st, err := repository.NewRedisStore(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB,
			repository.WithHashKey(c.RedisKey))
		if err != nil {
			return nil, nil, err
		}
		return st, nil, nil
	case config.StoreMemory, "":
		return repository.NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown weight_store %q", config.ErrInvalidConfig, c.WeightStore)
	}
}

// serviceOptions maps configuration onto service options.
func serviceOptions(c *config.Config, l logger.Logger) []service.Option {
	return []service.Option{
		service.WithLogger(l),
		service.WithRatingWeights(c.StarWeight, c.SentimentWeight),
		service.WithThresholds(types.Thresholds{Bot: c.BotThreshold, LowEffort: c.LowEffortThreshold}),
		service.WithLearningRate(c.LearningRate),
		service.WithMinSamples(c.MinSamplesForAdjustment),
		service.WithApplyLearnedWeights(c.ApplyLearnedWeights),
		service.WithSentimentCacheSize(c.SentimentCacheSize),
		service.WithSnapshotPath(c.SnapshotPath),
		service.WithPersistQueueSize(c.PersistQueueSize),
		service.WithPersistWorkers(c.PersistWorkers),
		service.WithPersistTimeout(c.PersistTimeout()),
		service.WithLoadTimeout(c.LoadTimeout()),
		service.WithDedupeSize(c.DedupeSize),
		service.WithMaxBatchSize(c.MaxBatchSize),
	}
}

// buildService opens the configured stores and creates the service.
func buildService(ctx context.Context, c *config.Config, l logger.Logger) (*service.Service, error) {
	st, fl, err := openStores(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", c.WeightStore, err)
	}
	opts := append(serviceOptions(c, l), service.WithWeightStore(st, c.WeightStore))
	if fl != nil {
		opts = append(opts, service.WithFeedbackLog(fl))
	}
	svc, err := service.New(opts...)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return svc, nil
}

// offlineConfig returns a copy of c that uses no external store and writes
// no snapshot.
func offlineConfig(c *config.Config) *config.Config {
	cp := *c
	cp.WeightStore = config.StoreMemory
	cp.SnapshotPath = ""
	return &cp
}
