// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and the environment over those defaults.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Weight store kinds.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// StarWeight and SentimentWeight must sum to 1.0.
	StarWeight      float64 `koanf:"star_weight"`
	SentimentWeight float64 `koanf:"sentiment_weight"`

	BotThreshold       float64 `koanf:"bot_threshold"`
	LowEffortThreshold float64 `koanf:"low_effort_threshold"`

	LearningRate            float64 `koanf:"learning_rate"`
	MinSamplesForAdjustment int     `koanf:"min_samples_for_adjustment"`

	// ApplyLearnedWeights folds the learned correction into every analysis.
	ApplyLearnedWeights bool `koanf:"apply_learned_weights"`

	// WeightStore is one of memory, sqlite or redis.
	WeightStore   string `koanf:"weight_store"`
	SQLitePath    string `koanf:"sqlite_path"`
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisKey      string `koanf:"redis_key"`

	// SnapshotPath is the local JSON backup of the learner. Empty disables it.
	SnapshotPath string `koanf:"snapshot_path"`

	PersistQueueSize int `koanf:"persist_queue_size"`
	// PersistWorkers must be 1: a second writer could land an older value
	// for a key after a newer one.
	PersistWorkers   int `koanf:"persist_workers"`
	PersistTimeoutMS int `koanf:"persist_timeout_ms"`
	LoadTimeoutMS    int `koanf:"load_timeout_ms"`

	SentimentCacheSize int `koanf:"sentiment_cache_size"`

	// FeedbackRatePerMin limits POST /feedback per client IP. Zero disables it.
	FeedbackRatePerMin float64 `koanf:"feedback_rate_per_min"`
	FeedbackBurst      int     `koanf:"feedback_burst"`

	DedupeSize   int `koanf:"dedupe_size"`
	MaxBatchSize int `koanf:"max_batch_size"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":8000",
		StarWeight:              0.2,
		SentimentWeight:         0.8,
		BotThreshold:            0.3,
		LowEffortThreshold:      0.6,
		LearningRate:            0.05,
		MinSamplesForAdjustment: 3,
		ApplyLearnedWeights:     true,
		WeightStore:             StoreMemory,
		SQLitePath:              "truerate.db",
		RedisAddr:               "localhost:6379",
		RedisKey:                "truerate:weights",
		SnapshotPath:            "learned_weights.json",
		PersistQueueSize:        1024,
		PersistWorkers:          1,
		PersistTimeoutMS:        2000,
		LoadTimeoutMS:           5000,
		SentimentCacheSize:      4096,
		FeedbackRatePerMin:      30,
		FeedbackBurst:           10,
		DedupeSize:              50_000,
		MaxBatchSize:            500,
	}
}

// PersistTimeout returns PersistTimeoutMS as a duration.
func (c *Config) PersistTimeout() time.Duration {
	return time.Duration(c.PersistTimeoutMS) * time.Millisecond
}

// LoadTimeout returns LoadTimeoutMS as a duration.
func (c *Config) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutMS) * time.Millisecond
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case math.Abs(c.StarWeight+c.SentimentWeight-1.0) > 1e-3:
		return fmt.Errorf("%w: star_weight + sentiment_weight must equal 1.0, got %.3f",
			ErrInvalidConfig, c.StarWeight+c.SentimentWeight)
	case c.StarWeight < 0 || c.SentimentWeight < 0:
		return fmt.Errorf("%w: weights must not be negative", ErrInvalidConfig)
	case c.BotThreshold < 0 || c.LowEffortThreshold > 1 || c.BotThreshold >= c.LowEffortThreshold:
		return fmt.Errorf("%w: need 0 <= bot_threshold < low_effort_threshold <= 1", ErrInvalidConfig)
	case c.LearningRate <= 0 || c.LearningRate > 1:
		return fmt.Errorf("%w: learning_rate must be in (0, 1]", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.PersistWorkers != 1:
		return fmt.Errorf("%w: persist_workers must be 1 to keep weight writes in order, got %d",
			ErrInvalidConfig, c.PersistWorkers)
	}

	switch c.WeightStore {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite_path is required for the sqlite store", ErrInvalidConfig)
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("%w: redis_addr is required for the redis store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown weight_store %q", ErrInvalidConfig, c.WeightStore)
	}
	return nil
}
