package service

import (
	"time"

	"github.com/Sajal133/truerate-api/internal/adapters/repository"
	"github.com/Sajal133/truerate-api/internal/domain/sentiment"
	"github.com/Sajal133/truerate-api/internal/domain/types"
	"github.com/Sajal133/truerate-api/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRatingWeights sets the star and sentiment weights. They must sum to 1.
func WithRatingWeights(star, sentiment float64) Option {
	return func(s *Service) {
		s.starWeight = star
		s.sentimentWeight = sentiment
	}
}

// WithThresholds sets the class thresholds shared by the scorer and learner.
func WithThresholds(t types.Thresholds) Option {
	return func(s *Service) { s.thresholds = t }
}

// WithLearningRate sets the learner's learning rate.
func WithLearningRate(rate float64) Option {
	return func(s *Service) {
		if rate > 0 {
			s.learningRate = rate
		}
	}
}

// WithMinSamples sets the reported minimum samples per weight.
func WithMinSamples(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minSamples = n
		}
	}
}

// WithApplyLearnedWeights toggles the learner correction in Analyze.
func WithApplyLearnedWeights(apply bool) Option {
	return func(s *Service) { s.applyLearned = apply }
}

// WithSentimentAnalyzer replaces the built-in VADER analyzer.
func WithSentimentAnalyzer(a sentiment.Analyzer, model string) Option {
	return func(s *Service) {
		if a != nil {
			s.analyzer = a
			s.sentimentModel = model
		}
	}
}

// WithSentimentCacheSize sets the sentiment LRU size. 0 disables the cache.
func WithSentimentCacheSize(n int) Option {
	return func(s *Service) { s.sentimentCacheSize = n }
}

// WithWeightStore sets the learned weight store. The service closes it on Stop.
func WithWeightStore(st repository.Store, backend string) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
			s.storeBackend = backend
		}
	}
}

// WithFeedbackLog sets where feedback votes are recorded.
func WithFeedbackLog(l repository.FeedbackLog) Option {
	return func(s *Service) {
		if l != nil {
			s.feedbackLog = l
		}
	}
}

// WithSnapshotPath sets the local learner snapshot file. Empty disables it.
func WithSnapshotPath(path string) Option {
	return func(s *Service) { s.snapshotPath = path }
}

// WithPersistQueueSize sets the weight write queue capacity.
func WithPersistQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithPersistWorkers sets the number of weight writers.
func WithPersistWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithPersistTimeout bounds each weight write.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

// WithLoadTimeout bounds the startup weight load.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

// WithDedupeSize sets how many feedback ids are remembered.
func WithDedupeSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeSize = n
		}
	}
}

// WithMaxBatchSize caps AnalyzeBatch input.
func WithMaxBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBatchSize = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
