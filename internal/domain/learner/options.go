package learner

import (
	"time"

	"github.com/Sajal133/truerate-api/internal/domain/types"
	"github.com/Sajal133/truerate-api/pkg/logger"
)

const (
	// DefaultLearningRate is the step applied on disagreement.
	DefaultLearningRate = 0.05
	// DefaultMinSamples is reported in stats; it does not gate updates.
	DefaultMinSamples = 3

	defaultPersistTimeout = 2 * time.Second
	defaultLoadTimeout    = 5 * time.Second
)

// Option configures a Learner.
type Option func(*Learner)

// WithLearningRate sets the learning rate.
func WithLearningRate(rate float64) Option {
	return func(l *Learner) { l.rate = rate }
}

// WithThresholds sets the class thresholds used by ScoreToClass. Pass the
// same value given to the credibility scorer.
func WithThresholds(t types.Thresholds) Option {
	return func(l *Learner) { l.thresholds = t }
}

// WithMinSamples sets the reported minimum sample count.
func WithMinSamples(n int) Option {
	return func(l *Learner) {
		if n > 0 {
			l.minSamples = n
		}
	}
}

// WithStore sets the shared weight store used for loading and, when no
// persister is set, for time-bounded synchronous writes.
func WithStore(s WeightStore) Option {
	return func(l *Learner) { l.store = s }
}

// WithPersister hands weight writes to an asynchronous persister.
func WithPersister(p Persister) Option {
	return func(l *Learner) { l.persister = p }
}

// WithSnapshots sets the local snapshot used as load fallback and by Save.
func WithSnapshots(s SnapshotStore) Option {
	return func(l *Learner) { l.snapshots = s }
}

// WithPersistTimeout bounds each synchronous store write.
func WithPersistTimeout(d time.Duration) Option {
	return func(l *Learner) {
		if d > 0 {
			l.persistTimeout = d
		}
	}
}

// WithLoadTimeout bounds the initial store read.
func WithLoadTimeout(d time.Duration) Option {
	return func(l *Learner) {
		if d > 0 {
			l.loadTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(lg logger.Logger) Option {
	return func(l *Learner) {
		if lg != nil {
			l.log = lg
		}
	}
}

// WithClock overrides the time source stamped on weight writes.
func WithClock(now func() time.Time) Option {
	return func(l *Learner) {
		if now != nil {
			l.now = now
		}
	}
}
