// Package learner adjusts credibility scores from user feedback.
//
// Weights are keyed "{classification}:{feature}" and clamped to
// [-0.5, 0.5]. A disagreement moves every active feature's weight for the
// predicted class by -rate*value; an agreement moves it by +0.3*rate*value.
package learner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Sajal133/truerate-api/internal/domain/features"
	"github.com/Sajal133/truerate-api/internal/domain/model"
	"github.com/Sajal133/truerate-api/internal/domain/types"
	"github.com/Sajal133/truerate-api/pkg/logger"
	"github.com/Sajal133/truerate-api/pkg/metrics"
)

const (
	weightMin      = -0.5
	weightMax      = 0.5
	agreeStrength  = 0.3
	statsTopN      = 5
	snapshotSource = "local_backup"
)

// WeightStore is the external store the learner loads from and writes to.
type WeightStore interface {
	Put(ctx context.Context, key string, value float64) error
	GetAll(ctx context.Context) (map[string]float64, error)
}

// Persister accepts weight writes without blocking. It reports false when
// the write was dropped.
type Persister interface {
	Persist(w model.WeightWrite) bool
}

// SnapshotStore is the local durable fallback.
type SnapshotStore interface {
	Load() (*model.LearnerSnapshot, error)
	Save(s model.LearnerSnapshot) error
}

// LoadSource reports where Load found weights.
type LoadSource string

const (
	LoadedFromStore    LoadSource = "store"
	LoadedFromSnapshot LoadSource = "snapshot"
	LoadedEmpty        LoadSource = "empty"
)

// Delta is one weight change applied by UpdateFromFeedback.
type Delta struct {
	Key      string  `json:"key"`
	Previous float64 `json:"previous"`
	Value    float64 `json:"value"`
	Update   float64 `json:"update"`
}

// Debug explains an adjustment.
type Debug struct {
	BaseScore       float64            `json:"base_score"`
	TotalAdjustment float64            `json:"total_adjustment"`
	AdjustedScore   float64            `json:"adjusted_score"`
	AppliedWeights  map[string]float64 `json:"applied_weights"`
}

// Stats summarises the learner state.
type Stats struct {
	TotalPatterns      int              `json:"total_patterns"`
	Thresholds         types.Thresholds `json:"thresholds"`
	LearningRate       float64          `json:"learning_rate"`
	MinSamples         int              `json:"min_samples_for_adjustment"`
	TotalUpdates       int              `json:"total_updates"`
	TopPositiveWeights []Entry          `json:"top_positive_weights"`
	TopNegativeWeights []Entry          `json:"top_negative_weights"`
}

// Learner holds the weight map. It is safe for concurrent use.
type Learner struct {
	mu sync.RWMutex
	// persistMu is taken before mu is released so writes reach the
	// persister in the order they were applied.
	persistMu sync.Mutex
	weights   *index
	samples map[string]int

	thresholds types.Thresholds
	rate       float64
	minSamples int

	store          WeightStore
	persister      Persister
	snapshots      SnapshotStore
	persistTimeout time.Duration
	loadTimeout    time.Duration

	log logger.Logger
	now func() time.Time
}

// New returns an empty Learner. Call Load to restore persisted weights.
func New(opts ...Option) (*Learner, error) {
	l := &Learner{
		weights:        newIndex(),
		samples:        make(map[string]int),
		thresholds:     types.DefaultThresholds,
		rate:           DefaultLearningRate,
		minSamples:     DefaultMinSamples,
		persistTimeout: defaultPersistTimeout,
		loadTimeout:    defaultLoadTimeout,
		log:            logger.Nop(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	if err := l.thresholds.Validate(); err != nil {
		return nil, err
	}
	if l.rate <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLearningRate, l.rate)
	}
	return l, nil
}

// UpdateFromFeedback applies one vote on a predicted class and returns the
// deltas in feature order. Persistence is best-effort and never fails the
// call.
func (l *Learner) UpdateFromFeedback(ctx context.Context, text string, stars int, predicted types.Classification, vote int) ([]Delta, error) {
	var magnitude float64
	switch vote {
	case -1:
		magnitude = -l.rate
	case 1:
		magnitude = l.rate * agreeStrength
	default:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVote, vote)
	}

	fm := features.Extract(text, stars)
	now := l.now()

	l.mu.Lock()
	var deltas []Delta
	fm.Each(func(f features.Feature, v float64) {
		key := predicted.String() + ":" + f.String()
		cur, _ := l.weights.get(key)
		update := magnitude * v
		next := types.Clamp(cur+update, weightMin, weightMax)
		l.weights.set(key, next)
		l.samples[key]++
		deltas = append(deltas, Delta{Key: key, Previous: cur, Value: next, Update: update})
	})
	total := l.weights.len()
	l.persistMu.Lock()
	l.mu.Unlock()

	for _, d := range deltas {
		l.persist(ctx, model.WeightWrite{Key: d.Key, Value: d.Value, At: now})
	}
	l.persistMu.Unlock()

	metrics.RecordWeightUpdates(len(deltas))
	metrics.UpdateLearnedWeights(total)
	return deltas, nil
}

// persist hands w to the persister, or writes it to the store under the
// persist timeout. Failures are logged and dropped.
func (l *Learner) persist(ctx context.Context, w model.WeightWrite) {
	if l.persister != nil {
		if !l.persister.Persist(w) {
			metrics.RecordWeightPersistDropped()
			l.log.Warn(ctx, "weight write dropped", logger.String("key", w.Key))
		}
		return
	}
	if l.store == nil {
		return
	}
	start := time.Now()
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.persistTimeout)
	defer cancel()
	err := l.store.Put(pctx, w.Key, w.Value)
	metrics.RecordWeightPersist(err == nil, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		l.log.Warn(ctx, "weight persist failed",
			logger.String("key", w.Key),
			logger.Duration("timeout", l.persistTimeout),
			logger.Error(err))
	}
}

// AdjustmentFactor corrects base using the weights of every class for the
// features active in text.
func (l *Learner) AdjustmentFactor(text string, stars int, base float64) (float64, Debug) {
	fm := features.Extract(text, stars)
	applied := make(map[string]float64)
	var total float64

	l.mu.RLock()
	fm.Each(func(f features.Feature, v float64) {
		for _, cls := range types.AllClassifications {
			key := cls.String() + ":" + f.String()
			w, ok := l.weights.get(key)
			if !ok {
				continue
			}
			c := w * v
			total += c
			applied[key] = c
		}
	})
	l.mu.RUnlock()

	adjusted := types.Clamp(base+total, 0, 1)
	return adjusted, Debug{
		BaseScore:       base,
		TotalAdjustment: total,
		AdjustedScore:   adjusted,
		AppliedWeights:  applied,
	}
}

// ScoreToClass maps a score to a class with the shared thresholds.
func (l *Learner) ScoreToClass(score float64) types.Classification {
	return l.thresholds.Classify(score)
}

// Thresholds returns the class thresholds.
func (l *Learner) Thresholds() types.Thresholds { return l.thresholds }

// Weight returns the weight for key.
func (l *Learner) Weight(key string) (float64, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.weights.get(key)
}

// Weights returns a copy of the weight map.
func (l *Learner) Weights() map[string]float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.weights.snapshot()
}

// Load restores weights from the store, then the snapshot, else starts empty.
// Snapshot thresholds are ignored: thresholds are configuration.
func (l *Learner) Load(ctx context.Context) LoadSource {
	if l.store != nil {
		lctx, cancel := context.WithTimeout(ctx, l.loadTimeout)
		m, err := l.store.GetAll(lctx)
		cancel()
		switch {
		case err != nil:
			l.log.Warn(ctx, "load weights from store failed", logger.Error(err))
		case len(m) > 0:
			l.replace(m)
			l.log.Info(ctx, "loaded weights", logger.String("source", string(LoadedFromStore)), logger.Int("count", len(m)))
			return LoadedFromStore
		}
	}

	if l.snapshots != nil {
		s, err := l.snapshots.Load()
		switch {
		case err != nil:
			l.log.Warn(ctx, "load weights from snapshot failed", logger.Error(err))
		case s != nil:
			l.replace(s.PatternWeights)
			l.log.Info(ctx, "loaded weights", logger.String("source", string(LoadedFromSnapshot)), logger.Int("count", len(s.PatternWeights)))
			return LoadedFromSnapshot
		}
	}

	l.replace(nil)
	l.log.Info(ctx, "no learned weights found, starting empty")
	return LoadedEmpty
}

func (l *Learner) replace(m map[string]float64) {
	l.mu.Lock()
	l.weights.reset(m)
	l.samples = make(map[string]int, len(m))
	total := l.weights.len()
	l.mu.Unlock()
	metrics.UpdateLearnedWeights(total)
}

// Save writes the local snapshot. It is a no-op without a snapshot store.
func (l *Learner) Save() error {
	if l.snapshots == nil {
		return nil
	}
	return l.snapshots.Save(model.LearnerSnapshot{
		PatternWeights:  l.Weights(),
		ClassThresholds: l.thresholds,
		LearningRate:    l.rate,
		Source:          snapshotSource,
	})
}

// SampleCount returns how many updates touched key since the last load.
func (l *Learner) SampleCount(key string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.samples[key]
}

// Stats returns a summary with the five strongest weights each way.
func (l *Learner) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var updates int
	for _, n := range l.samples {
		updates += n
	}
	return Stats{
		TotalPatterns:      l.weights.len(),
		Thresholds:         l.thresholds,
		LearningRate:       l.rate,
		MinSamples:         l.minSamples,
		TotalUpdates:       updates,
		TopPositiveWeights: l.weights.top(statsTopN),
		TopNegativeWeights: l.weights.bottom(statsTopN),
	}
}
