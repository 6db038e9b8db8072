// Package service wires the review analysis pipeline and the feedback loop
// behind the HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/Sajal133/truerate-api/internal/adapters/mq/queue"
	"github.com/Sajal133/truerate-api/internal/adapters/mq/worker"
	"github.com/Sajal133/truerate-api/internal/adapters/repository"
	"github.com/Sajal133/truerate-api/internal/domain/credibility"
	"github.com/Sajal133/truerate-api/internal/domain/dedupe"
	"github.com/Sajal133/truerate-api/internal/domain/learner"
	"github.com/Sajal133/truerate-api/internal/domain/model"
	"github.com/Sajal133/truerate-api/internal/domain/rating"
	"github.com/Sajal133/truerate-api/internal/domain/sarcasm"
	"github.com/Sajal133/truerate-api/internal/domain/sentiment"
	"github.com/Sajal133/truerate-api/internal/domain/types"
	"github.com/Sajal133/truerate-api/pkg/logger"
	"github.com/Sajal133/truerate-api/pkg/metrics"
)

const (
	sarcasmMode     = "rule-based"
	feedbackThanks  = "Thank you for your feedback!"
	feedbackRepeat  = "Feedback already received"
	stopDrainBudget = 10 * time.Second
)

// Service runs the analysis pipeline and owns the learner.
type Service struct {
	mu sync.RWMutex

	analyzer  sentiment.Analyzer
	scorer    *credibility.Scorer
	detector  *sarcasm.Detector
	calc      *rating.Calculator
	learner   *learner.Learner
	deduper   dedupe.Deduper
	queue     *queue.InMemoryQueue
	pool      *worker.Pool
	snapshots *repository.SnapshotFile

	store        repository.Store
	storeBackend string
	feedbackLog  repository.FeedbackLog

	starWeight         float64
	sentimentWeight    float64
	thresholds         types.Thresholds
	learningRate       float64
	minSamples         int
	applyLearned       bool
	sentimentModel     string
	sentimentCacheSize int
	snapshotPath       string
	queueSize          int
	workerCount        int
	persistTimeout     time.Duration
	loadTimeout        time.Duration
	dedupeSize         int
	maxBatchSize       int

	started    bool
	stopped    bool
	loadedFrom learner.LoadSource

	logger logger.Logger
}

// New builds a Service. Components are ready for Analyze immediately; Start
// restores learned weights and starts the persistence workers.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		starWeight:         rating.DefaultStarWeight,
		sentimentWeight:    rating.DefaultSentimentWeight,
		thresholds:         types.DefaultThresholds,
		learningRate:       learner.DefaultLearningRate,
		minSamples:         learner.DefaultMinSamples,
		applyLearned:       true,
		sentimentModel:     sentiment.ModelVader,
		sentimentCacheSize: sentiment.DefaultCacheSize,
		queueSize:          1024,
		workerCount:        1,
		persistTimeout:     2 * time.Second,
		loadTimeout:        5 * time.Second,
		dedupeSize:         50000,
		maxBatchSize:       500,
		loadedFrom:         learner.LoadedEmpty,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	var err error
	if s.calc, err = rating.New(s.starWeight, s.sentimentWeight); err != nil {
		return nil, err
	}
	if s.scorer, err = credibility.New(credibility.WithThresholds(s.thresholds)); err != nil {
		return nil, err
	}
	s.detector = sarcasm.New()

	if s.analyzer == nil {
		s.analyzer = sentiment.NewVader()
	}
	if s.sentimentCacheSize > 0 {
		cached, err := sentiment.NewCached(s.analyzer, s.sentimentCacheSize)
		if err != nil {
			return nil, fmt.Errorf("sentiment cache: %w", err)
		}
		s.analyzer = cached
	}

	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.storeBackend = repository.BackendMemory
	}
	if s.feedbackLog == nil {
		s.feedbackLog = repository.NewMemoryFeedbackLog()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))

	lopts := []learner.Option{
		learner.WithThresholds(s.thresholds),
		learner.WithLearningRate(s.learningRate),
		learner.WithMinSamples(s.minSamples),
		learner.WithStore(s.store),
		learner.WithPersister(s.queue),
		learner.WithLoadTimeout(s.loadTimeout),
		learner.WithLogger(s.logger.Named("learner")),
	}
	if s.snapshotPath != "" {
		s.snapshots = repository.NewSnapshotFile(s.snapshotPath)
		lopts = append(lopts, learner.WithSnapshots(s.snapshots))
	}
	if s.learner, err = learner.New(lopts...); err != nil {
		return nil, err
	}
	return s, nil
}

// Start loads learned weights and starts the persistence workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting truerate service...")
	s.loadedFrom = s.learner.Load(ctx)

	s.pool = worker.NewPool(s.workerCount, s.queue, s.store,
		worker.WithWriteTimeout(s.persistTimeout),
		worker.WithLogger(s.logger.Named("persist")),
	)
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "truerate service started",
		logger.String("weightStore", s.storeBackend),
		logger.String("weightsFrom", string(s.loadedFrom)),
		logger.Int("persistWorkers", s.workerCount),
		logger.Int("persistQueue", s.queueSize),
		logger.Bool("applyLearnedWeights", s.applyLearned),
	)
	return nil
}

// Stop drains pending weight writes, saves the snapshot, and closes stores.
// A stopped service cannot be started again.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping truerate service...")

	dctx, cancel := context.WithTimeout(ctx, stopDrainBudget)
	if err := s.pool.Shutdown(dctx); err != nil {
		s.logger.Warn(ctx, "pending weight writes dropped", logger.Error(err))
	}
	cancel()

	if err := s.learner.Save(); err != nil {
		s.logger.Warn(ctx, "snapshot save failed", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "weight store close failed", logger.Error(err))
	}
	if c, ok := s.feedbackLog.(interface{ Close() error }); ok && any(s.feedbackLog) != any(s.store) {
		_ = c.Close()
	}

	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "truerate service stopped")
}

// Analyze runs one review through the pipeline.
func (s *Service) Analyze(ctx context.Context, r Review) (Analysis, error) {
	start := time.Now()

	sent, err := s.sentiment(ctx, r)
	if err != nil {
		return Analysis{}, err
	}

	in := types.Input{Text: r.Text, Stars: r.Stars}.WithSentiment(sent.Score)
	cred := s.scorer.Score(in)

	c := Credibility{
		Score:          cred.Score,
		BaseScore:      cred.Score,
		Classification: cred.Classification,
		Flags:          cred.Flags,
	}
	if s.applyLearned {
		adjusted, dbg := s.learner.AdjustmentFactor(r.Text, r.Stars, cred.Score)
		if dbg.TotalAdjustment != 0 {
			c.Score = types.Round(adjusted, 3)
			c.LearnedAdjustment = types.Round(adjusted-cred.Score, 3)
			c.Classification = s.learner.ScoreToClass(adjusted)
		}
	}

	sar := s.detector.Detect(in)
	res := s.calc.Calculate(rating.Params{
		Stars:             r.Stars,
		Sentiment:         sent.Score,
		Credibility:       c.Score,
		IsSarcastic:       sar.IsSarcastic,
		SarcasmConfidence: sar.Confidence,
	})

	a := Analysis{
		RequestID:      uuid.NewString(),
		OriginalStars:  r.Stars,
		AdjustedRating: res.AdjustedRating,
		RatingDelta:    types.Round(res.AdjustedRating-float64(r.Stars), 2),
		Sentiment:      sent,
		Credibility:    c,
		Sarcasm:        sar,
		Components:     res.Components,
	}

	metrics.RecordReviewAnalyzed(c.Classification.String())
	metrics.RecordCredibility(c.Score)
	metrics.RecordAdjustedRating(a.AdjustedRating, a.RatingDelta)
	if sar.IsSarcastic {
		metrics.RecordSarcasmDetected()
	}
	metrics.RecordAnalysisLatency(float64(time.Since(start).Microseconds()) / 1000)
	return a, nil
}

func (s *Service) sentiment(ctx context.Context, r Review) (sentiment.Result, error) {
	if r.Sentiment != nil {
		v := types.Clamp(*r.Sentiment, -1, 1)
		return sentiment.Result{Score: v, Confidence: types.Round(math.Abs(v), 4), Model: "provided"}, nil
	}
	res, err := s.analyzer.Analyze(ctx, r.Text)
	if err != nil {
		metrics.RecordErrorByComponent("sentiment", "analyze_error")
		return sentiment.Result{}, fmt.Errorf("sentiment: %w", err)
	}
	return res, nil
}

// AnalyzeBatch analyzes reviews in order and summarises them.
func (s *Service) AnalyzeBatch(ctx context.Context, reviews []Review) (BatchResult, error) {
	if len(reviews) > s.maxBatchSize {
		return BatchResult{}, fmt.Errorf("%w: %d reviews, limit %d", ErrBatchTooLarge, len(reviews), s.maxBatchSize)
	}
	out := BatchResult{Results: make([]BatchItem, 0, len(reviews))}
	for _, r := range reviews {
		if err := ctx.Err(); err != nil {
			return BatchResult{}, err
		}
		a, err := s.Analyze(ctx, r)
		if err != nil {
			return BatchResult{}, err
		}
		out.Results = append(out.Results, BatchItem{Input: r, Analysis: a})
	}
	out.Summary = summarize(out.Results)
	return out, nil
}

func summarize(items []BatchItem) BatchSummary {
	n := len(items)
	if n == 0 {
		return BatchSummary{}
	}
	original := make([]float64, n)
	adjusted := make([]float64, n)
	var sum BatchSummary
	for i, it := range items {
		original[i] = float64(it.Input.Stars)
		adjusted[i] = it.Analysis.AdjustedRating
		switch it.Analysis.Credibility.Classification {
		case types.ClassBot:
			sum.BotCount++
		case types.ClassLowEffort:
			sum.LowEffortCount++
		case types.ClassHuman:
			sum.HumanCount++
		}
		if it.Analysis.Sarcasm.IsSarcastic {
			sum.SarcasmCount++
		}
	}
	sum.TotalReviews = n
	origAvg := stat.Mean(original, nil)
	adjAvg := stat.Mean(adjusted, nil)
	sum.OriginalAverage = types.Round(origAvg, 2)
	sum.AdjustedAverage = types.Round(adjAvg, 2)
	if n > 1 {
		sum.AdjustedStdDev = types.Round(stat.StdDev(adjusted, nil), 2)
	}
	sum.TruthGap = types.Round(adjAvg-origAvg, 2)
	sum.BotPercentage = types.Round(float64(sum.BotCount)/float64(n)*100, 1)
	return sum
}

// SubmitFeedback records a vote and feeds it to the learner. A repeated
// feedback id is acknowledged without being applied again.
func (s *Service) SubmitFeedback(ctx context.Context, fb Feedback) (FeedbackAck, error) {
	if fb.UserVote != 1 && fb.UserVote != -1 {
		return FeedbackAck{}, fmt.Errorf("%w: user_vote must be 1 or -1", ErrInvalidFeedback)
	}
	class, err := types.ParseClassification(fb.PredictedClass)
	if err != nil {
		return FeedbackAck{}, fmt.Errorf("%w: %v", ErrInvalidFeedback, err)
	}
	if strings.TrimSpace(fb.Text) == "" {
		return FeedbackAck{}, fmt.Errorf("%w: text is required", ErrInvalidFeedback)
	}

	hash := model.HashText(fb.Text)
	deduped := fb.FeedbackID != ""
	if !deduped {
		fb.FeedbackID = uuid.NewString()
	}
	if deduped && s.deduper.SeenAndRecord(ctx, fb.FeedbackID) {
		metrics.RecordFeedbackDuplicate()
		s.logger.Debug(ctx, "duplicate feedback", logger.String("feedbackID", fb.FeedbackID))
		return FeedbackAck{
			Success:    true,
			Message:    feedbackRepeat,
			FeedbackID: fb.FeedbackID,
			TextHash:   hash,
			Duplicate:  true,
		}, nil
	}

	rec := model.FeedbackRecord{
		FeedbackID:     fb.FeedbackID,
		TextHash:       hash,
		Text:           fb.Text,
		Stars:          fb.Stars,
		PredictedClass: class.String(),
		PredictedScore: fb.PredictedScore,
		UserVote:       fb.UserVote,
		UserAgent:      fb.UserAgent,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.feedbackLog.Record(ctx, rec); err != nil {
		if deduped {
			s.deduper.Unrecord(ctx, fb.FeedbackID)
		}
		metrics.RecordErrorByComponent("feedback", "record_error")
		return FeedbackAck{}, fmt.Errorf("%w: %v", ErrFeedbackNotSaved, err)
	}

	deltas, err := s.learner.UpdateFromFeedback(ctx, fb.Text, fb.Stars, class, fb.UserVote)
	if err != nil {
		return FeedbackAck{}, fmt.Errorf("%w: %v", ErrInvalidFeedback, err)
	}
	if err := s.learner.Save(); err != nil {
		s.logger.Warn(ctx, "snapshot save failed", logger.Error(err))
	}
	metrics.RecordFeedback(fb.UserVote)

	s.logger.Debug(ctx, "feedback applied",
		logger.String("feedbackID", fb.FeedbackID),
		logger.String("class", class.String()),
		logger.Int("vote", fb.UserVote),
		logger.Int("adjustments", len(deltas)),
	)
	return FeedbackAck{
		Success:            true,
		Message:            feedbackThanks,
		FeedbackID:         fb.FeedbackID,
		TextHash:           hash,
		AdjustmentsApplied: len(deltas),
	}, nil
}

// FeedbackStats reports vote statistics and the learner state.
func (s *Service) FeedbackStats(ctx context.Context) (FeedbackReport, error) {
	st, err := s.feedbackLog.Stats(ctx)
	if err != nil {
		return FeedbackReport{}, fmt.Errorf("feedback stats: %w", err)
	}
	return FeedbackReport{
		FeedbackStats:    st,
		LearnerStats:     s.learner.Stats(),
		ClassAdjustments: st.ClassAdjustments(),
	}, nil
}

// LearnerStats returns the learner summary.
func (s *Service) LearnerStats() learner.Stats { return s.learner.Stats() }

// Settings returns the analysis configuration.
func (s *Service) Settings() Settings {
	return Settings{
		StarWeight:          s.calc.StarWeight(),
		SentimentWeight:     s.calc.SentimentWeight(),
		SentimentMode:       s.sentimentModel,
		SarcasmMode:         sarcasmMode,
		ApplyLearnedWeights: s.applyLearned,
		Thresholds:          s.thresholds,
		WeightStore:         s.storeBackend,
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	ls := s.learner.Stats()
	stats := map[string]any{
		"started":        s.started,
		"weightStore":    s.storeBackend,
		"weightsFrom":    string(s.loadedFrom),
		"learnedWeights": ls.TotalPatterns,
		"totalUpdates":   ls.TotalUpdates,
		"persistQueue":   s.queue.Len(ctx),
		"persistWorkers": s.workerCount,
		"dedupeSize":     s.deduper.Size(),
	}
	if s.pool != nil {
		written, failed := s.pool.Stats()
		stats["weightsPersisted"] = written
		stats["weightPersistFailures"] = failed
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	goroutines := runtime.NumGoroutine()
	stats["goroutines"] = goroutines
	stats["heapAlloc"] = mem.HeapAlloc
	metrics.UpdateSystemGoroutineCount(goroutines)
	metrics.UpdateSystemMemoryUsage(mem.HeapAlloc)
	metrics.UpdateDedupeSize(s.deduper.Size())
	return stats
}

// Learner exposes the learner for callers that need direct access.
func (s *Service) Learner() *learner.Learner { return s.learner }
