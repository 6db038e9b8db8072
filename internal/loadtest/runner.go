package loadtest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	service "github.com/Sajal133/truerate-api/internal/app"
	"github.com/Sajal133/truerate-api/internal/domain/types"
	"github.com/Sajal133/truerate-api/pkg/logger"
)

// Run executes the complete load test against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{
		StartTime: time.Now(),
		Matches:   make(map[types.Classification]int),
		Totals:    make(map[types.Classification]int),
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	log := logger.Get()

	log.Info(ctx, "starting truerate load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("reviews", cfg.NumReviews),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Float64("feedbackRatio", cfg.FeedbackRatio))

	if err := checkServiceHealth(ctx, cfg); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	samples, err := generateSamples(ctx, cfg, stats)
	if err != nil {
		return stats, fmt.Errorf("review generation failed: %w", err)
	}
	if cfg.OutputFile != "" {
		if err := saveSamples(cfg.OutputFile, samples); err != nil {
			log.Warn(ctx, "failed to save reviews to file", logger.Error(err))
		}
	}

	client := newHTTPClient(cfg.Timeout)
	var before service.FeedbackReport
	if err := client.getJSON(ctx, cfg.BaseURL+"/feedback/stats", &before); err != nil {
		return stats, fmt.Errorf("feedback stats: %w", err)
	}

	outcomes := analyzeSamples(ctx, cfg, samples, stats)
	if err := verifyOutcomes(ctx, cfg, outcomes, stats); err != nil {
		return finish(ctx, stats), err
	}

	submitFeedback(ctx, cfg, outcomes, stats)

	var after service.FeedbackReport
	if err := client.getJSON(ctx, cfg.BaseURL+"/feedback/stats", &after); err != nil {
		return finish(ctx, stats), fmt.Errorf("feedback stats: %w", err)
	}
	if err := verifyLearning(before, after, stats); err != nil {
		return finish(ctx, stats), err
	}

	log.Info(ctx, "load test completed successfully")
	return finish(ctx, stats), nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, cfg *Config) error {
	resp, err := newHTTPClient(cfg.Timeout).Get(ctx, cfg.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	_ = resp.Body.Close()

	// The health endpoint serves Prometheus metrics; any 200 is healthy.
	if resp.StatusCode != statusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// saveSamples writes samples as JSONL so `truerate batch` can replay them.
func saveSamples(path string, samples []Sample) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	enc := json.NewEncoder(f)
	for i, s := range samples {
		if err := enc.Encode(s.Review); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write review %d: %w", i, err)
		}
	}
	return f.Close()
}

func finish(ctx context.Context, stats *Stats) *Stats {
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats
}

// Agreement returns the share of analyses of kind that matched the template
// class, in percent.
func (s *Stats) Agreement(kind types.Classification) float64 {
	if s.Totals[kind] == 0 {
		return 0
	}
	return float64(s.Matches[kind]) / float64(s.Totals[kind]) * percentageMultiplier
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var reviewsPerSecond float64
	if stats.Duration > 0 {
		reviewsPerSecond = float64(stats.ReviewsAnalyzed) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("reviewsGenerated", stats.ReviewsGenerated),
		logger.Int("reviewsAnalyzed", stats.ReviewsAnalyzed),
		logger.Int("reviewsFailed", stats.ReviewsFailed),
		logger.Int("feedbackSubmitted", stats.FeedbackSubmitted),
		logger.Int("feedbackAccepted", stats.FeedbackAccepted),
		logger.Int("feedbackDuplicate", stats.FeedbackDuplicate),
		logger.Int("feedbackRateLimited", stats.FeedbackLimited),
		logger.Int("feedbackFailed", stats.FeedbackFailed),
		logger.Int("learnerUpdates", stats.LearnerUpdatesSeen),
		logger.Float64("botAgreement", stats.Agreement(types.ClassBot)),
		logger.Float64("lowEffortAgreement", stats.Agreement(types.ClassLowEffort)),
		logger.Float64("humanAgreement", stats.Agreement(types.ClassHuman)),
		logger.Duration("duration", stats.Duration),
		logger.Float64("reviewsPerSecond", reviewsPerSecond))
}
