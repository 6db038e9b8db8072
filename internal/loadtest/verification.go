package loadtest

import (
	"context"
	"fmt"

	service "github.com/Sajal133/truerate-api/internal/app"
	"github.com/Sajal133/truerate-api/internal/domain/types"
	"github.com/Sajal133/truerate-api/pkg/logger"
)

// checkAnalysis reports the first range violation in a, if any.
func checkAnalysis(a service.Analysis) error {
	switch {
	case a.AdjustedRating < 1 || a.AdjustedRating > 5:
		return fmt.Errorf("adjusted rating %.3f outside [1,5]", a.AdjustedRating)
	case a.Credibility.Score < 0 || a.Credibility.Score > 1:
		return fmt.Errorf("credibility %.3f outside [0,1]", a.Credibility.Score)
	case !knownClass(a.Credibility.Classification):
		return fmt.Errorf("unknown classification %q", a.Credibility.Classification)
	case a.Sentiment.Score < -1 || a.Sentiment.Score > 1:
		return fmt.Errorf("sentiment %.3f outside [-1,1]", a.Sentiment.Score)
	case a.RequestID == "":
		return fmt.Errorf("missing request id")
	}
	return nil
}

func knownClass(c types.Classification) bool {
	_, err := types.ParseClassification(string(c))
	return err == nil
}

// verifyOutcomes checks every analysis and tallies agreement with the
// template class.
func verifyOutcomes(ctx context.Context, cfg *Config, outcomes []Outcome, stats *Stats) error {
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		stats.Totals[o.Sample.Kind]++
		if o.Analysis.Credibility.Classification == o.Sample.Kind {
			stats.Matches[o.Sample.Kind]++
		}
		if err := checkAnalysis(o.Analysis); err != nil {
			stats.InvariantFailures++
			if cfg.Verbose {
				logger.Get().Warn(ctx, "invalid analysis",
					logger.String("text", o.Sample.Review.Text), logger.Error(err))
			}
		}
	}
	if stats.InvariantFailures > 0 {
		return fmt.Errorf("%d analyses violated range checks", stats.InvariantFailures)
	}
	return nil
}

// verifyLearning checks that accepted votes reached the learner and the
// feedback log.
func verifyLearning(before, after service.FeedbackReport, stats *Stats) error {
	stats.LearnerUpdatesSeen = after.LearnerStats.TotalUpdates - before.LearnerStats.TotalUpdates
	if stats.FeedbackAccepted == 0 {
		return nil
	}
	if stats.LearnerUpdatesSeen <= 0 {
		return fmt.Errorf("%d votes accepted but the learner did not change", stats.FeedbackAccepted)
	}
	if after.FeedbackStats.Total < before.FeedbackStats.Total {
		return fmt.Errorf("feedback total went down from %d to %d",
			before.FeedbackStats.Total, after.FeedbackStats.Total)
	}
	if after.FeedbackStats.Total == 0 {
		return fmt.Errorf("%d votes accepted but none recorded", stats.FeedbackAccepted)
	}
	return nil
}
