package service

import (
	"github.com/Sajal133/truerate-api/internal/domain/learner"
	"github.com/Sajal133/truerate-api/internal/domain/model"
	"github.com/Sajal133/truerate-api/internal/domain/rating"
	"github.com/Sajal133/truerate-api/internal/domain/sarcasm"
	"github.com/Sajal133/truerate-api/internal/domain/sentiment"
	"github.com/Sajal133/truerate-api/internal/domain/types"
)

// Review is one review to analyze. Sentiment, when set, skips the analyzer.
type Review struct {
	Text      string   `json:"text"`
	Stars     int      `json:"stars"`
	Sentiment *float64 `json:"sentiment,omitempty"`
}

// Credibility is the scorer verdict after the learned correction.
type Credibility struct {
	Score             float64              `json:"score"`
	BaseScore         float64              `json:"base_score"`
	LearnedAdjustment float64              `json:"learned_adjustment"`
	Classification    types.Classification `json:"classification"`
	Flags             []string             `json:"flags"`
}

// Analysis is the full result for one review.
type Analysis struct {
	RequestID      string           `json:"request_id"`
	OriginalStars  int              `json:"original_stars"`
	AdjustedRating float64          `json:"adjusted_rating"`
	RatingDelta    float64          `json:"rating_delta"`
	Sentiment      sentiment.Result `json:"sentiment"`
	Credibility    Credibility      `json:"credibility"`
	Sarcasm        sarcasm.Result   `json:"sarcasm"`
	Components     rating.Breakdown `json:"rating_components"`
}

// BatchItem pairs an input with its analysis.
type BatchItem struct {
	Input    Review   `json:"input"`
	Analysis Analysis `json:"analysis"`
}

// BatchSummary aggregates a batch.
type BatchSummary struct {
	TotalReviews    int     `json:"total_reviews"`
	OriginalAverage float64 `json:"original_average"`
	AdjustedAverage float64 `json:"adjusted_average"`
	AdjustedStdDev  float64 `json:"adjusted_std_dev"`
	TruthGap        float64 `json:"truth_gap"`
	BotCount        int     `json:"bot_count"`
	LowEffortCount  int     `json:"low_effort_count"`
	HumanCount      int     `json:"human_count"`
	SarcasmCount    int     `json:"sarcasm_count"`
	BotPercentage   float64 `json:"bot_percentage"`
}

// BatchResult is the output of AnalyzeBatch.
type BatchResult struct {
	Summary BatchSummary `json:"summary"`
	Results []BatchItem  `json:"results"`
}

// Feedback is a user's verdict on a shown classification.
type Feedback struct {
	FeedbackID     string   `json:"feedback_id,omitempty"`
	Text           string   `json:"text"`
	Stars          int      `json:"stars"`
	PredictedClass string   `json:"predicted_class"`
	PredictedScore *float64 `json:"predicted_score,omitempty"`
	UserVote       int      `json:"user_vote"`
	UserAgent      string   `json:"-"`
}

// FeedbackAck acknowledges a feedback submission.
type FeedbackAck struct {
	Success            bool   `json:"success"`
	Message            string `json:"message"`
	FeedbackID         string `json:"feedback_id"`
	TextHash           string `json:"text_hash"`
	AdjustmentsApplied int    `json:"adjustments_applied"`
	Duplicate          bool   `json:"duplicate,omitempty"`
}

// FeedbackReport combines vote statistics with the learner state.
type FeedbackReport struct {
	FeedbackStats    model.FeedbackStats `json:"feedback_stats"`
	LearnerStats     learner.Stats       `json:"learner_stats"`
	ClassAdjustments map[string]float64  `json:"class_adjustments"`
}

// Settings is the public analysis configuration.
type Settings struct {
	StarWeight          float64          `json:"star_weight"`
	SentimentWeight     float64          `json:"sentiment_weight"`
	SentimentMode       string           `json:"sentiment_mode"`
	SarcasmMode         string           `json:"sarcasm_mode"`
	ApplyLearnedWeights bool             `json:"apply_learned_weights"`
	Thresholds          types.Thresholds `json:"thresholds"`
	WeightStore         string           `json:"weight_store"`
}
