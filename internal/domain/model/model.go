// Package model contains domain models passed between layers.
package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/Sajal133/truerate-api/internal/domain/types"
)

// WeightWrite is a single learned weight to persist.
type WeightWrite struct {
	Key   string    // "{classification}:{feature}"
	Value float64   // new value after clamping
	At    time.Time // when the learner produced it
}

// FeedbackRecord is one agree/disagree vote on a classification.
type FeedbackRecord struct {
	FeedbackID     string
	TextHash       string
	Text           string
	Stars          int
	PredictedClass string
	PredictedScore *float64
	UserVote       int // +1 agree, -1 disagree
	UserAgent      string
	CreatedAt      time.Time
}

// VoteCount tallies votes for one predicted class.
type VoteCount struct {
	Agree    int `json:"agree"`
	Disagree int `json:"disagree"`
}

// FeedbackStats summarises collected feedback.
type FeedbackStats struct {
	Total         int                  `json:"total_feedback"`
	Agreements    int                  `json:"agreements"`
	Disagreements int                  `json:"disagreements"`
	AccuracyRate  float64              `json:"accuracy_rate"` // percent, one decimal
	ByClass       map[string]VoteCount `json:"by_class"`
	Storage       string               `json:"storage"`
}

// Minimum votes on a class before ClassAdjustments reports a shift for it.
const minClassSamples = 5

// ClassAdjustments suggests a per-class threshold shift of
// (disagreeRate - 0.5) * 0.2 for classes with enough votes, 0 otherwise.
func (s FeedbackStats) ClassAdjustments() map[string]float64 {
	out := make(map[string]float64, len(s.ByClass))
	for cls, vc := range s.ByClass {
		total := vc.Agree + vc.Disagree
		if total < minClassSamples {
			out[cls] = 0
			continue
		}
		rate := float64(vc.Disagree) / float64(total)
		out[cls] = (rate - 0.5) * 0.2
	}
	return out
}

// HashText returns the first 16 hex characters of the SHA-256 of text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:16]
}

// LearnerSnapshot is the durable backup of the learner state.
type LearnerSnapshot struct {
	PatternWeights  map[string]float64 `json:"pattern_weights"`
	ClassThresholds types.Thresholds   `json:"class_thresholds"`
	LearningRate    float64            `json:"learning_rate"`
	Source          string             `json:"source"`
}
