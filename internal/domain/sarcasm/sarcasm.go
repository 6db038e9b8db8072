// Package sarcasm flags reviews whose wording or star rating contradicts the
// experience they describe. Signals are additive; the sum is capped at 1.
package sarcasm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Sajal133/truerate-api/internal/domain/types"
	"github.com/Sajal133/truerate-api/internal/domain/vocab"
)

const (
	// Threshold is the confidence at or above which a review is sarcastic.
	Threshold = 0.5

	minTextLen        = 5
	maxMarkerCount    = 3
	maxNegativeCount  = 4
	maxListedTriggers = 3
)

// Result is the sarcasm verdict for one review.
type Result struct {
	IsSarcastic bool     `json:"is_sarcastic"`
	Confidence  float64  `json:"confidence"`
	Triggers    []string `json:"triggers"`
}

// Detector is stateless.
type Detector struct{}

// New returns a Detector.
func New() *Detector { return &Detector{} }

// Detect scores one review. Texts shorter than five characters after trimming
// are never sarcastic.
func (d *Detector) Detect(in types.Input) Result {
	if utf8.RuneCountInString(strings.TrimSpace(in.Text)) < minTextLen {
		return Result{Triggers: []string{}}
	}

	lower := strings.ToLower(in.Text)
	stars := types.ClampStars(in.Stars)
	sent := types.Clamp(in.Sentiment, -1, 1)
	score := 0.0
	triggers := []string{}

	if stars != 0 && in.HasSentiment {
		switch {
		case stars >= 4 && sent < -0.3:
			score += -sent * float64(stars-3) / 2 * 0.4
			triggers = append(triggers, fmt.Sprintf("star_sentiment_mismatch_%dstar_%.1fsent", stars, sent))
		case stars <= 2 && sent > 0.3:
			score += sent * float64(3-stars) / 2 * 0.2
			triggers = append(triggers, fmt.Sprintf("inverse_mismatch_%dstar_%.1fsent", stars, sent))
		}
	}

	markers := vocab.Matches(lower, vocab.SarcasmMarkers)
	if len(markers) > 0 {
		score += 0.25 * float64(min(len(markers), maxMarkerCount))
		for _, m := range markers[:min(len(markers), maxListedTriggers)] {
			triggers = append(triggers, "marker:"+m)
		}
	}

	negatives := vocab.Matches(lower, vocab.NegativeContext)
	if len(negatives) > 0 {
		score += 0.15 * float64(min(len(negatives), maxNegativeCount))
		for _, n := range negatives[:min(len(negatives), maxListedTriggers)] {
			triggers = append(triggers, "negative:"+n)
		}
	}

	if len(markers) > 0 && len(negatives) > 0 {
		score += 0.3
		triggers = append(triggers, "marker_negative_combo")
	}

	if len(markers) == 0 && len(negatives) > 0 && vocab.ContainsAny(lower, vocab.PositiveWords) {
		score += 0.2
		triggers = append(triggers, "positive_negative_contrast")
	}

	if stars >= 4 && len(negatives) >= 3 {
		score += 0.25
		triggers = append(triggers, "high_stars_many_negatives")
	}

	confidence := min(1.0, score)
	return Result{
		IsSarcastic: confidence >= Threshold,
		Confidence:  types.Round(confidence, 3),
		Triggers:    triggers,
	}
}

// DetectBatch runs Detect on each input in order.
func (d *Detector) DetectBatch(ins []types.Input) []Result {
	out := make([]Result, len(ins))
	for i, in := range ins {
		out[i] = d.Detect(in)
	}
	return out
}
