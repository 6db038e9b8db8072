// Package rating fuses a star rating with text sentiment, sarcasm and
// credibility into a single adjusted rating on the 1..5 scale.
package rating

import (
	"fmt"
	"math"

	"github.com/Sajal133/truerate-api/internal/domain/types"
)

const (
	DefaultStarWeight      = 0.2
	DefaultSentimentWeight = 0.8

	weightTolerance      = 1e-3
	neutralRating        = 3.0
	credibilityFloor     = 0.4
	sarcasmInvertAt      = 0.5
	minRating, maxRating = 1.0, 5.0
)

// Params are the inputs to one calculation.
type Params struct {
	Stars             int
	Sentiment         float64
	Credibility       float64
	IsSarcastic       bool
	SarcasmConfidence float64
}

// DefaultParams returns Params for a fully credible, non-sarcastic review.
func DefaultParams(stars int, sentiment float64) Params {
	return Params{Stars: stars, Sentiment: sentiment, Credibility: 1}
}

// Breakdown records every intermediate value of a calculation.
type Breakdown struct {
	OriginalStars            int     `json:"original_stars"`
	SentimentScore           float64 `json:"sentiment_score"`
	SentimentAsRating        float64 `json:"sentiment_as_rating"`
	SarcasmDetected          bool    `json:"sarcasm_detected"`
	SarcasmConfidence        float64 `json:"sarcasm_confidence"`
	EffectiveSentimentRating float64 `json:"effective_sentiment_rating"`
	Credibility              float64 `json:"credibility"`
	NeutralityFactor         float64 `json:"neutrality_factor"`
	StarWeight               float64 `json:"star_weight"`
	SentimentWeight          float64 `json:"sentiment_weight"`
	BaseRatingBeforeCred     float64 `json:"base_rating_before_cred"`
}

// Result is an adjusted rating and how it was reached.
type Result struct {
	AdjustedRating float64   `json:"adjusted_rating"`
	Components     Breakdown `json:"components"`
}

// Calculator blends stars and sentiment with fixed weights.
type Calculator struct {
	starWeight      float64
	sentimentWeight float64
}

// New returns a Calculator, or ErrInvalidWeights when the weights do not sum
// to 1.0 within 1e-3.
func New(starWeight, sentimentWeight float64) (*Calculator, error) {
	if math.Abs(starWeight+sentimentWeight-1) > weightTolerance {
		return nil, fmt.Errorf("%w: got %v + %v", ErrInvalidWeights, starWeight, sentimentWeight)
	}
	return &Calculator{starWeight: starWeight, sentimentWeight: sentimentWeight}, nil
}

// NewDefault returns the 20/80 calculator.
func NewDefault() *Calculator {
	return &Calculator{starWeight: DefaultStarWeight, sentimentWeight: DefaultSentimentWeight}
}

// StarWeight returns the configured star weight.
func (c *Calculator) StarWeight() float64 { return c.starWeight }

// SentimentWeight returns the configured sentiment weight.
func (c *Calculator) SentimentWeight() float64 { return c.sentimentWeight }

// SentimentToRating maps [-1,1] linearly onto [1,5].
func SentimentToRating(sentiment float64) float64 {
	s := types.Clamp(sentiment, -1, 1)
	return ((s+1)/2)*4 + 1
}

// Calculate computes the adjusted rating. Out-of-range inputs are clamped.
func (c *Calculator) Calculate(p Params) Result {
	stars := p.Stars
	if stars < 1 {
		stars = 1
	} else if stars > 5 {
		stars = 5
	}
	sent := types.Clamp(p.Sentiment, -1, 1)
	cred := types.Clamp(p.Credibility, 0, 1)

	sentRating := SentimentToRating(sent)
	effective := sentRating
	if p.IsSarcastic && p.SarcasmConfidence >= sarcasmInvertAt {
		effective = 6 - sentRating
	}

	base := float64(stars)*c.starWeight + effective*c.sentimentWeight

	adjusted := base
	neutrality := 0.0
	if cred < credibilityFloor {
		neutrality = 1 - cred/credibilityFloor
		adjusted = base*(1-neutrality*0.5) + neutralRating*(neutrality*0.5)
	}
	adjusted = types.Clamp(adjusted, minRating, maxRating)

	return Result{
		AdjustedRating: types.Round(adjusted, 2),
		Components: Breakdown{
			OriginalStars:            stars,
			SentimentScore:           sent,
			SentimentAsRating:        types.Round(sentRating, 2),
			SarcasmDetected:          p.IsSarcastic,
			SarcasmConfidence:        p.SarcasmConfidence,
			EffectiveSentimentRating: types.Round(effective, 2),
			Credibility:              cred,
			NeutralityFactor:         types.Round(neutrality, 3),
			StarWeight:               c.starWeight,
			SentimentWeight:          c.sentimentWeight,
			BaseRatingBeforeCred:     types.Round(base, 2),
		},
	}
}

// CalculateSimple blends stars and sentiment only.
func (c *Calculator) CalculateSimple(stars int, sentiment float64) float64 {
	r := float64(stars)*c.starWeight + SentimentToRating(sentiment)*c.sentimentWeight
	return types.Round(types.Clamp(r, minRating, maxRating), 2)
}

// CalculateBatch runs Calculate for each entry in order.
func (c *Calculator) CalculateBatch(ps []Params) []Result {
	out := make([]Result, len(ps))
	for i, p := range ps {
		out[i] = c.Calculate(p)
	}
	return out
}
