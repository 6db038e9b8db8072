package types

import "math"

// Input is a review as seen by the scorers, with an optional sentiment reading.
type Input struct {
	Text  string `json:"text"`
	Stars int    `json:"stars"` // 0 when unknown
	// Sentiment is only meaningful when HasSentiment is set.
	Sentiment    float64 `json:"sentiment,omitempty"`
	HasSentiment bool    `json:"-"`
}

// WithSentiment returns a copy of in carrying the given sentiment.
func (in Input) WithSentiment(s float64) Input {
	in.Sentiment = s
	in.HasSentiment = true
	return in
}

// ClampStars keeps 0 (unknown) and clamps everything else into 1..5.
func ClampStars(stars int) int {
	switch {
	case stars == 0:
		return 0
	case stars < 1:
		return 1
	case stars > 5:
		return 5
	}
	return stars
}

// Clamp bounds v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
