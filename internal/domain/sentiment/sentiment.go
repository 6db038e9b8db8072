// Package sentiment scores review text on [-1, 1].
package sentiment

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/jonreiter/govader"

	"github.com/Sajal133/truerate-api/internal/domain/types"
)

// ModelVader names the built-in analyzer.
const ModelVader = "vader"

// Result is a sentiment score and how sure the analyzer is of it.
type Result struct {
	Score      float64 `json:"sentiment_score"`
	Confidence float64 `json:"confidence"`
	Model      string  `json:"model_used"`
}

// Analyzer scores text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Result, error)
}

// VaderAnalyzer reports the VADER compound polarity of a text.
// The underlying analyzer is read-only after construction, so one value is
// shared by all callers.
type VaderAnalyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// NewVader loads the VADER lexicon and returns an analyzer.
func NewVader() *VaderAnalyzer {
	return &VaderAnalyzer{sia: govader.NewSentimentIntensityAnalyzer()}
}

// Analyze implements Analyzer. It never fails. Texts shorter than two
// characters score 0 with no confidence.
func (a *VaderAnalyzer) Analyze(_ context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < 2 {
		return Result{Model: ModelVader}, nil
	}
	score := types.Round(types.Clamp(a.sia.PolarityScores(text).Compound, -1, 1), 4)
	return Result{Score: score, Confidence: math.Abs(score), Model: ModelVader}, nil
}

// AnalyzeBatch scores each text independently.
func (a *VaderAnalyzer) AnalyzeBatch(ctx context.Context, texts []string) []Result {
	out := make([]Result, len(texts))
	for i, t := range texts {
		out[i], _ = a.Analyze(ctx, t)
	}
	return out
}
