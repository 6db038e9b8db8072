// Package credibility scores how genuine a review looks.
//
// A review starts at 1.0 and passes through an ordered chain of rules. Each
// rule that fires multiplies the running score by its factor and appends a
// flag, so later rules compound on earlier ones. The empty-review rule stops
// the chain.
package credibility

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Sajal133/truerate-api/internal/domain/types"
	"github.com/Sajal133/truerate-api/internal/domain/vocab"
)

// Result is the credibility verdict for one review.
type Result struct {
	Score          float64              `json:"score"`
	Classification types.Classification `json:"classification"`
	Flags          []string             `json:"flags"`
}

// Scorer evaluates the rule chain. It holds no mutable state and is safe for
// concurrent use.
type Scorer struct {
	thresholds types.Thresholds
	spam       []*regexp.Regexp
	specifics  []*regexp.Regexp
	rules      []rule
}

// review is the per-call view the rules read from.
type review struct {
	text         string
	lower        string
	words        int
	stars        int
	sentiment    float64
	hasSentiment bool
}

// rule is one step in the chain. match returns the flag to record, which
// lets a rule compute its flag from the review.
type rule struct {
	flag   string
	factor float64
	stop   bool
	match  func(r *review) (string, bool)
}

// New builds a Scorer, failing on invalid thresholds.
func New(opts ...Option) (*Scorer, error) {
	s := &Scorer{thresholds: types.DefaultThresholds}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.thresholds.Validate(); err != nil {
		return nil, err
	}
	s.spam = compileAll(vocab.SpamPatterns)
	s.specifics = compileAll(vocab.SpecificFeatures)
	s.rules = s.chain()
	return s, nil
}

// Thresholds returns the cut-offs used for classification.
func (s *Scorer) Thresholds() types.Thresholds { return s.thresholds }

func (s *Scorer) chain() []rule {
	return []rule{
		{flag: "empty_review", factor: 0.1, stop: true, match: fixed(func(r *review) bool {
			return r.words < 2
		})},
		{flag: "generic_phrase", factor: 0.2, match: fixed(func(r *review) bool {
			return r.words <= 5 && isGeneric(r.lower)
		})},
		{flag: "very_short", factor: 0.5, match: fixed(func(r *review) bool {
			return r.words <= 5 && !isGeneric(r.lower)
		})},
		{flag: "short_review", factor: 0.7, match: fixed(func(r *review) bool {
			return r.words > 5 && r.words <= 15
		})},
		{flag: "spam_pattern_detected", factor: 0.3, match: fixed(func(r *review) bool {
			return anyMatch(s.spam, r.lower)
		})},
		{flag: "product_not_used", factor: 0.15, match: fixed(func(r *review) bool {
			return vocab.ContainsAny(r.lower, vocab.NotUsedIndicators)
		})},
		{flag: "all_caps", factor: 0.6, match: fixed(func(r *review) bool {
			return isUpper(r.text) && utf8.RuneCountInString(r.text) > 10
		})},
		{flag: "star_sentiment_mismatch", factor: 0.7, match: fixed(func(r *review) bool {
			if r.stars == 0 || !r.hasSentiment {
				return false
			}
			expected := float64(r.stars-3) / 2
			gap := r.sentiment - expected
			return gap > 1 || gap < -1
		})},
		{flag: "mixed_sentiment_detected", factor: 1.2, match: fixed(func(r *review) bool {
			return vocab.ContainsAny(r.lower, vocab.MixedSentimentWords)
		})},
		{factor: 1.15, match: func(r *review) (string, bool) {
			n := countMatches(s.specifics, r.lower)
			return fmt.Sprintf("specific_features_%d", n), n >= 2
		}},
		{flag: "detailed_review", factor: 1.1, match: fixed(func(r *review) bool {
			return r.words >= 50
		})},
		{flag: "very_detailed", factor: 1.1, match: fixed(func(r *review) bool {
			return r.words >= 100
		})},
	}
}

// Score runs the chain for one review. Out-of-range stars and sentiment are
// clamped rather than rejected.
func (s *Scorer) Score(in types.Input) Result {
	text := strings.TrimSpace(in.Text)
	r := &review{
		text:         text,
		lower:        strings.ToLower(text),
		words:        len(strings.Fields(text)),
		stars:        types.ClampStars(in.Stars),
		sentiment:    types.Clamp(in.Sentiment, -1, 1),
		hasSentiment: in.HasSentiment,
	}

	score := 1.0
	flags := []string{}
	for _, rl := range s.rules {
		flag, ok := rl.match(r)
		if !ok {
			continue
		}
		if flag == "" {
			flag = rl.flag
		}
		score *= rl.factor
		flags = append(flags, flag)
		if rl.stop {
			break
		}
	}

	score = types.Clamp(score, 0, 1)
	return Result{
		Score:          types.Round(score, 3),
		Classification: s.thresholds.Classify(score),
		Flags:          flags,
	}
}

// ScoreBatch scores each input in order. Results match calling Score per item.
func (s *Scorer) ScoreBatch(ins []types.Input) []Result {
	out := make([]Result, len(ins))
	for i, in := range ins {
		out[i] = s.Score(in)
	}
	return out
}

func fixed(pred func(r *review) bool) func(r *review) (string, bool) {
	return func(r *review) (string, bool) { return "", pred(r) }
}

func isGeneric(lower string) bool {
	_, ok := vocab.GenericPhrases[strings.TrimRight(lower, "!.")]
	return ok
}

// isUpper is true when the text has at least one cased letter and no lower-case ones.
func isUpper(s string) bool {
	return strings.ToUpper(s) == s && strings.ToLower(s) != s
}

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile("(?i)" + p)
	}
	return out
}

func anyMatch(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func countMatches(res []*regexp.Regexp, s string) int {
	n := 0
	for _, re := range res {
		if re.MatchString(s) {
			n++
		}
	}
	return n
}
