// Package features turns review text and a star rating into a fixed-size
// feature vector. Feature names double as the suffix of learned weight keys
// ("{classification}:{feature}").
package features

import (
	"regexp"
	"strings"

	"github.com/Sajal133/truerate-api/internal/domain/vocab"
)

// Feature identifies one extracted signal.
type Feature int

const (
	VeryShort Feature = iota
	Short
	Medium
	Long
	Stars1
	Stars2
	Stars3
	Stars4
	Stars5
	HasExclamation
	ExcessiveExclamation
	AllCapsWords
	HasNumbers
	ExtremePositive
	ExtremeNegative
	ModerateLanguage
	Repetitive
	GenericPraise
	ProductMention
	HasSpecifics
	PersonalExperience

	// Count is the number of defined features.
	Count
)

var names = [Count]string{
	VeryShort:            "very_short",
	Short:                "short",
	Medium:               "medium",
	Long:                 "long",
	Stars1:               "stars_1",
	Stars2:               "stars_2",
	Stars3:               "stars_3",
	Stars4:               "stars_4",
	Stars5:               "stars_5",
	HasExclamation:       "has_exclamation",
	ExcessiveExclamation: "excessive_exclamation",
	AllCapsWords:         "all_caps_words",
	HasNumbers:           "has_numbers",
	ExtremePositive:      "extreme_positive",
	ExtremeNegative:      "extreme_negative",
	ModerateLanguage:     "moderate_language",
	Repetitive:           "repetitive",
	GenericPraise:        "generic_praise",
	ProductMention:       "product_mention",
	HasSpecifics:         "has_specifics",
	PersonalExperience:   "personal_experience",
}

func (f Feature) String() string {
	if f < 0 || f >= Count {
		return "unknown"
	}
	return names[f]
}

// Parse returns the feature with the given name.
func Parse(name string) (Feature, bool) {
	for i, n := range names {
		if n == name {
			return Feature(i), true
		}
	}
	return 0, false
}

// All returns every feature in declaration order.
func All() []Feature {
	out := make([]Feature, Count)
	for i := range out {
		out[i] = Feature(i)
	}
	return out
}

// Map holds one value in [0,1] per feature. A zero value means inactive.
type Map [Count]float64

// Get returns the value of f.
func (m Map) Get(f Feature) float64 { return m[f] }

// Each calls fn for every active feature in declaration order.
func (m Map) Each(fn func(f Feature, v float64)) {
	for i, v := range m {
		if v > 0 {
			fn(Feature(i), v)
		}
	}
}

// Active returns the active features keyed by name.
func (m Map) Active() map[string]float64 {
	out := make(map[string]float64)
	m.Each(func(f Feature, v float64) { out[f.String()] = v })
	return out
}

var (
	productRe  = regexp.MustCompile(vocab.ProductReference)
	specificRe = regexp.MustCompile(vocab.QuantifiedClaim)
	capsRe     = regexp.MustCompile(vocab.CapsWord)
	digitRe    = regexp.MustCompile(`\d`)
)

// Extract computes the feature map for a review. Stars outside 1..5 leave
// every star bucket inactive.
func Extract(text string, stars int) Map {
	var m Map
	lower := strings.ToLower(text)
	words := strings.Fields(text)
	wc := len(words)

	switch {
	case wc < 10:
		m[VeryShort] = 1
	case wc < 30:
		m[Short] = 1
	case wc < 100:
		m[Medium] = 1
	default:
		m[Long] = 1
	}

	if stars >= 1 && stars <= 5 {
		m[Stars1+Feature(stars-1)] = 1
	}

	bang := strings.Count(text, "!")
	m[HasExclamation] = flag(bang > 0)
	m[ExcessiveExclamation] = flag(bang > vocab.ExcessiveExclamations)
	m[AllCapsWords] = capsRatio(text, wc)
	m[HasNumbers] = flag(digitRe.MatchString(text))

	m[ExtremePositive] = flag(vocab.ContainsAny(lower, vocab.ExtremePositive))
	m[ExtremeNegative] = flag(vocab.ContainsAny(lower, vocab.ExtremeNegative))
	m[ModerateLanguage] = flag(vocab.ContainsAny(lower, vocab.ModerateLanguage))

	m[Repetitive] = flag(repetitive(lower))
	m[GenericPraise] = flag(vocab.ContainsAny(lower, vocab.GenericPraise))
	m[ProductMention] = flag(productRe.MatchString(lower))

	m[HasSpecifics] = flag(specificRe.MatchString(lower))
	m[PersonalExperience] = flag(vocab.ContainsAny(lower, vocab.PersonalPronouns))
	return m
}

func flag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// capsRatio is capped at 1: hyphenated tokens can hold several caps words.
func capsRatio(text string, wc int) float64 {
	n := len(capsRe.FindAllStringIndex(text, -1))
	if n == 0 {
		return 0
	}
	if wc < 1 {
		wc = 1
	}
	r := float64(n) / float64(wc)
	if r > 1 {
		return 1
	}
	return r
}

func repetitive(lower string) bool {
	words := strings.Fields(lower)
	if len(words) < 4 {
		return false
	}
	uniq := make(map[string]struct{}, len(words))
	for _, w := range words {
		uniq[w] = struct{}{}
	}
	return float64(len(uniq)) < float64(len(words))*0.5
}
