// Package vocab holds the fixed phrase lists and regex templates the scorers
// match review text against. The lists are data: scorers never mutate them
// and tests may enumerate them independently of any scoring logic.
//
// Every phrase is lower-case; callers lower-case the review before matching.
package vocab

import "strings"

// GenericPhrases are whole-review phrases typical of low-effort reviews.
// A short review matches only when its entire text, minus trailing "!" and
// ".", equals one of these.
var GenericPhrases = map[string]struct{}{
	"good": {}, "nice": {}, "great": {}, "amazing": {}, "excellent": {}, "perfect": {},
	"love it": {}, "awesome": {}, "best": {}, "wonderful": {}, "fantastic": {},
	"highly recommend": {}, "5 stars": {}, "five stars": {}, "loved it": {},
	"great product": {},
	"bad": {}, "terrible": {}, "worst": {}, "hate it": {}, "awful": {}, "horrible": {},
}

// SpamPatterns are templated-review regexes. Only the first hit counts.
var SpamPatterns = []string{
	`fast\s*shipping.*great\s*price`,
	`great\s*price.*fast\s*shipping`,
	`highly\s*recommend`,
	`best\s*(purchase|buy|product)\s*ever`,
	`(5|five)\s*stars?`,
	`a{3,}|o{3,}|!{3,}`,
	`(love|great|amazing)\s*(it)?[!.]*$`,
}

// NotUsedIndicators mark reviews written before the product was used.
var NotUsedIndicators = []string{
	"haven't opened", "haven't used", "haven't tried",
	"just arrived", "just received", "just got",
	"not yet", "didn't open", "still in box",
	"haven't tested", "can't rate yet",
}

// MixedSentimentWords signal a nuanced review. Matched as substrings.
var MixedSentimentWords = []string{
	"but", "however", "although", "though", "except",
	"unfortunately", "sadly", "on the other hand",
	"pros", "cons", "downside", "upside",
}

// SpecificFeatures are product-aspect regexes. Each distinct hit counts once.
var SpecificFeatures = []string{
	`battery\s*(life)?`, `screen`, `display`, `camera`,
	`build\s*quality`, `sound`, `audio`, `speed`,
	`size`, `weight`, `design`, `material`,
	`customer\s*service`, `shipping`, `packaging`,
	`price`, `value`, `quality`, `durability`,
}

// SarcasmMarkers are phrases commonly used ironically.
var SarcasmMarkers = []string{
	"oh great", "just great", "oh wonderful", "just wonderful",
	"oh fantastic", "just fantastic", "oh perfect", "just perfect",
	"oh amazing", "sure", "yeah right", "right",
	"of course", "naturally", "obviously",
	"brilliant", "genius", "lovely", "nice job",
	"thanks for", "thank you for", "thanks a lot",
	"so glad", "so happy", "so pleased",
	"what a", "how wonderful", "how great", "how nice",
}

// NegativeContext describes an actual bad experience.
var NegativeContext = []string{
	// product failure
	"broke", "broken", "died", "dead", "failed", "fails",
	"doesn't work", "won't work", "stopped working", "quit working",
	"defective", "faulty", "malfunction",
	// quality
	"terrible", "awful", "horrible", "worst", "garbage", "trash",
	"cheap", "flimsy", "junk", "waste", "useless", "worthless",
	// service
	"never arrived", "didn't arrive", "lost", "damaged",
	"no response", "ignored", "unhelpful", "rude",
	// money
	"refund", "returned", "return it", "money back", "scam", "ripoff",
	// disappointment
	"disappointed", "disappointing", "regret", "mistake",
	"wish i hadn't", "don't buy", "avoid", "stay away",
}

// PositiveWords contrast with NegativeContext when no marker is present.
var PositiveWords = []string{
	"great", "amazing", "wonderful", "fantastic", "perfect",
	"excellent", "awesome", "incredible", "love", "best",
}

// Feature extractor lexicons.
var (
	ExtremePositive  = []string{"perfect", "amazing", "best ever", "love it"}
	ExtremeNegative  = []string{"worst", "terrible", "awful", "never buy"}
	ModerateLanguage = []string{"decent", "okay", "fine", "not bad"}
	GenericPraise    = []string{"great product", "highly recommend", "five stars"}
	PersonalPronouns = []string{"i ", "my ", "me ", "we "}
	ProductReference = `product|item|purchase|order`
	QuantifiedClaim  = `\d+(?:\s*(?:days?|weeks?|months?|years?|%|dollars?|\$))`
	CapsWord         = `\b[A-Z]{3,}\b`
)

// ExcessiveExclamations is the "!" count above which punctuation is excessive.
const ExcessiveExclamations = 3

// ContainsAny reports whether s contains any of the phrases.
func ContainsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// Matches returns, in list order, the phrases contained in s.
func Matches(s string, phrases []string) []string {
	var out []string
	for _, p := range phrases {
		if strings.Contains(s, p) {
			out = append(out, p)
		}
	}
	return out
}
