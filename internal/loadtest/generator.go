package loadtest

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	service "github.com/Sajal133/truerate-api/internal/app"
	"github.com/Sajal133/truerate-api/internal/domain/types"
	"github.com/Sajal133/truerate-api/pkg/logger"
)

const randomFloatDivisor = 1000000

var (
	botTemplates = []string{
		"Great product!",
		"Love it!",
		"Highly recommend!",
		"Best purchase ever!!",
		"Amazing product, five stars!",
		"Five stars!!!",
	}

	lowEffortTemplates = []string{
		"It's ok.",
		"Works fine",
		"Not bad for the price",
		"Does what it says",
		"Decent quality",
		"Arrived on time, seems fine",
	}

	humanOpeners = []string{
		"After three months of daily use",
		"I bought this to replace an older model and",
		"Setting it up took about ten minutes and",
		"My partner uses it every morning and",
	}

	humanFragments = []string{
		"the battery lasts roughly two days between charges",
		"the screen is bright enough to read outdoors",
		"the hinge still feels solid",
		"the fan gets noticeably loud under load",
		"the included cable is far too short",
		"the app crashed twice during the first week",
		"customer support replaced a faulty charger quickly",
	}

	humanClosers = []string{
		"but the camera struggles in low light.",
		"though I wish it came with a case.",
		"so I would buy it again at this price.",
		"but the manual is confusing.",
	}
)

// randomFloat returns a random float64 in [0, 1).
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomInt returns a random int in [0, n).
func randomInt(n int) int {
	if n <= 1 {
		return 0
	}
	v, _ := rand.Int(rand.Reader, big.NewInt(int64(n)))
	return int(v.Int64())
}

func pick(items []string) string { return items[randomInt(len(items))] }

// generateSamples creates cfg.NumReviews samples split roughly evenly across
// the three classes.
func generateSamples(ctx context.Context, cfg *Config, stats *Stats) ([]Sample, error) {
	logger.Get().Info(ctx, "generating reviews", logger.Int("numReviews", cfg.NumReviews))

	samples := make([]Sample, 0, cfg.NumReviews)
	for i := 0; i < cfg.NumReviews; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled during generation: %w", err)
		}
		samples = append(samples, generateSample(types.AllClassifications[i%len(types.AllClassifications)]))
	}

	stats.ReviewsGenerated = len(samples)
	return samples, nil
}

// generateSample builds one review in the style of kind.
func generateSample(kind types.Classification) Sample {
	switch kind {
	case types.ClassBot:
		return Sample{Kind: kind, Review: service.Review{Text: pick(botTemplates), Stars: 5}}
	case types.ClassLowEffort:
		return Sample{Kind: kind, Review: service.Review{Text: pick(lowEffortTemplates), Stars: 3 + randomInt(2)}}
	default:
		n := 1 + randomInt(2)
		parts := make([]string, 0, n+2)
		parts = append(parts, pick(humanOpeners))
		for j := 0; j < n; j++ {
			parts = append(parts, pick(humanFragments))
			if j < n-1 {
				parts = append(parts, "and")
			}
		}
		parts = append(parts, pick(humanClosers))
		return Sample{
			Kind:   types.ClassHuman,
			Review: service.Review{Text: strings.Join(parts, " "), Stars: 2 + randomInt(4)},
		}
	}
}
