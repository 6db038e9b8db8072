package credibility

import "github.com/Sajal133/truerate-api/internal/domain/types"

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithThresholds sets the classification cut-offs. The same value should be
// handed to the adaptive learner.
func WithThresholds(t types.Thresholds) Option {
	return func(s *Scorer) {
		s.thresholds = t
	}
}
