package rating

import "errors"

// ErrInvalidWeights is returned when the star and sentiment weights do not sum to 1.
var ErrInvalidWeights = errors.New("star_weight + sentiment_weight must equal 1.0")
