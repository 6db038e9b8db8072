package learner

import "errors"

var (
	// ErrInvalidVote is returned for votes other than +1 and -1.
	ErrInvalidVote = errors.New("user vote must be +1 or -1")
	// ErrInvalidLearningRate is returned for non-positive learning rates.
	ErrInvalidLearningRate = errors.New("learning rate must be positive")
)
