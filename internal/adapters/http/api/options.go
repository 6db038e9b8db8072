package api

import "github.com/Sajal133/truerate-api/pkg/logger"

const (
	defaultFeedbackPerMin = 30
	defaultFeedbackBurst  = 10
	defaultMaxBodyBytes   = 1 << 20
)

// Option configures the Server.
type Option func(*Server)

// WithFeedbackRate sets the per-client feedback limit. A non-positive rate
// disables limiting.
func WithFeedbackRate(perMin float64, burst int) Option {
	return func(s *Server) {
		s.feedbackPerMin = perMin
		s.feedbackBurst = burst
	}
}

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used by the handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
