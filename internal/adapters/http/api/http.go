// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	service "github.com/Sajal133/truerate-api/internal/app"
	"github.com/Sajal133/truerate-api/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Analyze(ctx context.Context, r service.Review) (service.Analysis, error)
	AnalyzeBatch(ctx context.Context, reviews []service.Review) (service.BatchResult, error)

	SubmitFeedback(ctx context.Context, fb service.Feedback) (service.FeedbackAck, error)
	FeedbackStats(ctx context.Context) (service.FeedbackReport, error)

	Settings() service.Settings
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	analyzeHandler  *AnalyzeHandler
	feedbackHandler *FeedbackHandler
	settingsHandler *SettingsHandler

	feedbackPerMin float64
	feedbackBurst  int
	maxBodyBytes   int64
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		feedbackPerMin: defaultFeedbackPerMin,
		feedbackBurst:  defaultFeedbackBurst,
		maxBodyBytes:   defaultMaxBodyBytes,
		logger:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(deps)
	s.analyzeHandler = NewAnalyzeHandler(deps, s.maxBodyBytes, s.logger)
	s.feedbackHandler = NewFeedbackHandler(deps, NewRateLimiter(s.feedbackPerMin, s.feedbackBurst), s.maxBodyBytes, s.logger)
	s.settingsHandler = NewSettingsHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/config", MetricsMiddleware(s.settingsHandler.HandleSettings, "config"))
	mux.HandleFunc("/analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
	mux.HandleFunc("/analyze/batch", MetricsMiddleware(s.analyzeHandler.HandleBatch, "analyze_batch"))
	mux.HandleFunc("/feedback", MetricsMiddleware(s.feedbackHandler.HandleSubmit, "feedback"))
	mux.HandleFunc("/feedback/stats", MetricsMiddleware(s.feedbackHandler.HandleStats, "feedback_stats"))
}
