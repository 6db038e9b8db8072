package api

import (
	"errors"
	"net/http"

	service "github.com/Sajal133/truerate-api/internal/app"
	"github.com/Sajal133/truerate-api/pkg/logger"
	"github.com/Sajal133/truerate-api/pkg/metrics"
)

// FeedbackHandler accepts agree/disagree votes and reports their totals.
type FeedbackHandler struct {
	deps     Dependencies
	limiter  *RateLimiter
	maxBytes int64
	logger   logger.Logger
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(deps Dependencies, limiter *RateLimiter, maxBytes int64, l logger.Logger) *FeedbackHandler {
	return &FeedbackHandler{deps: deps, limiter: limiter, maxBytes: maxBytes, logger: l}
}

// HandleSubmit handles POST /feedback requests.
func (h *FeedbackHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_feedback"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ip := clientIP(r)
	if !h.limiter.Allow(ip) {
		metrics.RecordFeedbackRateLimited()
		h.logger.Debug(r.Context(), "feedback rate limited", logger.String("client", ip))
		writeError(w, http.StatusTooManyRequests, "rate_limited", NewKind(op, ErrRateLimited))
		return
	}

	var req service.Feedback
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		writeDecodeError(w, op, err)
		return
	}
	if !validStars(req.Stars) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, ErrInvalidRating))
		return
	}
	req.UserAgent = r.UserAgent()

	ack, err := h.deps.SubmitFeedback(r.Context(), req)
	switch {
	case errors.Is(err, service.ErrInvalidFeedback):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	case err != nil:
		h.logger.Error(r.Context(), "feedback failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// HandleStats handles GET /feedback/stats requests.
func (h *FeedbackHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.feedback_stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	report, err := h.deps.FeedbackStats(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "feedback stats failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}
