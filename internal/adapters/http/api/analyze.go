package api

import (
	"errors"
	"fmt"
	"net/http"

	service "github.com/Sajal133/truerate-api/internal/app"
	"github.com/Sajal133/truerate-api/pkg/logger"
)

// AnalyzeHandler serves single and batch review analysis.
type AnalyzeHandler struct {
	deps     Dependencies
	maxBytes int64
	logger   logger.Logger
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps Dependencies, maxBytes int64, l logger.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps, maxBytes: maxBytes, logger: l}
}

type batchRequest struct {
	Reviews []service.Review `json:"reviews"`
}

// HandleAnalyze handles POST /analyze requests.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req service.Review
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		writeDecodeError(w, op, err)
		return
	}
	if !validStars(req.Stars) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, ErrInvalidRating))
		return
	}
	res, err := h.deps.Analyze(r.Context(), req)
	if err != nil {
		h.logger.Error(r.Context(), "analysis failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleBatch handles POST /analyze/batch requests.
func (h *AnalyzeHandler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req batchRequest
	if err := decodeJSON(w, r, h.maxBytes, &req); err != nil {
		writeDecodeError(w, op, err)
		return
	}
	for i, rv := range req.Reviews {
		if !validStars(rv.Stars) {
			writeError(w, http.StatusBadRequest, "bad_request",
				WrapKind(op, ErrBadRequest, fmt.Errorf("reviews[%d]: %w", i, ErrInvalidRating)))
			return
		}
	}
	res, err := h.deps.AnalyzeBatch(r.Context(), req.Reviews)
	switch {
	case errors.Is(err, service.ErrBatchTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "batch_too_large", WrapKind(op, ErrBadRequest, err))
		return
	case err != nil:
		h.logger.Error(r.Context(), "batch analysis failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func writeDecodeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
}
