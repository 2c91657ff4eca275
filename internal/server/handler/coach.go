package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tradewisehq/tradewise/internal/coach"
)

// CoachService defines the methods that the coach handler requires.
type CoachService interface {
	Feedback(ctx context.Context, question string) (string, error)
	JournalPrompts(ctx context.Context, count int) ([]string, error)
}

// CoachHandler serves the AI trading-coach endpoints.
type CoachHandler struct {
	coach  CoachService
	logger *slog.Logger
}

// NewCoachHandler creates a CoachHandler with the given service and logger.
func NewCoachHandler(coach CoachService, logger *slog.Logger) *CoachHandler {
	return &CoachHandler{
		coach:  coach,
		logger: logger,
	}
}

// feedbackRequest is the body of a feedback call. Question is optional; when
// empty the coach reviews overall performance.
type feedbackRequest struct {
	Question string `json:"question"`
}

// GetFeedback asks the coach to review the journal's performance.
// POST /api/coach/feedback
func (h *CoachHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	feedback, err := h.coach.Feedback(r.Context(), req.Question)
	if err != nil {
		if errors.Is(err, coach.ErrDisabled) {
			writeError(w, http.StatusServiceUnavailable, "coach is not configured")
			return
		}
		writeDomainError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"feedback": feedback})
}

// GetPrompts returns journaling prompts based on recent trades.
// GET /api/coach/prompts?count=3
func (h *CoachHandler) GetPrompts(w http.ResponseWriter, r *http.Request) {
	count := 0
	if v := r.URL.Query().Get("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "count must be an integer")
			return
		}
		count = n
	}

	prompts, err := h.coach.JournalPrompts(r.Context(), count)
	if err != nil {
		if errors.Is(err, coach.ErrDisabled) {
			writeError(w, http.StatusServiceUnavailable, "coach is not configured")
			return
		}
		writeDomainError(w, h.logger, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"prompts": prompts})
}
