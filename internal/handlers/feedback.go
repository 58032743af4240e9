package handlers

import (
	"net/http"
	"time"

	"github.com/unitematch/unitematch-api/internal/models"
)

// SubmitFeedback records a match result for every team member
// @Summary Submit Feedback
// @Tags Feedback
// @Accept json
// @Produce json
// @Param body body models.FeedbackRequest true "Match result"
// @Success 201 {object} models.FeedbackResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /feedback [post]
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req models.FeedbackRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.writeError(w, "feedback", err)
		return
	}

	var ts time.Time
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			h.errorResponse(w, http.StatusBadRequest, "timestamp must be RFC3339")
			return
		}
		ts = parsed
	}

	n, err := h.feedback.Record(r.Context(), req.Team, req.Result, ts)
	if err != nil {
		h.writeError(w, "feedback", err)
		return
	}
	h.jsonResponse(w, http.StatusCreated, models.FeedbackResponse{Message: "Feedback recorded", Entries: n})
}
