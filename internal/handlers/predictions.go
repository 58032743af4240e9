package handlers

import (
	"net/http"

	"github.com/unitematch/unitematch-api/internal/models"
)

// OptimizeTeam predicts the usage difficulty of every roster entry
// @Summary Predict Difficulty
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.TeamRequest true "Roster"
// @Success 200 {array} models.DifficultyPrediction
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Unknown entities"
// @Failure 409 {object} models.ErrorResponse "Model not trained"
// @Router /optimize-team [post]
func (h *Handler) OptimizeTeam(w http.ResponseWriter, r *http.Request) {
	var req models.TeamRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.writeError(w, "optimize-team", err)
		return
	}

	preds, err := h.difficulty.Predict(r.Context(), req.Team)
	if err != nil {
		h.writeError(w, "optimize-team", err)
		return
	}
	h.jsonResponse(w, http.StatusOK, preds)
}

// SynergyWinRate estimates the roster's win rate
// @Summary Team Synergy
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.TeamRequest true "Roster"
// @Success 200 {object} models.SynergyPrediction
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Unknown entities"
// @Failure 409 {object} models.ErrorResponse "Model not trained"
// @Router /synergy-winrate [post]
func (h *Handler) SynergyWinRate(w http.ResponseWriter, r *http.Request) {
	var req models.TeamRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.writeError(w, "synergy-winrate", err)
		return
	}

	pred, err := h.synergy.PredictTeam(r.Context(), req.Team)
	if err != nil {
		h.writeError(w, "synergy-winrate", err)
		return
	}
	h.jsonResponse(w, http.StatusOK, pred)
}

// SuggestTeammates ranks candidates that fill the roster's gaps
// @Summary Suggest Teammates
// @Tags Predictions
// @Accept json
// @Produce json
// @Param body body models.SuggestRequest true "Roster and limit"
// @Success 200 {array} models.Suggestion
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Unknown entities"
// @Router /suggest-teammates [post]
func (h *Handler) SuggestTeammates(w http.ResponseWriter, r *http.Request) {
	var req models.SuggestRequest
	if err := h.decodeBody(w, r, &req); err != nil {
		h.writeError(w, "suggest-teammates", err)
		return
	}

	suggestions, err := h.synergy.Suggest(r.Context(), req.Team, req.Limit)
	if err != nil {
		h.writeError(w, "suggest-teammates", err)
		return
	}
	h.jsonResponse(w, http.StatusOK, suggestions)
}
