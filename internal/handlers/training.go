package handlers

import (
	"net/http"
	"strconv"
)

// TrainModel queues a training run and waits for its report
// @Summary Train Models
// @Description Trains the difficulty classifier and synergy regressor on a fresh fusion. Runs are serialized.
// @Tags Models
// @Produce json
// @Param tune query bool false "Run the hyperparameter grid search"
// @Success 200 {object} models.TrainingReport
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse "Training failure"
// @Failure 503 {object} models.ErrorResponse "Queue full"
// @Failure 504 {object} models.ErrorResponse "Training timeout"
// @Router /train-model [get]
func (h *Handler) TrainModel(w http.ResponseWriter, r *http.Request) {
	tune := false
	if raw := r.URL.Query().Get("tune"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.errorResponse(w, http.StatusBadRequest, "tune must be a boolean")
			return
		}
		tune = v
	}

	report, err := h.training.Submit(r.Context(), tune)
	if err != nil {
		h.writeError(w, "train-model", err)
		return
	}
	h.jsonResponse(w, http.StatusOK, report)
}
