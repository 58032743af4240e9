package handlers

import (
	"net/http"
)

// DataPreview returns the full fused dataset
// @Summary Preview Fused Dataset
// @Description Fuses the base, meta and feedback sources and returns every row
// @Tags Data
// @Produce json
// @Success 200 {array} models.Entity
// @Failure 500 {object} models.ErrorResponse
// @Router /data-preview [get]
func (h *Handler) DataPreview(w http.ResponseWriter, r *http.Request) {
	rows, err := h.data.Preview(r.Context())
	if err != nil {
		h.writeError(w, "data-preview", err)
		return
	}
	h.jsonResponse(w, http.StatusOK, rows)
}

// Features returns the classifier input columns and sample rows
// @Summary Training Features
// @Tags Data
// @Produce json
// @Success 200 {object} models.FeatureSummary
// @Failure 500 {object} models.ErrorResponse
// @Router /features [get]
func (h *Handler) Features(w http.ResponseWriter, r *http.Request) {
	summary, err := h.data.Features(r.Context())
	if err != nil {
		h.writeError(w, "features", err)
		return
	}
	h.jsonResponse(w, http.StatusOK, summary)
}
