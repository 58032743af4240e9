package handlers

import (
	"github.com/go-chi/chi/v5"
)

// Register mounts every endpoint on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Get("/data-preview", h.DataPreview)
	r.Get("/features", h.Features)
	r.Get("/train-model", h.TrainModel)

	r.Post("/optimize-team", h.OptimizeTeam)
	r.Post("/synergy-winrate", h.SynergyWinRate)
	r.Post("/suggest-teammates", h.SuggestTeammates)
	r.Post("/feedback", h.SubmitFeedback)

	r.Post("/system/install", h.InstallDatabase)
}
