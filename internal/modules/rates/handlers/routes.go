package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all funding routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/funding", func(r chi.Router) {
		// Rates and quotes
		r.Get("/rate/{from}/{to}", h.HandleGetRate)
		r.Post("/quote", h.HandleCreateQuote)

		// Assets
		r.Get("/assets", h.HandleGetAssets)
		r.Get("/assets/{code}", h.HandleGetAsset)

		// Rate sources
		r.Get("/rates/sources", h.HandleGetRateSources)
		r.Post("/rates/sync", h.HandleSyncRates)
	})
}
