// Package handlers provides HTTP handlers for funding rate and quote operations.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Convexo-finance/fund-convexo-sub001/internal/domain"
	"github.com/Convexo-finance/fund-convexo-sub001/internal/modules/rates"
	"github.com/Convexo-finance/fund-convexo-sub001/internal/modules/rates/jobs"
)

// Handler handles funding HTTP requests
type Handler struct {
	service *rates.Service
	syncJob *jobs.SyncJob
	log     zerolog.Logger
}

// NewHandler creates a new funding handler
func NewHandler(service *rates.Service, syncJob *jobs.SyncJob, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		syncJob: syncJob,
		log:     log.With().Str("handler", "funding").Logger(),
	}
}

// QuoteRequest represents a request for a funding quote
type QuoteRequest struct {
	Type      domain.TransactionType `json:"type"`
	FromAsset string                 `json:"from_asset"`
	ToAsset   string                 `json:"to_asset"`
	Amount    float64                `json:"amount"`
}

// HandleGetRate handles GET /api/funding/rate/{from}/{to}
func (h *Handler) HandleGetRate(w http.ResponseWriter, r *http.Request) {
	from := chi.URLParam(r, "from")
	to := chi.URLParam(r, "to")

	if from == "" || to == "" {
		http.Error(w, "from and to assets are required", http.StatusBadRequest)
		return
	}

	result := h.service.GetExchangeRate(r.Context(), from, to)

	response := map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleCreateQuote handles POST /api/funding/quote
func (h *Handler) HandleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	quote, err := h.service.NewQuote(r.Context(), req.Type, req.FromAsset, req.ToAsset, req.Amount)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to create quote")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response := map[string]interface{}{
		"data": quote,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetAssets handles GET /api/funding/assets
func (h *Handler) HandleGetAssets(w http.ResponseWriter, r *http.Request) {
	assets := make([]domain.Asset, 0, len(domain.SupportedAssets))
	for _, asset := range domain.SupportedAssets {
		assets = append(assets, asset)
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"assets": assets,
			"count":  len(assets),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetAsset handles GET /api/funding/assets/{code}
func (h *Handler) HandleGetAsset(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	asset, err := h.service.GetAssetInfo(code)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	response := map[string]interface{}{
		"data": asset,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetRateSources handles GET /api/funding/rates/sources
func (h *Handler) HandleGetRateSources(w http.ResponseWriter, r *http.Request) {
	sources := h.service.Sources()

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"sources": sources,
			"count":   len(sources),
			"health":  h.service.ProviderHealth(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleSyncRates handles POST /api/funding/rates/sync
func (h *Handler) HandleSyncRates(w http.ResponseWriter, r *http.Request) {
	if h.syncJob == nil {
		http.Error(w, "rate sync not available", http.StatusServiceUnavailable)
		return
	}

	if err := h.syncJob.Run(); err != nil {
		h.log.Error().Err(err).Msg("Manual rate sync failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"synced": true,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
