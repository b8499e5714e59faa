// Package handlers provides HTTP handlers for indicator calculation.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Convexo-finance/fund-convexo-sub001/internal/modules/indicators"
)

// Handler handles indicator HTTP requests
type Handler struct {
	calculator *indicators.Calculator
	log        zerolog.Logger
}

// NewHandler creates a new indicators handler
func NewHandler(calculator *indicators.Calculator, log zerolog.Logger) *Handler {
	return &Handler{
		calculator: calculator,
		log:        log.With().Str("handler", "indicators").Logger(),
	}
}

// CalculateRequest represents a request to compute the indicator report
type CalculateRequest struct {
	Snapshot indicators.FinancialSnapshot `json:"snapshot"`
	Profile  indicators.BusinessProfile   `json:"profile"`
}

// HandleCalculate handles POST /api/indicators/calculate
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	report := h.calculator.CalculateAll(req.Snapshot, req.Profile)

	response := map[string]interface{}{
		"data": report,
		"metadata": map[string]interface{}{
			"timestamp":     time.Now().Format(time.RFC3339),
			"revenue_model": req.Snapshot.ReportDetails.RevenueModel,
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetCurrencies handles GET /api/indicators/currencies
func (h *Handler) HandleGetCurrencies(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"data": map[string]interface{}{
			"currencies": indicators.ReportingCurrencies,
			"count":      len(indicators.ReportingCurrencies),
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
