package analytics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles analytics HTTP requests.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new analytics handler.
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analytics").Logger(),
	}
}

// HandleCashPositionChart handles GET /api/deals/{dealID}/charts/cash-position.
// Optional ?window= controls the smoothing period.
func (h *Handler) HandleCashPositionChart(w http.ResponseWriter, r *http.Request) {
	dealID := chi.URLParam(r, "dealID")

	window := 0
	if windowStr := r.URL.Query().Get("window"); windowStr != "" {
		parsed, err := strconv.Atoi(windowStr)
		if err != nil {
			http.Error(w, "Invalid window. Must be an integer", http.StatusBadRequest)
			return
		}
		window = parsed
	}

	chart, err := h.service.CashPositionChart(dealID, window)
	if err != nil {
		if errors.Is(err, ErrNoSeries) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error().Err(err).Str("deal_id", dealID).Msg("Failed to build cash position chart")
		http.Error(w, "Failed to build chart", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chart)
}

// HandleDSCR handles POST /api/analytics/dscr - coverage ratios for a posted
// NOI / debt service schedule.
func (h *Handler) HandleDSCR(w http.ResponseWriter, r *http.Request) {
	var periods []DSCRPeriod
	if err := json.NewDecoder(r.Body).Decode(&periods); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}
	if len(periods) == 0 {
		http.Error(w, "At least one period is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DebtServiceCoverage(periods))
}
