package cash_flows

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/dealflow/internal/domain"
)

// Handler handles cash flow HTTP requests.
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new cash flows handler.
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "cash_flows").Logger(),
	}
}

// HandlePutSeries handles PUT /api/deals/{dealID}/cashflows - replace the
// deal's full cash flow series.
func (h *Handler) HandlePutSeries(w http.ResponseWriter, r *http.Request) {
	dealID := chi.URLParam(r, "dealID")

	var req SeriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		http.Error(w, "Invalid start_date. Use YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	series := domain.NewCashFlowSeries(startDate, req.Amounts)
	if err := series.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.ReplaceSeries(dealID, series); err != nil {
		h.log.Error().Err(err).Str("deal_id", dealID).Msg("Failed to replace series")
		http.Error(w, "Failed to store cash flows", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"deal_id": dealID,
		"periods": series.Len(),
	})
}

// HandleGetSeries handles GET /api/deals/{dealID}/cashflows - the stored rows.
func (h *Handler) HandleGetSeries(w http.ResponseWriter, r *http.Request) {
	dealID := chi.URLParam(r, "dealID")

	rows, err := h.repo.GetRows(dealID)
	if err != nil {
		h.log.Error().Err(err).Str("deal_id", dealID).Msg("Failed to get series")
		http.Error(w, "Failed to retrieve cash flows", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []CashFlowRow{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rows)
}
