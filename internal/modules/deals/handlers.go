package deals

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/dealflow/internal/modules/waterfall"
)

// Handler handles deal HTTP requests.
type Handler struct {
	service *Service
	log     zerolog.Logger
}

// NewHandler creates a new deals handler.
func NewHandler(service *Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "deals").Logger(),
	}
}

// HandleCreateDeal handles POST /api/deals.
func (h *Handler) HandleCreateDeal(w http.ResponseWriter, r *http.Request) {
	var req CreateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	deal, err := h.service.CreateDeal(req.Name, req.Structure)
	if err != nil {
		h.log.Warn().Err(err).Str("name", req.Name).Msg("Deal creation rejected")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(deal)
}

// HandleListDeals handles GET /api/deals.
func (h *Handler) HandleListDeals(w http.ResponseWriter, r *http.Request) {
	deals, err := h.service.ListDeals()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list deals")
		http.Error(w, "Failed to retrieve deals", http.StatusInternalServerError)
		return
	}
	if deals == nil {
		deals = []Deal{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deals)
}

// HandleGetDeal handles GET /api/deals/{dealID}.
func (h *Handler) HandleGetDeal(w http.ResponseWriter, r *http.Request) {
	deal, err := h.service.GetDeal(chi.URLParam(r, "dealID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(deal)
}

// HandleUpdateStructure handles PUT /api/deals/{dealID}/structure.
func (h *Handler) HandleUpdateStructure(w http.ResponseWriter, r *http.Request) {
	dealID := chi.URLParam(r, "dealID")

	var req struct {
		Structure string `json:"structure"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateStructure(dealID, req.Structure); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"deal_id": dealID, "status": "updated"})
}

// HandleGetDistribution handles GET /api/deals/{dealID}/distribution - the
// full per-partner allocation.
func (h *Handler) HandleGetDistribution(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ComputeDistribution(chi.URLParam(r, "dealID"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// HandleGetMetrics handles GET /api/deals/{dealID}/metrics - the performance
// summary without the per-period flows.
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	dealID := chi.URLParam(r, "dealID")

	result, err := h.service.ComputeDistribution(dealID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	partners := make(map[string]waterfall.PartnerMetrics, len(result.Partners))
	for _, pa := range result.Partners {
		partners[pa.Partner.Name] = pa.Metrics
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"deal_id":   dealID,
		"partners":  partners,
		"aggregate": result.Aggregate,
	})
}

// writeServiceError maps service errors onto HTTP status codes.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDealNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNoCashFlows):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, waterfall.ErrZeroInvestment), errors.Is(err, waterfall.ErrNumerical):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.log.Error().Err(err).Msg("Deal request failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
