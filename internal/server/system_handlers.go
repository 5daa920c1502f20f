package server

import (
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/dealflow/internal/database"
	"github.com/aristath/dealflow/internal/modules/cash_flows"
	"github.com/aristath/dealflow/internal/modules/deals"
	"github.com/aristath/dealflow/internal/scheduler"
)

// SystemHandlers handles system-wide monitoring and operations endpoints
type SystemHandlers struct {
	log       zerolog.Logger
	db        *database.DB
	dealsRepo *deals.Repository
	flowsRepo *cash_flows.Repository
	scheduler *scheduler.Scheduler
	// Jobs (set after job registration in main.go)
	refreshJob scheduler.Job
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(
	log zerolog.Logger,
	db *database.DB,
	dealsRepo *deals.Repository,
	flowsRepo *cash_flows.Repository,
	sched *scheduler.Scheduler,
) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("component", "system_handlers").Logger(),
		db:        db,
		dealsRepo: dealsRepo,
		flowsRepo: flowsRepo,
		scheduler: sched,
	}
}

// SetJobs registers job references for manual triggering
// Called after jobs are registered in main.go
func (h *SystemHandlers) SetJobs(refresh scheduler.Job) {
	h.refreshJob = refresh
}

// SystemStatusResponse represents the system status response
type SystemStatusResponse struct {
	Status         string                 `json:"status"`
	DealCount      int                    `json:"deal_count"`
	CashFlowRows   int                    `json:"cash_flow_rows"`
	LastComputed   string                 `json:"last_computed,omitempty"`
	DatabaseSizeMB float64                `json:"database_size_mb"`
	Jobs           []string               `json:"jobs"`
	Memory         map[string]interface{} `json:"memory"`
	Goroutines     int                    `json:"goroutines"`
}

// HandleSystemStatus returns comprehensive system status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	dealCount, err := h.dealsRepo.Count()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to count deals")
	}

	flowRows, err := h.flowsRepo.CountRows()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to count cash flow rows")
	}

	var lastComputed string
	if t, err := h.dealsRepo.LastComputedAt(); err != nil {
		h.log.Error().Err(err).Msg("Failed to query last computation")
	} else if !t.IsZero() {
		lastComputed = t.Format("2006-01-02 15:04")
	}

	var dbSizeMB float64
	if info, err := os.Stat(h.db.Path()); err == nil {
		dbSizeMB = float64(info.Size()) / 1024 / 1024
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := SystemStatusResponse{
		Status:         "running",
		DealCount:      dealCount,
		CashFlowRows:   flowRows,
		LastComputed:   lastComputed,
		DatabaseSizeMB: dbSizeMB,
		Jobs:           h.scheduler.JobNames(),
		Memory: map[string]interface{}{
			"alloc_mb":       m.Alloc / 1024 / 1024,
			"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
			"sys_mb":         m.Sys / 1024 / 1024,
			"num_gc":         m.NumGC,
		},
		Goroutines: runtime.NumGoroutine(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleTriggerRefresh triggers the distribution refresh job immediately
// POST /api/jobs/refresh-distributions
func (h *SystemHandlers) HandleTriggerRefresh(w http.ResponseWriter, r *http.Request) {
	if h.refreshJob == nil {
		h.log.Warn().Msg("Refresh job not registered yet")
		h.writeJSON(w, map[string]string{
			"status":  "error",
			"message": "Refresh job not registered",
		})
		return
	}

	h.log.Info().Msg("Manual distribution refresh triggered")
	started := time.Now()

	if err := h.scheduler.RunNow(h.refreshJob); err != nil {
		h.log.Error().Err(err).Msg("Failed to trigger distribution refresh")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"status":      "success",
		"message":     "Distribution refresh completed",
		"duration_ms": time.Since(started).Milliseconds(),
	})
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
