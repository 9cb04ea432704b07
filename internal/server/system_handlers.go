package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/widia-io/widia-flip-sub001/internal/config"
	"github.com/widia-io/widia-flip-sub001/internal/di"
	"github.com/widia-io/widia-flip-sub001/internal/scheduler"
	"github.com/widia-io/widia-flip-sub001/internal/utils"
)

// SystemHandlers serves operational endpoints.
type SystemHandlers struct {
	container *di.Container
	cfg       *config.Config
	log       zerolog.Logger
	startedAt time.Time
}

// NewSystemHandlers creates system handlers
func NewSystemHandlers(container *di.Container, cfg *config.Config, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		container: container,
		cfg:       cfg,
		log:       log.With().Str("handler", "system").Logger(),
		startedAt: time.Now(),
	}
}

// DatabaseStatus is the size report for one database file
type DatabaseStatus struct {
	SizeMB    float64 `json:"size_mb"`
	WALSizeMB float64 `json:"wal_size_mb"`
	Pages     int64   `json:"pages"`
	FreePages int64   `json:"free_pages"`
}

// SystemStatusResponse is returned by GET /api/system/status
type SystemStatusResponse struct {
	Status        string                    `json:"status"`
	UptimeSeconds int64                     `json:"uptime_seconds"`
	CPUPercent    float64                   `json:"cpu_percent"`
	MemoryPercent float64                   `json:"memory_percent"`
	Databases     map[string]DatabaseStatus `json:"databases"`
	Jobs          []scheduler.Entry         `json:"jobs"`
}

// ClientConfigResponse carries settings clients need to behave consistently
type ClientConfigResponse struct {
	AutosaveDebounceMs int64 `json:"autosave_debounce_ms"`
	BackupEnabled      bool  `json:"backup_enabled"`
}

// HandleStatus handles GET /api/system/status
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	resp := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Databases:     make(map[string]DatabaseStatus),
		Jobs:          []scheduler.Entry{},
	}

	for name, db := range h.container.Databases() {
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to get database stats")
			resp.Status = "degraded"
			continue
		}
		resp.Databases[name] = DatabaseStatus{
			SizeMB:    float64(stats.SizeBytes) / 1024 / 1024,
			WALSizeMB: float64(stats.WALSizeBytes) / 1024 / 1024,
			Pages:     stats.PageCount,
			FreePages: stats.FreelistCount,
		}
	}

	if h.container.Scheduler != nil {
		resp.Jobs = h.container.Scheduler.Entries()
	}

	utils.WriteJSON(w, http.StatusOK, resp, h.log)
}

// HandleConfig handles GET /api/system/config
func (h *SystemHandlers) HandleConfig(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, ClientConfigResponse{
		AutosaveDebounceMs: h.cfg.AutosaveDebounce.Milliseconds(),
		BackupEnabled:      h.cfg.Backup.Enabled(),
	}, h.log)
}

// HandleRunJob handles POST /api/system/jobs/{name}/run
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.container.Scheduler == nil {
		http.Error(w, "Scheduler not available", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	if err := h.container.Scheduler.RunNow(name); err != nil {
		if errors.Is(err, scheduler.ErrUnknownJob) {
			http.Error(w, "Unknown job", http.StatusNotFound)
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"job":    name,
			"status": "failed",
			"error":  err.Error(),
		}, h.log)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"job":         name,
		"status":      "completed",
		"duration_ms": time.Since(start).Milliseconds(),
	}, h.log)
}

// RegisterRoutes registers system routes
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Get("/status", h.HandleStatus)
		r.Get("/config", h.HandleConfig)
		r.Post("/jobs/{name}/run", h.HandleRunJob)
	})
}

// getSystemStats samples CPU over 100ms and reads memory usage.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil || len(cpuPercent) == 0 {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuPercent[0], 0
	}

	return cpuPercent[0], memStat.UsedPercent
}
