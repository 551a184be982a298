package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/Conceptual-Machines/beatstoch-api/internal/metrics"
	"github.com/Conceptual-Machines/beatstoch-api/internal/pattern"
	"github.com/gin-gonic/gin"
)

const bytesPerMB = 1 << 20

type MetricsHandler struct {
	started     time.Time
	version     string
	persistence bool
	tempoLookup bool
	counters    *metrics.Counters
}

// NewMetricsHandler reports process facts plus the totals in counters, which may be nil
func NewMetricsHandler(version string, persistence, tempoLookup bool, counters *metrics.Counters) *MetricsHandler {
	return &MetricsHandler{
		started:     time.Now(),
		version:     version,
		persistence: persistence,
		tempoLookup: tempoLookup,
		counters:    counters,
	}
}

type MetricsResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	StartTime string           `json:"start_time"`
	Uptime    string           `json:"uptime"`
	Service   ServiceInfo      `json:"service"`
	Counters  metrics.Snapshot `json:"counters"`
	Runtime   RuntimeMetrics   `json:"runtime"`
}

type ServiceInfo struct {
	Styles      []string `json:"styles"`
	Persistence bool     `json:"persistence"`
	TempoLookup bool     `json:"tempo_lookup"`
}

type RuntimeMetrics struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	HeapMB     uint64 `json:"heap_mb"`
	NumGC      uint32 `json:"num_gc"`
}

// GetMetrics handles GET /api/metrics
func (h *MetricsHandler) GetMetrics(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.JSON(http.StatusOK, MetricsResponse{
		Status:    "healthy",
		Version:   h.version,
		StartTime: h.started.UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
		Service: ServiceInfo{
			Styles:      pattern.StyleNames(),
			Persistence: h.persistence,
			TempoLookup: h.tempoLookup,
		},
		Counters: h.counters.Snapshot(),
		Runtime: RuntimeMetrics{
			GoVersion:  runtime.Version(),
			Goroutines: runtime.NumGoroutine(),
			HeapMB:     mem.HeapAlloc / bytesPerMB,
			NumGC:      mem.NumGC,
		},
	})
}
