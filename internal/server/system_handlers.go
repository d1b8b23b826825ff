package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/waldear/finanzas/internal/httpx"
)

// SystemStatusResponse represents the system status response
type SystemStatusResponse struct {
	Status      string         `json:"status"`
	CPUPercent  float64        `json:"cpu_percent"`
	RAMPercent  float64        `json:"ram_percent"`
	Goroutines  int            `json:"goroutines"`
	RowCounts   map[string]int `json:"row_counts"`
	GeneratedAt string         `json:"generated_at"`
}

// handleSystemStatus reports process and store health
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	resp := SystemStatusResponse{
		Status:      "running",
		Goroutines:  runtime.NumGoroutine(),
		RowCounts:   make(map[string]int),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		resp.CPUPercent = percents[0]
	} else if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read CPU usage")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		resp.RAMPercent = vm.UsedPercent
	} else {
		s.log.Warn().Err(err).Msg("Failed to read memory usage")
	}

	for _, table := range []string{"transactions", "obligations", "debts", "budgets", "recurring_rules", "audit_events"} {
		var count int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&count); err != nil {
			s.log.Warn().Err(err).Str("table", table).Msg("Failed to count rows")
			continue
		}
		resp.RowCounts[table] = count
	}

	httpx.JSON(w, http.StatusOK, resp)
}
