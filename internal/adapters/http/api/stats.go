package api

import (
	"net/http"

	"github.com/okian/wicket/internal/domain/pointstable"
)

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}

// PointsTableProvider exposes the points table in force.
type PointsTableProvider interface {
	PointsTable() pointstable.Table
}

// PointsTableHandler serves the points table.
type PointsTableHandler struct {
	provider PointsTableProvider
}

// NewPointsTableHandler creates a new points table handler.
func NewPointsTableHandler(provider PointsTableProvider) *PointsTableHandler {
	return &PointsTableHandler{provider: provider}
}

// HandleGetPointsTable handles GET /points-table requests.
func (h *PointsTableHandler) HandleGetPointsTable(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.provider.PointsTable())
}
