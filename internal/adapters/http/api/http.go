// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	service "github.com/okian/wicket/internal/app"
	"github.com/okian/wicket/internal/domain/pointstable"
	"github.com/okian/wicket/internal/domain/roster"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RosterDependencies
	PerformanceDependencies
	ScoreDependencies
	LeaderboardDependencies
	RankDependencies
	PointsTable() pointstable.Table
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	rosterHandler      *RosterHandler
	performanceHandler *PerformanceHandler
	scoreHandler       *ScoreHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
	pointsHandler      *PointsTableHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		rosterHandler:      NewRosterHandler(deps),
		performanceHandler: NewPerformanceHandler(deps),
		scoreHandler:       NewScoreHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		rankHandler:        NewRankHandler(deps),
		pointsHandler:      NewPointsTableHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /points-table", MetricsMiddleware(s.pointsHandler.HandleGetPointsTable, "points_table"))

	mux.HandleFunc("POST /rosters/can-add", MetricsMiddleware(s.rosterHandler.HandleCanAdd, "rosters_can_add"))
	mux.HandleFunc("POST /rosters/can-remove", MetricsMiddleware(s.rosterHandler.HandleCanRemove, "rosters_can_remove"))
	mux.HandleFunc("POST /rosters/validate", MetricsMiddleware(s.rosterHandler.HandleValidate, "rosters_validate"))
	mux.HandleFunc("POST /rosters", MetricsMiddleware(s.rosterHandler.HandleSubmit, "rosters"))
	mux.HandleFunc("GET /rosters/{roster_id}", MetricsMiddleware(s.rosterHandler.HandleGetRoster, "roster"))

	mux.HandleFunc("POST /performances", MetricsMiddleware(s.performanceHandler.HandlePublish, "performances"))
	mux.HandleFunc("GET /scores/{roster_id}", MetricsMiddleware(s.scoreHandler.HandleGetScore, "scores"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /rank/{match_id}/{roster_id}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
}

// Compile-time check that the service satisfies the handler contracts.
var _ Dependencies = (*service.Service)(nil)

type errorResponse struct {
	Code       string             `json:"code"`
	Message    string             `json:"message"`
	Violations []roster.Violation `json:"violations,omitempty"`
}

// decisionResponse is the shape of the incremental roster checks.
type decisionResponse struct {
	roster.Decision
	Message         string `json:"message"`
	BudgetRemaining *int64 `json:"budget_remaining,omitempty"`
}

type validationResponse struct {
	Valid      bool               `json:"valid"`
	Violations []roster.Violation `json:"violations"`
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	MatchID   string `json:"match_id"`
	Revision  int64  `json:"revision"`
	Jobs      int    `json:"jobs"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError classifies err and writes it as an errorResponse.
func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

// decode reads one JSON value from the request body.
func decode(r *http.Request, w http.ResponseWriter, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	return nil
}
