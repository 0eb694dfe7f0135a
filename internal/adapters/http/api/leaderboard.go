package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/wicket/internal/domain/model"
)

// LeaderboardDependencies defines the interface for leaderboard operations
type LeaderboardDependencies interface {
	TopN(ctx context.Context, matchID string, n int) ([]model.LeaderboardEntry, error)
}

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?match_id=M&limit=N requests
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	q := r.URL.Query()
	matchID := strings.TrimSpace(q.Get("match_id"))
	if matchID == "" {
		writeError(w, WrapKind(op, ErrBadRequest, errors.New("missing match_id")))
		return
	}
	n, err := strconv.Atoi(q.Get("limit"))
	if err != nil || n < 1 {
		writeError(w, WrapKind(op, ErrBadRequest, errors.New("limit must be a positive integer")))
		return
	}
	if n > h.maxLimit {
		writeError(w, WrapKind(op, ErrLimitExceeded, fmt.Errorf("limit %d exceeds %d", n, h.maxLimit)))
		return
	}
	entries, err := h.deps.TopN(r.Context(), matchID, n)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
