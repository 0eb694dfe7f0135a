package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/wicket/internal/domain/model"
)

// ScoreDependencies defines the roster scoring lookup.
type ScoreDependencies interface {
	Score(ctx context.Context, rosterID string) (model.ScoredRoster, error)
}

// ScoreHandler handles score requests.
type ScoreHandler struct {
	deps ScoreDependencies
}

// NewScoreHandler creates a new score handler.
func NewScoreHandler(deps ScoreDependencies) *ScoreHandler {
	return &ScoreHandler{deps: deps}
}

// HandleGetScore handles GET /scores/{roster_id} requests.
func (h *ScoreHandler) HandleGetScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_score"
	id := r.PathValue("roster_id")
	if strings.TrimSpace(id) == "" {
		writeError(w, NewKind(op, ErrBadRequest))
		return
	}
	sr, err := h.deps.Score(r.Context(), id)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, sr)
}
