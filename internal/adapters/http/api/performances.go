package api

import (
	"context"
	"net/http"

	service "github.com/okian/wicket/internal/app"
	"github.com/okian/wicket/internal/domain/model"
)

// PerformanceDependencies defines the scorecard ingestion operation.
type PerformanceDependencies interface {
	// PublishPerformances stores a scorecard revision and queues rescoring.
	PublishPerformances(ctx context.Context, sc model.Scorecard) (service.Publication, error)
}

// PerformanceHandler handles scorecard publications.
type PerformanceHandler struct {
	deps PerformanceDependencies
}

// NewPerformanceHandler creates a new performance handler.
func NewPerformanceHandler(deps PerformanceDependencies) *PerformanceHandler {
	return &PerformanceHandler{deps: deps}
}

// HandlePublish handles POST /performances requests. A new revision is
// accepted with 202; a revision already seen is acknowledged with 200.
func (h *PerformanceHandler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	const op = "api.publish_performances"
	var req model.Scorecard
	if err := decode(r, w, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	pub, err := h.deps.PublishPerformances(r.Context(), req)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	ack := ackResponse{
		Status:    "accepted",
		Duplicate: pub.Duplicate,
		MatchID:   pub.MatchID,
		Revision:  pub.Revision,
		Jobs:      pub.Jobs,
	}
	if pub.Duplicate {
		ack.Status = "duplicate"
		writeJSON(w, http.StatusOK, ack)
		return
	}
	writeJSON(w, http.StatusAccepted, ack)
}
