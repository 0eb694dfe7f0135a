package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/internal/domain/roster"
)

// RosterDependencies defines the roster construction and submission operations.
type RosterDependencies interface {
	Quota() model.RoleQuota
	CheckAdd(ctx context.Context, sel model.RosterSelection, candidate model.Player) (roster.Decision, error)
	CheckRemove(ctx context.Context, sel model.RosterSelection, playerID string) roster.Decision
	Validate(ctx context.Context, sel model.RosterSelection) roster.Result
	SubmitRoster(ctx context.Context, r model.Roster) (model.Roster, roster.Result, error)
	Roster(ctx context.Context, rosterID string) (model.Roster, error)
}

// RosterHandler handles roster requests.
type RosterHandler struct {
	deps RosterDependencies
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps RosterDependencies) *RosterHandler {
	return &RosterHandler{deps: deps}
}

type canAddRequest struct {
	Selection model.RosterSelection `json:"selection"`
	Player    model.Player          `json:"player"`
}

type canRemoveRequest struct {
	Selection model.RosterSelection `json:"selection"`
	PlayerID  string                `json:"player_id"`
}

type validateRequest struct {
	Selection model.RosterSelection `json:"selection"`
}

// HandleCanAdd handles POST /rosters/can-add requests.
func (h *RosterHandler) HandleCanAdd(w http.ResponseWriter, r *http.Request) {
	const op = "api.can_add"
	var req canAddRequest
	if err := decode(r, w, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Player.ID) == "" {
		writeError(w, WrapKind(op, ErrBadRequest, errors.New("missing player.id")))
		return
	}
	d, err := h.deps.CheckAdd(r.Context(), req.Selection, req.Player)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	remaining := roster.BudgetRemaining(req.Selection, h.deps.Quota())
	writeJSON(w, http.StatusOK, decisionResponse{Decision: d, Message: d.Message(), BudgetRemaining: &remaining})
}

// HandleCanRemove handles POST /rosters/can-remove requests.
func (h *RosterHandler) HandleCanRemove(w http.ResponseWriter, r *http.Request) {
	const op = "api.can_remove"
	var req canRemoveRequest
	if err := decode(r, w, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.PlayerID) == "" {
		writeError(w, WrapKind(op, ErrBadRequest, errors.New("missing player_id")))
		return
	}
	d := h.deps.CheckRemove(r.Context(), req.Selection, req.PlayerID)
	writeJSON(w, http.StatusOK, decisionResponse{Decision: d, Message: d.Message()})
}

// HandleValidate handles POST /rosters/validate requests. An invalid
// roster is still a successful check, so the status is always 200.
func (h *RosterHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	const op = "api.validate_roster"
	var req validateRequest
	if err := decode(r, w, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	res := h.deps.Validate(r.Context(), req.Selection)
	writeJSON(w, http.StatusOK, validationResponse{Valid: res.Valid(), Violations: res.Violations})
}

// HandleSubmit handles POST /rosters requests.
func (h *RosterHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_roster"
	var req model.Roster
	if err := decode(r, w, &req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	registered, res, err := h.deps.SubmitRoster(r.Context(), req)
	if err != nil {
		status, code := classify(err)
		writeJSON(w, status, errorResponse{
			Code:       code,
			Message:    Wrap(op, err).Error(),
			Violations: res.Violations,
		})
		return
	}
	writeJSON(w, http.StatusCreated, registered)
}

// HandleGetRoster handles GET /rosters/{roster_id} requests.
func (h *RosterHandler) HandleGetRoster(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_roster"
	id := r.PathValue("roster_id")
	if strings.TrimSpace(id) == "" {
		writeError(w, NewKind(op, ErrBadRequest))
		return
	}
	got, err := h.deps.Roster(r.Context(), id)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, got)
}
