// Package roster decides whether a roster under construction, or a
// finalized roster, satisfies the budget and role constraints.
//
// All checks are pure and deterministic. Denials and violations are
// returned as values so callers can show them to users; only caller bugs
// (adding a player twice, removing an absent player) panic.
package roster

import (
	"fmt"

	"github.com/okian/wicket/internal/domain/model"
)

// Reason explains why an incremental edit was denied.
type Reason string

// Denial reasons, in the order CanAdd evaluates them.
const (
	ReasonRosterFull         Reason = "roster_full"
	ReasonRoleQuotaExceeded  Reason = "role_quota_exceeded"
	ReasonInsufficientBudget Reason = "insufficient_budget"
	ReasonTeamLimitExceeded  Reason = "team_limit_exceeded"
	ReasonNotInRoster        Reason = "not_in_roster"
)

// Decision is the outcome of an incremental check.
type Decision struct {
	Allowed bool       `json:"allowed"`
	Reason  Reason     `json:"reason,omitempty"`
	Role    model.Role `json:"role,omitempty"`
	Team    string     `json:"team,omitempty"`
}

// Allow is the positive decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny builds a negative decision.
func Deny(reason Reason) Decision { return Decision{Reason: reason} }

// Message renders a user-facing explanation.
func (d Decision) Message() string {
	switch d.Reason {
	case "":
		return "allowed"
	case ReasonRosterFull:
		return "roster is full"
	case ReasonRoleQuotaExceeded:
		return fmt.Sprintf("too many players with role %s", d.Role)
	case ReasonInsufficientBudget:
		return "not enough credits remaining"
	case ReasonTeamLimitExceeded:
		return fmt.Sprintf("too many players from %s", d.Team)
	case ReasonNotInRoster:
		return "player is not in the roster"
	}
	return string(d.Reason)
}

// Code identifies a violation found by ValidateFinal.
type Code string

// Violation codes.
const (
	CodeWrongSize              Code = "wrong_size"
	CodeDuplicatePlayer        Code = "duplicate_player"
	CodeUnknownRole            Code = "unknown_role"
	CodeBudgetExceeded         Code = "budget_exceeded"
	CodeRoleBelowMin           Code = "role_below_min"
	CodeRoleAboveMax           Code = "role_above_max"
	CodeTeamLimitExceeded      Code = "team_limit_exceeded"
	CodeCaptainMissing         Code = "captain_missing"
	CodeViceCaptainMissing     Code = "vice_captain_missing"
	CodeCaptainIsViceCaptain   Code = "captain_is_vice_captain"
	CodeCaptainNotInRoster     Code = "captain_not_in_roster"
	CodeViceCaptainNotInRoster Code = "vice_captain_not_in_roster"
)

// Violation is one failed constraint of a finalized roster.
type Violation struct {
	Code     Code       `json:"code"`
	Role     model.Role `json:"role,omitempty"`
	Team     string     `json:"team,omitempty"`
	PlayerID string     `json:"player_id,omitempty"`
	Detail   string     `json:"detail"`
}

// Result lists every violation of a finalized roster.
type Result struct {
	Violations []Violation `json:"violations"`
}

// Valid reports whether no constraint failed.
func (r Result) Valid() bool { return len(r.Violations) == 0 }

// Has reports whether a violation with the code was found.
func (r Result) Has(code Code) bool {
	for _, v := range r.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}
