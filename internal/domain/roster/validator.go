package roster

import (
	"fmt"
	"sort"

	"github.com/okian/wicket/internal/domain/model"
)

// BudgetRemaining returns the credits left after the current selection.
func BudgetRemaining(sel model.RosterSelection, quota model.RoleQuota) int64 {
	return quota.Budget - sel.TotalPrice()
}

// CanAdd decides whether candidate may join sel. Checks run in a fixed,
// user-facing order: roster size, role quota, budget, then team limit.
// It panics with ErrAlreadyInRoster if candidate is already selected.
func CanAdd(sel model.RosterSelection, candidate model.Player, quota model.RoleQuota, budgetRemaining int64) Decision {
	if sel.Contains(candidate.ID) {
		panic(fmt.Errorf("%w: %s", ErrAlreadyInRoster, candidate.ID))
	}
	if sel.Len() >= quota.RosterSize {
		return Deny(ReasonRosterFull)
	}
	if maxRole, ok := quota.Max[candidate.Role]; !ok || sel.RoleCount(candidate.Role)+1 > maxRole {
		d := Deny(ReasonRoleQuotaExceeded)
		d.Role = candidate.Role
		return d
	}
	if candidate.Price > budgetRemaining {
		return Deny(ReasonInsufficientBudget)
	}
	if quota.MaxPerTeam > 0 && candidate.Team != "" && sel.TeamCount(candidate.Team)+1 > quota.MaxPerTeam {
		d := Deny(ReasonTeamLimitExceeded)
		d.Team = candidate.Team
		return d
	}
	return Allow()
}

// CanRemove decides whether playerID may be removed from sel.
func CanRemove(sel model.RosterSelection, playerID string) Decision {
	if !sel.Contains(playerID) {
		return Deny(ReasonNotInRoster)
	}
	return Allow()
}

// Add returns sel with candidate appended when CanAdd allows it, or sel
// unchanged together with the denial.
func Add(sel model.RosterSelection, candidate model.Player, quota model.RoleQuota) (model.RosterSelection, Decision) {
	d := CanAdd(sel, candidate, quota, BudgetRemaining(sel, quota))
	if !d.Allowed {
		return sel, d
	}
	next := sel.Clone()
	next.Players = append(next.Players, candidate)
	return next, d
}

// Remove returns sel without playerID. If the player was captain or
// vice-captain, that designation is cleared in the result.
// It panics with ErrNotInRoster if the player is not selected; check with
// CanRemove first.
func Remove(sel model.RosterSelection, playerID string) model.RosterSelection {
	if !sel.Contains(playerID) {
		panic(fmt.Errorf("%w: %s", ErrNotInRoster, playerID))
	}
	next := model.RosterSelection{
		Players:       make([]model.Player, 0, sel.Len()-1),
		CaptainID:     sel.CaptainID,
		ViceCaptainID: sel.ViceCaptainID,
	}
	for _, p := range sel.Players {
		if p.ID != playerID {
			next.Players = append(next.Players, p)
		}
	}
	if next.CaptainID == playerID {
		next.CaptainID = ""
	}
	if next.ViceCaptainID == playerID {
		next.ViceCaptainID = ""
	}
	return next
}

// SetCaptain designates playerID as captain. A player who was vice-captain
// loses that designation.
func SetCaptain(sel model.RosterSelection, playerID string) (model.RosterSelection, Decision) {
	if !sel.Contains(playerID) {
		return sel, Deny(ReasonNotInRoster)
	}
	next := sel.Clone()
	next.CaptainID = playerID
	if next.ViceCaptainID == playerID {
		next.ViceCaptainID = ""
	}
	return next, Allow()
}

// SetViceCaptain designates playerID as vice-captain. A player who was
// captain loses that designation.
func SetViceCaptain(sel model.RosterSelection, playerID string) (model.RosterSelection, Decision) {
	if !sel.Contains(playerID) {
		return sel, Deny(ReasonNotInRoster)
	}
	next := sel.Clone()
	next.ViceCaptainID = playerID
	if next.CaptainID == playerID {
		next.CaptainID = ""
	}
	return next, Allow()
}

// ValidateFinal checks every constraint of a roster about to be submitted
// and returns all violations found. It never stops at the first one.
func ValidateFinal(sel model.RosterSelection, quota model.RoleQuota) Result {
	out := make([]Violation, 0)

	if sel.Len() != quota.RosterSize {
		out = append(out, Violation{
			Code:   CodeWrongSize,
			Detail: fmt.Sprintf("roster has %d players, want %d", sel.Len(), quota.RosterSize),
		})
	}

	seen := make(map[string]struct{}, sel.Len())
	for _, p := range sel.Players {
		if _, dup := seen[p.ID]; dup {
			out = append(out, Violation{Code: CodeDuplicatePlayer, PlayerID: p.ID, Detail: "player selected more than once"})
			continue
		}
		seen[p.ID] = struct{}{}
		if !p.Role.Valid() {
			out = append(out, Violation{Code: CodeUnknownRole, PlayerID: p.ID, Role: p.Role, Detail: "player has no known role"})
		}
	}

	if spent := sel.TotalPrice(); spent > quota.Budget {
		out = append(out, Violation{
			Code:   CodeBudgetExceeded,
			Detail: fmt.Sprintf("roster costs %d credits, budget is %d", spent, quota.Budget),
		})
	}

	for _, role := range model.Roles() {
		n := sel.RoleCount(role)
		if minRole := quota.Min[role]; n < minRole {
			out = append(out, Violation{
				Code:   CodeRoleBelowMin,
				Role:   role,
				Detail: fmt.Sprintf("%d %s selected, need at least %d", n, role, minRole),
			})
		}
		if maxRole, ok := quota.Max[role]; ok && n > maxRole {
			out = append(out, Violation{
				Code:   CodeRoleAboveMax,
				Role:   role,
				Detail: fmt.Sprintf("%d %s selected, at most %d allowed", n, role, maxRole),
			})
		}
	}

	if quota.MaxPerTeam > 0 {
		teams := make(map[string]int)
		for _, p := range sel.Players {
			if p.Team != "" {
				teams[p.Team]++
			}
		}
		names := make([]string, 0, len(teams))
		for team := range teams {
			names = append(names, team)
		}
		sort.Strings(names)
		for _, team := range names {
			if teams[team] > quota.MaxPerTeam {
				out = append(out, Violation{
					Code:   CodeTeamLimitExceeded,
					Team:   team,
					Detail: fmt.Sprintf("%d players from %s, at most %d allowed", teams[team], team, quota.MaxPerTeam),
				})
			}
		}
	}

	out = append(out, captaincyViolations(sel)...)
	return Result{Violations: out}
}

func captaincyViolations(sel model.RosterSelection) []Violation {
	var out []Violation
	c, vc := sel.CaptainID, sel.ViceCaptainID
	if c == "" {
		out = append(out, Violation{Code: CodeCaptainMissing, Detail: "captain not set"})
	} else if !sel.Contains(c) {
		out = append(out, Violation{Code: CodeCaptainNotInRoster, PlayerID: c, Detail: "captain is not in the roster"})
	}
	if vc == "" {
		out = append(out, Violation{Code: CodeViceCaptainMissing, Detail: "vice-captain not set"})
	} else if !sel.Contains(vc) {
		out = append(out, Violation{Code: CodeViceCaptainNotInRoster, PlayerID: vc, Detail: "vice-captain is not in the roster"})
	}
	if c != "" && c == vc {
		out = append(out, Violation{Code: CodeCaptainIsViceCaptain, PlayerID: c, Detail: "captain and vice-captain must differ"})
	}
	return out
}
