package model

import "time"

// RosterSelection is a user's set of players for one match plus the
// captain and vice-captain designations. It is treated as an immutable
// value: helpers that change it return a new selection.
type RosterSelection struct {
	Players       []Player `json:"players"`
	CaptainID     string   `json:"captain_id,omitempty"`
	ViceCaptainID string   `json:"vice_captain_id,omitempty"`
}

// Len returns the number of selected players.
func (s RosterSelection) Len() int { return len(s.Players) }

// Contains reports whether the player id is selected.
func (s RosterSelection) Contains(playerID string) bool {
	_, ok := s.Player(playerID)
	return ok
}

// Player returns the selected player with the given id.
func (s RosterSelection) Player(playerID string) (Player, bool) {
	for _, p := range s.Players {
		if p.ID == playerID {
			return p, true
		}
	}
	return Player{}, false
}

// TotalPrice sums the price of every selected player.
func (s RosterSelection) TotalPrice() int64 {
	var total int64
	for _, p := range s.Players {
		total += p.Price
	}
	return total
}

// RoleCount counts selected players with the given role.
func (s RosterSelection) RoleCount(role Role) int {
	n := 0
	for _, p := range s.Players {
		if p.Role == role {
			n++
		}
	}
	return n
}

// TeamCount counts selected players from the given match side.
func (s RosterSelection) TeamCount(team string) int {
	n := 0
	for _, p := range s.Players {
		if p.Team == team {
			n++
		}
	}
	return n
}

// Clone returns a copy that shares no backing array with s.
func (s RosterSelection) Clone() RosterSelection {
	out := s
	out.Players = append([]Player(nil), s.Players...)
	return out
}

// Equal reports whether s and other pick the same players with the same
// captaincy. Player order is ignored.
func (s RosterSelection) Equal(other RosterSelection) bool {
	if s.CaptainID != other.CaptainID || s.ViceCaptainID != other.ViceCaptainID || len(s.Players) != len(other.Players) {
		return false
	}
	for _, p := range s.Players {
		if q, ok := other.Player(p.ID); !ok || q != p {
			return false
		}
	}
	return true
}

// RoleQuota holds the roster constraints. All values come from
// configuration; nothing here is a product constant.
type RoleQuota struct {
	Min        map[Role]int `json:"min"`
	Max        map[Role]int `json:"max"`
	RosterSize int          `json:"roster_size"`
	Budget     int64        `json:"budget"`
	// MaxPerTeam caps players taken from one match side. Zero disables it.
	MaxPerTeam int `json:"max_per_team,omitempty"`
}

// Roster is a finalized selection entered into one match.
type Roster struct {
	ID          string          `json:"id"`
	MatchID     string          `json:"match_id"`
	Owner       string          `json:"owner,omitempty"`
	Selection   RosterSelection `json:"selection"`
	SubmittedAt time.Time       `json:"submitted_at"`
}
