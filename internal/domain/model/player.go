// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// Role is a player's playing specialty.
type Role string

// Known roles. The string values are the short codes used by clients.
const (
	WicketKeeper Role = "WK"
	Batsman      Role = "BAT"
	AllRounder   Role = "AR"
	Bowler       Role = "BOWL"
)

// Roles returns every known role in display order.
func Roles() []Role {
	return []Role{WicketKeeper, Batsman, AllRounder, Bowler}
}

// ParseRole accepts short codes (WK, BAT, AR, BOWL) and long names
// (wicket-keeper, batsman, all-rounder, bowler), case-insensitively.
func ParseRole(s string) (Role, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	switch key {
	case "wk", "wicketkeeper", "keeper":
		return WicketKeeper, nil
	case "bat", "batsman", "batter":
		return Batsman, nil
	case "ar", "allrounder":
		return AllRounder, nil
	case "bowl", "bowler":
		return Bowler, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case WicketKeeper, Batsman, AllRounder, Bowler:
		return true
	}
	return false
}

// UnmarshalText normalizes any accepted spelling to the short code.
func (r *Role) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*r = ""
		return nil
	}
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Player is a selectable cricketer. Immutable while a roster is being built.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role"`
	Price int64  `json:"price"` // credits
	Team  string `json:"team"`
}
