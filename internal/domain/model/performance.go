package model

import (
	"fmt"
	"strconv"
	"strings"
)

// BallsPerOver is the number of legal deliveries in an over.
const BallsPerOver = 6

// Overs is a bowling spell in cricket notation: 3.4 means three complete
// overs and four balls.
type Overs struct {
	Complete int
	Balls    int
}

// ParseOvers parses "3", "3.4" or "0.5". The part after the dot is a ball
// count (0-5), not a fraction.
func ParseOvers(s string) (Overs, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Overs{}, nil
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	complete, err := strconv.Atoi(whole)
	if err != nil {
		return Overs{}, fmt.Errorf("%w: %q", ErrInvalidOvers, s)
	}
	o := Overs{Complete: complete}
	if hasFrac {
		if len(frac) != 1 {
			return Overs{}, fmt.Errorf("%w: %q", ErrInvalidOvers, s)
		}
		balls, err := strconv.Atoi(frac)
		if err != nil {
			return Overs{}, fmt.Errorf("%w: %q", ErrInvalidOvers, s)
		}
		o.Balls = balls
	}
	return o, nil
}

// TotalBalls returns the spell length in legal deliveries.
func (o Overs) TotalBalls() int { return o.Complete*BallsPerOver + o.Balls }

// String renders the spell in cricket notation.
func (o Overs) String() string {
	if o.Balls == 0 {
		return strconv.Itoa(o.Complete)
	}
	return strconv.Itoa(o.Complete) + "." + strconv.Itoa(o.Balls)
}

// MarshalJSON writes overs as a JSON string ("3.4").
func (o Overs) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(o.String())), nil
}

// UnmarshalJSON accepts either a JSON number (3.4) or a string ("3.4").
func (o *Overs) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if raw == "null" {
		*o = Overs{}
		return nil
	}
	parsed, err := ParseOvers(raw)
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// MatchPerformance holds one player's statistics for one match.
type MatchPerformance struct {
	PlayerID string `json:"player_id"`
	// Role is optional; when present it decides duck-penalty eligibility.
	Role Role `json:"role,omitempty"`

	Runs       int  `json:"runs"`
	BallsFaced int  `json:"balls_faced"`
	Fours      int  `json:"fours"`
	Sixes      int  `json:"sixes"`
	Dismissed  bool `json:"dismissed"`

	Overs        Overs `json:"overs"`
	RunsConceded int   `json:"runs_conceded"`
	Wickets      int   `json:"wickets"`
	// BowledOrLBW counts the wickets above that were bowled or LBW.
	BowledOrLBW int `json:"bowled_or_lbw"`
	Maidens     int `json:"maidens"`

	Catches         int `json:"catches"`
	Stumpings       int `json:"stumpings"`
	DirectRunOuts   int `json:"direct_run_outs"`
	IndirectRunOuts int `json:"indirect_run_outs"`
}

// Scorecard is one published revision of a match's player statistics.
// A later revision replaces every performance of an earlier one.
type Scorecard struct {
	MatchID      string             `json:"match_id"`
	Revision     int64              `json:"revision"`
	Performances []MatchPerformance `json:"performances"`
}

// ByPlayer indexes the performances by player id.
func (s Scorecard) ByPlayer() map[string]MatchPerformance {
	out := make(map[string]MatchPerformance, len(s.Performances))
	for _, p := range s.Performances {
		out[p.PlayerID] = p
	}
	return out
}
