package model

import "github.com/shopspring/decimal"

// PlayerPoints is one player's scoring breakdown inside a roster.
type PlayerPoints struct {
	PlayerID   string          `json:"player_id"`
	Batting    int64           `json:"batting"`
	Bowling    int64           `json:"bowling"`
	Fielding   int64           `json:"fielding"`
	Base       int64           `json:"base"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Final      decimal.Decimal `json:"final"`
	// DidNotPlay is set when no performance record exists for the player.
	DidNotPlay bool `json:"did_not_play,omitempty"`
}

// ScoredRoster is the derived points view of one roster for one match.
// It is recomputed from source data, never patched.
type ScoredRoster struct {
	RosterID     string          `json:"roster_id"`
	MatchID      string          `json:"match_id"`
	TableVersion string          `json:"table_version"`
	Revision     int64           `json:"revision,omitempty"`
	Players      []PlayerPoints  `json:"players"`
	Total        decimal.Decimal `json:"total"`
}

// LeaderboardEntry is the read shape returned by leaderboard queries.
type LeaderboardEntry struct {
	Rank     int             `json:"rank"`
	RosterID string          `json:"roster_id"`
	Points   decimal.Decimal `json:"points"`
}
