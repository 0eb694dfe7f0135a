package simulate

import (
	"time"

	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/internal/domain/stats"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Matches     int           // Number of matches to simulate
	Rosters     int           // Rosters submitted per match
	Revisions   int           // Scorecard revisions published per match
	TopN        int           // Leaderboard entries to fetch per match
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	WaitTimeout time.Duration // How long to wait for scoring to settle
	Seed        uint64        // Random seed; runs with the same seed generate the same data
	OutputFile  string        // Output file for generated data
	LogFile     string        // Log file for run output
	Verbose     bool          // Enable verbose logging

	// Quota and Format must match the service's configuration.
	Quota  model.RoleQuota
	Format stats.Format
}

// Match is one simulated fixture with its player pool, rosters and
// published scorecards.
type Match struct {
	ID         string                   `json:"id"`
	Pool       []model.Player           `json:"pool"`
	Rosters    []model.Roster           `json:"rosters"`
	Scorecards []model.Scorecard        `json:"scorecards"`
	Expected   []model.LeaderboardEntry `json:"expected,omitempty"`
}

// ackResponse mirrors the body of POST /performances.
type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	Jobs      int    `json:"jobs"`
}

// Stats holds run statistics.
type Stats struct {
	RostersGenerated   int
	RostersSubmitted   int
	RostersRejected    int
	ScorecardsAccepted int
	ScorecardsFailed   int
	JobsQueued         int
	RanksRetrieved     int
	LeaderboardEntries int
	Mismatches         int
	StartTime          time.Time
	EndTime            time.Time
	Duration           time.Duration
}
