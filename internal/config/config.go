// Package config defines service configuration and how it is loaded.
//
// Values are layered defaults, then an optional YAML file, then WICKET_*
// environment variables.
package config

import (
	"context"
	"runtime"

	"github.com/okian/wicket/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory scoring job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many publication revisions are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// SnapshotIntervalMS sets how often leaderboard snapshots are published.
	SnapshotIntervalMS int `koanf:"snapshot_interval_ms"`

	// Budget is the credit ceiling of a roster. The unit is opaque.
	Budget int64 `koanf:"budget"`

	// RosterSize is the exact number of players in a finalized roster.
	RosterSize int `koanf:"roster_size"`

	// MaxPerTeam caps players from one real-world side; 0 disables it.
	MaxPerTeam int `koanf:"max_per_team"`

	// RoleMin and RoleMax bound each role, keyed by role name (WK, BAT, AR, BOWL).
	RoleMin map[string]int `koanf:"role_min"`
	RoleMax map[string]int `koanf:"role_max"`

	// PointsTablePath points at a YAML points table. Empty means the
	// built-in table.
	PointsTablePath string `koanf:"points_table_path"`

	// MatchFormat selects per-format statistics limits: T20, ODI, TEST, T10.
	MatchFormat string `koanf:"match_format"`
}

// New returns a Config holding the defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		QueueSize:           10_000,
		WorkerCount:         runtime.NumCPU(),
		DedupeSize:          50_000,
		MaxLeaderboardLimit: 100,
		SnapshotIntervalMS:  1000,
		Budget:              100,
		RosterSize:          11,
		MaxPerTeam:          7,
		RoleMin: map[string]int{
			string(model.WicketKeeper): 1,
			string(model.Batsman):      3,
			string(model.AllRounder):   1,
			string(model.Bowler):       3,
		},
		RoleMax: map[string]int{
			string(model.WicketKeeper): 4,
			string(model.Batsman):      6,
			string(model.AllRounder):   4,
			string(model.Bowler):       6,
		},
		MatchFormat: "T20",
	}
}
