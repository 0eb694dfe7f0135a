// Package repository keeps one ranked leaderboard per match.
package repository

import (
	"context"

	"github.com/okian/wicket/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Store provides read/write access to match leaderboards.
type Store interface {
	// Upsert sets a roster's total for a match, replacing any previous total.
	// Totals are recomputed from source data, so a lower total is accepted.
	Upsert(ctx context.Context, matchID, rosterID string, points decimal.Decimal) error

	// Remove drops a roster from a match leaderboard.
	// Returns ErrNotFound if the roster is not ranked.
	Remove(ctx context.Context, matchID, rosterID string) error

	// Rank returns a roster's rank and total.
	// Returns ErrNotFound if the roster is not ranked.
	Rank(ctx context.Context, matchID, rosterID string) (model.LeaderboardEntry, error)

	// TopN returns the first n entries ordered by points desc, roster id asc.
	TopN(ctx context.Context, matchID string, n int) ([]model.LeaderboardEntry, error)

	// Count returns the number of rosters ranked for a match.
	Count(ctx context.Context, matchID string) int

	// Matches returns the ids of matches with at least one ranked roster.
	Matches(ctx context.Context) []string
}
