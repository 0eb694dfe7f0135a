package simulate

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/wicket/internal/adapters/repository"
	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/internal/domain/scoring"
	"github.com/okian/wicket/pkg/logger"
)

// expectedBoard scores every roster of m against its latest scorecard and
// ranks them in a local store, the same way the service does.
func expectedBoard(ctx context.Context, engine *scoring.Engine, m *Match) ([]model.LeaderboardEntry, error) {
	if len(m.Scorecards) == 0 || len(m.Rosters) == 0 {
		return nil, nil
	}
	latest := m.Scorecards[len(m.Scorecards)-1]
	perfs := latest.ByPlayer()

	store := repository.NewTreapStore(ctx)
	defer store.Close()
	for _, r := range m.Rosters {
		sr := engine.ScoreRoster(r.ID, m.ID, r.Selection, perfs)
		if err := store.Upsert(ctx, m.ID, r.ID, sr.Total); err != nil {
			return nil, fmt.Errorf("rank %s: %w", r.ID, err)
		}
	}
	return store.TopN(ctx, m.ID, len(m.Rosters))
}

// compareEntries lists every position where got differs from want.
func compareEntries(want, got []model.LeaderboardEntry) []string {
	var diffs []string
	if len(got) != len(want) {
		diffs = append(diffs, fmt.Sprintf("expected %d entries, got %d", len(want), len(got)))
	}
	for i := range min(len(want), len(got)) {
		if !sameEntry(want[i], got[i]) {
			diffs = append(diffs, fmt.Sprintf("position %d: expected %s, got %s", i+1, describe(want[i]), describe(got[i])))
		}
	}
	return diffs
}

func sameEntry(a, b model.LeaderboardEntry) bool {
	return a.Rank == b.Rank && a.RosterID == b.RosterID && a.Points.Equal(b.Points)
}

func describe(e model.LeaderboardEntry) string {
	return fmt.Sprintf("#%d %s (%s)", e.Rank, e.RosterID, e.Points)
}

// verifyMatch checks the service's leaderboard and per-roster ranks for m
// against the locally computed board. The leaderboard is re-fetched until
// it matches or the wait timeout passes, since the last jobs may still be
// in flight after the queue drains.
func verifyMatch(ctx context.Context, config *Config, engine *scoring.Engine, m *Match, st *Stats) error {
	log := logger.Get()

	expected, err := expectedBoard(ctx, engine, m)
	if err != nil {
		return err
	}
	m.Expected = expected
	limit := min(config.TopN, len(expected))
	if limit < 1 {
		return nil
	}

	client := newHTTPClient(config.Timeout)
	deadline := time.Now().Add(config.WaitTimeout)
	var diffs []string
	for {
		board, err := getLeaderboard(ctx, client, config.BaseURL, m.ID, limit)
		if err != nil {
			return fmt.Errorf("leaderboard %s: %w", m.ID, err)
		}
		diffs = compareEntries(expected[:limit], board)
		if len(diffs) == 0 {
			st.LeaderboardEntries += len(board)
			break
		}
		if time.Now().After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(PollInterval):
		}
	}

	want := make(map[string]model.LeaderboardEntry, len(expected))
	for _, e := range expected {
		want[e.RosterID] = e
	}
	for i, got := range retrieveRanks(ctx, config, m, st) {
		id := m.Rosters[i].ID
		if w := want[id]; !sameEntry(w, got) {
			diffs = append(diffs, fmt.Sprintf("rank of %s: expected %s, got %s", id, describe(w), describe(got)))
		}
	}

	if len(diffs) > 0 {
		st.Mismatches += len(diffs)
		for _, d := range diffs {
			log.Error(ctx, "leaderboard mismatch", logger.String("matchID", m.ID), logger.String("detail", d))
		}
		return fmt.Errorf("match %s: %d mismatches", m.ID, len(diffs))
	}

	log.Info(ctx, "leaderboard verified",
		logger.String("matchID", m.ID),
		logger.Int("rosters", len(m.Rosters)),
		logger.String("leader", describe(expected[0])))
	return nil
}
