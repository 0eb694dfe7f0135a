package simulate

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/pkg/logger"
)

// waitForScoring polls /stats until the scoring queue is drained or the
// wait timeout passes.
func waitForScoring(ctx context.Context, config *Config) error {
	log := logger.Get()
	log.Info(ctx, "waiting for scoring queue to drain")

	client := newHTTPClient(config.Timeout)
	deadline := time.Now().Add(config.WaitTimeout)
	for {
		var out map[string]any
		if err := client.getJSON(ctx, config.BaseURL+"/stats", &out); err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		if n, ok := out["queueLength"].(float64); ok && n == 0 {
			log.Info(ctx, "scoring queue drained")
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("scoring queue not drained after %s", config.WaitTimeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(PollInterval):
		}
	}
}

// getLeaderboard retrieves the top entries of one match.
func getLeaderboard(ctx context.Context, client *HTTPClient, baseURL, matchID string, limit int) ([]model.LeaderboardEntry, error) {
	q := url.Values{}
	q.Set("match_id", matchID)
	q.Set("limit", fmt.Sprint(limit))

	var entries []model.LeaderboardEntry
	if err := client.getJSON(ctx, baseURL+"/leaderboard?"+q.Encode(), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// retrieveRanks retrieves the rank of every roster of m concurrently.
// Failed lookups leave a zero entry.
func retrieveRanks(ctx context.Context, config *Config, m *Match, st *Stats) []model.LeaderboardEntry {
	log := logger.Get()
	client := newHTTPClient(config.Timeout)
	ranks := make([]model.LeaderboardEntry, len(m.Rosters))

	var retrieved, failed int64
	indexes := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for range config.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if ctx.Err() != nil {
					return
				}
				id := m.Rosters[i].ID
				u := fmt.Sprintf("%s/rank/%s/%s", config.BaseURL, url.PathEscape(m.ID), url.PathEscape(id))
				var entry model.LeaderboardEntry
				if err := client.getJSON(ctx, u, &entry); err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Warn(ctx, "failed to get rank", logger.String("rosterID", id), logger.Error(err))
					}
					continue
				}
				ranks[i] = entry
				atomic.AddInt64(&retrieved, 1)
			}
		}()
	}

	go func() {
		defer close(indexes)
		for i := range m.Rosters {
			select {
			case <-ctx.Done():
				return
			case indexes <- i:
			}
		}
	}()

	wg.Wait()

	st.RanksRetrieved += int(atomic.LoadInt64(&retrieved))
	if config.Verbose {
		log.Info(ctx, "ranks retrieved",
			logger.String("matchID", m.ID),
			logger.Int("retrieved", int(atomic.LoadInt64(&retrieved))),
			logger.Int("failed", int(atomic.LoadInt64(&failed))))
	}
	return ranks
}
