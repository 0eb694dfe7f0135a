package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/internal/domain/pointstable"
	"github.com/okian/wicket/internal/domain/scoring"
	"github.com/okian/wicket/internal/domain/stats"
	"github.com/okian/wicket/pkg/logger"
)

// ErrVerification is returned when the service disagrees with the locally
// computed leaderboards.
var ErrVerification = errors.New("leaderboard verification failed")

// Run executes a complete simulation: it submits rosters, publishes
// scorecards and checks every leaderboard against a local computation.
func Run(ctx context.Context, config *Config) error {
	log := logger.Get()
	st := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting fantasy simulation",
		logger.String("baseURL", config.BaseURL),
		logger.Int("matches", config.Matches),
		logger.Int("rostersPerMatch", config.Rosters),
		logger.Int("revisions", config.Revisions),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("seed", config.Seed))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Score locally with the table the service uses
	engine, err := fetchEngine(ctx, config)
	if err != nil {
		return fmt.Errorf("points table: %w", err)
	}

	// Step 3: Generate matches
	matches, err := generateMatches(config, st)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	// Step 4: Submit rosters
	var rosters []model.Roster
	for _, m := range matches {
		rosters = append(rosters, m.Rosters...)
	}
	dropRejected(matches, submitRosters(ctx, config, rosters, st))

	// Step 5: Publish scorecards
	publishScorecards(ctx, config, matches, st)
	if st.ScorecardsFailed > 0 {
		return fmt.Errorf("%d scorecards were rejected", st.ScorecardsFailed)
	}

	// Step 6: Wait for processing
	if err := waitForScoring(ctx, config); err != nil {
		return err
	}

	// Step 7: Verify leaderboards and ranks
	var failed int
	for _, m := range matches {
		if err := verifyMatch(ctx, config, engine, m, st); err != nil {
			log.Error(ctx, "match verification failed", logger.Error(err))
			failed++
		}
	}

	// Step 8: Save generated data
	if err := saveMatches(ctx, config, matches); err != nil {
		log.Warn(ctx, "failed to save matches to file", logger.Error(err))
	}

	st.EndTime = time.Now()
	st.Duration = st.EndTime.Sub(st.StartTime)
	displayFinalStats(ctx, st)

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d matches", ErrVerification, failed, len(matches))
	}
	log.Info(ctx, "simulation completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	log := logger.Get()
	log.Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if _, err := readResponseBody(resp); err != nil {
		return fmt.Errorf("failed to read health response: %w", err)
	}

	// The service answers with Prometheus metrics; any 200 is healthy.
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	log.Info(ctx, "service is healthy")
	return nil
}

// fetchEngine builds a scoring engine from the service's points table.
func fetchEngine(ctx context.Context, config *Config) (*scoring.Engine, error) {
	var table pointstable.Table
	client := newHTTPClient(config.Timeout)
	if err := client.getJSON(ctx, config.BaseURL+"/points-table", &table); err != nil {
		return nil, err
	}
	logger.Get().Info(ctx, "using points table", logger.String("version", table.Version))
	return scoring.New(table)
}

// generateMatches draws pools, rosters and scorecard revisions.
func generateMatches(config *Config, st *Stats) ([]*Match, error) {
	gen := NewGenerator(config.Seed, config.Quota, config.Format)
	run := uuid.NewString()[:8]

	matches := make([]*Match, 0, config.Matches)
	for i := range config.Matches {
		m := &Match{ID: fmt.Sprintf("sim-%s-%d", run, i+1)}
		m.Pool = gen.Pool(m.ID)
		for j := range config.Rosters {
			r, err := gen.Roster(m.ID, fmt.Sprintf("user-%d", j+1), m.Pool)
			if err != nil {
				return nil, err
			}
			m.Rosters = append(m.Rosters, r)
		}
		for rev := 1; rev <= config.Revisions; rev++ {
			sc := gen.Scorecard(m.ID, int64(rev), m.Pool)
			if err := stats.ValidateAll(config.Format, sc.Performances); err != nil {
				return nil, fmt.Errorf("generated scorecard %s rev %d: %w", m.ID, rev, err)
			}
			m.Scorecards = append(m.Scorecards, sc)
		}
		st.RostersGenerated += len(m.Rosters)
		matches = append(matches, m)
	}
	return matches, nil
}

// dropRejected removes rosters the service refused so they are not expected
// on its leaderboards. accepted follows the order of matches and their rosters.
func dropRejected(matches []*Match, accepted []bool) {
	k := 0
	for _, m := range matches {
		kept := m.Rosters[:0]
		for _, r := range m.Rosters {
			if accepted[k] {
				kept = append(kept, r)
			}
			k++
		}
		m.Rosters = kept
	}
}

// saveMatches writes the generated matches and expected boards as JSON.
func saveMatches(ctx context.Context, config *Config, matches []*Match) error {
	filename := config.OutputFile
	if filename == "" {
		filename = "simulation_" + time.Now().Format("20060102_150405") + ".json"
	}

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal matches: %w", err)
	}
	if err := os.WriteFile(filename, data, logFilePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "matches saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, st *Stats) {
	var acceptRate, rostersPerSecond float64
	if st.RostersSubmitted > 0 {
		acceptRate = float64(st.RostersSubmitted-st.RostersRejected) / float64(st.RostersSubmitted) * PercentageMultiplier
	}
	if st.Duration > 0 {
		rostersPerSecond = float64(st.RostersSubmitted) / st.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("rostersGenerated", st.RostersGenerated),
		logger.Int("rostersSubmitted", st.RostersSubmitted),
		logger.Int("rostersRejected", st.RostersRejected),
		logger.Int("scorecardsAccepted", st.ScorecardsAccepted),
		logger.Int("jobsQueued", st.JobsQueued),
		logger.Int("ranksRetrieved", st.RanksRetrieved),
		logger.Int("leaderboardEntries", st.LeaderboardEntries),
		logger.Int("mismatches", st.Mismatches),
		logger.String("duration", st.Duration.String()),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("rostersPerSecond", rostersPerSecond))
}
