// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/wicket/internal/adapters/mq/queue"
	workerpool "github.com/okian/wicket/internal/adapters/mq/worker"
	repository "github.com/okian/wicket/internal/adapters/repository"
	"github.com/okian/wicket/internal/domain/dedupe"
	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/internal/domain/pointstable"
	"github.com/okian/wicket/internal/domain/roster"
	"github.com/okian/wicket/internal/domain/scoring"
	"github.com/okian/wicket/internal/domain/stats"
	"github.com/okian/wicket/pkg/logger"
	"github.com/okian/wicket/pkg/metrics"
)

// Check names used in roster check metrics.
const (
	checkAdd      = "can_add"
	checkRemove   = "can_remove"
	checkValidate = "validate"
)

// sheet is the stored form of the latest scorecard of a match. It is
// replaced wholesale on publication and never mutated.
type sheet struct {
	revision int64
	perfs    map[string]model.MatchPerformance
}

// Publication reports what happened to a published scorecard.
type Publication struct {
	MatchID   string `json:"match_id"`
	Revision  int64  `json:"revision"`
	Jobs      int    `json:"jobs"`
	Duplicate bool   `json:"duplicate"`
}

// Service implements the API dependencies for the fantasy engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	leaderboard *repository.TreapStore
	deduper     dedupe.Deduper
	jobs        *queue.InMemoryQueue
	engine      *scoring.Engine
	workerPool  *workerpool.Pool

	// Configuration
	workerCount      int
	queueSize        int
	dedupeSize       int
	snapshotInterval time.Duration
	quota            model.RoleQuota
	format           stats.Format
	table            pointstable.Table

	// Registries
	rosters map[string]model.Roster
	entries map[string][]string // match id -> roster ids in submission order
	sheets  map[string]sheet
	scores  map[string]model.ScoredRoster

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:      4,
		queueSize:        10_000,
		dedupeSize:       50_000,
		snapshotInterval: time.Second,
		format:           stats.T20,
		table:            pointstable.Default(),
		rosters:          make(map[string]model.Roster),
		entries:          make(map[string][]string),
		sheets:           make(map[string]sheet),
		scores:           make(map[string]model.ScoredRoster),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.quota.RosterSize < 1 {
		return fmt.Errorf("start service: %w", ErrQuotaNotSet)
	}
	engine, err := scoring.New(s.table)
	if err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	s.logger.Info(ctx, "starting fantasy service...")

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.engine = engine
	s.leaderboard = repository.NewTreapStore(runCtx,
		repository.WithSnapshotInterval(s.snapshotInterval),
	)
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobs = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
	)
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobs, s, s.engine, s.leaderboard,
		workerpool.WithResults(s),
	)
	s.workerPool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "fantasy service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("format", string(s.format)),
		logger.String("tableVersion", s.table.Version),
	)
	return nil
}

// Stop drains the scoring queue and shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	pool, store, cancel := s.workerPool, s.leaderboard, s.cancel
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping fantasy service...")

	// Workers read the registries while draining, so the lock is not held here.
	if err := pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	_ = store.Close()
	cancel()

	s.logger.Info(ctx, "fantasy service stopped")
}

// Quota returns the roster constraints in force.
func (s *Service) Quota() model.RoleQuota {
	return s.quota
}

// PointsTable returns a copy of the points table rosters are scored with.
func (s *Service) PointsTable() pointstable.Table {
	return s.table.Clone()
}

// CheckAdd reports whether candidate may join sel. Adding a player who is
// already selected is a caller error, not a denial.
func (s *Service) CheckAdd(ctx context.Context, sel model.RosterSelection, candidate model.Player) (roster.Decision, error) {
	if sel.Contains(candidate.ID) {
		metrics.RecordRosterCheck(checkAdd, "error")
		return roster.Decision{}, fmt.Errorf("check add %s: %w", candidate.ID, roster.ErrAlreadyInRoster)
	}
	d := roster.CanAdd(sel, candidate, s.quota, roster.BudgetRemaining(sel, s.quota))
	metrics.RecordRosterCheck(checkAdd, outcome(d))
	s.logger.Debug(ctx, "add checked",
		logger.String("player_id", candidate.ID),
		logger.String("outcome", outcome(d)),
	)
	return d, nil
}

// CheckRemove reports whether playerID may leave sel.
func (s *Service) CheckRemove(_ context.Context, sel model.RosterSelection, playerID string) roster.Decision {
	d := roster.CanRemove(sel, playerID)
	metrics.RecordRosterCheck(checkRemove, outcome(d))
	return d
}

// Validate lists every constraint sel violates as a finalized roster.
func (s *Service) Validate(_ context.Context, sel model.RosterSelection) roster.Result {
	res := roster.ValidateFinal(sel, s.quota)
	if res.Valid() {
		metrics.RecordRosterCheck(checkValidate, "valid")
	} else {
		metrics.RecordRosterCheck(checkValidate, "invalid")
	}
	return res
}

// SubmitRoster registers a finalized roster for its match. A roster without
// an id gets a new one. A submitted roster is immutable: re-submitting the
// same selection returns the registered roster, anything else conflicts.
// When the match already has a scorecard, the roster is queued for scoring.
func (s *Service) SubmitRoster(ctx context.Context, r model.Roster) (model.Roster, roster.Result, error) {
	const op = "submit roster"
	if strings.TrimSpace(r.MatchID) == "" {
		metrics.RecordRosterSubmission("rejected")
		return r, roster.Result{}, fmt.Errorf("%s: %w", op, ErrMissingMatch)
	}
	res := roster.ValidateFinal(r.Selection, s.quota)
	if !res.Valid() {
		metrics.RecordRosterSubmission("rejected")
		return r, res, fmt.Errorf("%s: %w", op, ErrInvalidRoster)
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.Selection = r.Selection.Clone()
	r.SubmittedAt = time.Now().UTC()

	s.mu.Lock()
	if prev, known := s.rosters[r.ID]; known {
		s.mu.Unlock()
		if prev.MatchID == r.MatchID && prev.Selection.Equal(r.Selection) {
			metrics.RecordRosterSubmission("duplicate")
			return prev, res, nil
		}
		metrics.RecordRosterSubmission("conflict")
		if prev.MatchID != r.MatchID {
			return r, res, fmt.Errorf("%s %s: registered for match %s: %w", op, r.ID, prev.MatchID, ErrRosterConflict)
		}
		return r, res, fmt.Errorf("%s %s: selection already submitted: %w", op, r.ID, ErrRosterConflict)
	}
	s.entries[r.MatchID] = append(s.entries[r.MatchID], r.ID)
	s.rosters[r.ID] = r
	_, scorable := s.sheets[r.MatchID]
	s.mu.Unlock()

	metrics.RecordRosterSubmission("accepted")
	s.logger.Info(ctx, "roster submitted",
		logger.String("roster_id", r.ID),
		logger.String("match_id", r.MatchID),
	)

	if scorable {
		if err := s.enqueue(ctx, r.MatchID, r.ID); err != nil {
			// The next scorecard revision rescores every roster of the match.
			s.logger.Warn(ctx, "roster not queued for scoring",
				logger.String("roster_id", r.ID),
				logger.Error(err),
			)
		}
	}
	return r, res, nil
}

// Roster returns a registered roster.
func (s *Service) Roster(_ context.Context, rosterID string) (model.Roster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rosters[rosterID]
	if !ok {
		return model.Roster{}, fmt.Errorf("roster %s: %w", rosterID, ErrRosterNotFound)
	}
	return r, nil
}

// PublishPerformances stores a scorecard revision and queues every roster
// of the match for rescoring. A revision already seen is acknowledged as a
// duplicate without any work. On backpressure the revision is forgotten so
// the publisher can retry it.
func (s *Service) PublishPerformances(ctx context.Context, sc model.Scorecard) (Publication, error) {
	const op = "publish performances"
	pub := Publication{MatchID: sc.MatchID, Revision: sc.Revision}

	switch {
	case strings.TrimSpace(sc.MatchID) == "":
		metrics.RecordPerformancePublication("malformed")
		return pub, fmt.Errorf("%s: %w", op, ErrMissingMatch)
	case sc.Revision < 1:
		metrics.RecordPerformancePublication("malformed")
		return pub, fmt.Errorf("%s for match %s: %w", op, sc.MatchID, ErrInvalidRevision)
	}
	if err := stats.ValidateAll(s.format, sc.Performances); err != nil {
		metrics.RecordPerformancePublication("malformed")
		return pub, fmt.Errorf("%s for match %s: %w", op, sc.MatchID, err)
	}

	s.mu.RLock()
	deduper := s.deduper
	s.mu.RUnlock()
	if deduper == nil {
		return pub, fmt.Errorf("%s: %w", op, ErrNotStarted)
	}

	key := dedupe.Key(sc.MatchID, sc.Revision)
	if deduper.SeenAndRecord(ctx, key) {
		metrics.RecordPerformancePublication("duplicate")
		pub.Duplicate = true
		return pub, nil
	}

	s.mu.Lock()
	if cur, ok := s.sheets[sc.MatchID]; ok && cur.revision > sc.Revision {
		s.mu.Unlock()
		deduper.Unrecord(ctx, key)
		metrics.RecordPerformancePublication("stale")
		return pub, fmt.Errorf("%s for match %s: revision %d < %d: %w", op, sc.MatchID, sc.Revision, cur.revision, ErrStaleRevision)
	}
	s.sheets[sc.MatchID] = sheet{
		revision: sc.Revision,
		perfs:    sc.ByPlayer(),
	}
	ids := slices.Clone(s.entries[sc.MatchID])
	s.mu.Unlock()

	metrics.RecordPerformancesIngested(len(sc.Performances))

	for _, id := range ids {
		if err := s.enqueue(ctx, sc.MatchID, id); err != nil {
			deduper.Unrecord(ctx, key)
			if errors.Is(err, queue.ErrFull) {
				metrics.RecordPerformancePublication("backpressure")
				return pub, fmt.Errorf("%s for match %s: %w: %w", op, sc.MatchID, ErrBackpressure, err)
			}
			metrics.RecordPerformancePublication("error")
			return pub, fmt.Errorf("%s for match %s: %w", op, sc.MatchID, err)
		}
		pub.Jobs++
	}

	metrics.RecordPerformancePublication("accepted")
	s.logger.Info(ctx, "scorecard published",
		logger.String("match_id", sc.MatchID),
		logger.Int("revision", int(sc.Revision)),
		logger.Int("performances", len(sc.Performances)),
		logger.Int("jobs", pub.Jobs),
	)
	return pub, nil
}

func (s *Service) enqueue(ctx context.Context, matchID, rosterID string) error {
	s.mu.RLock()
	q := s.jobs
	s.mu.RUnlock()
	if q == nil {
		return ErrNotStarted
	}
	return q.Enqueue(ctx, model.ScoreJob{
		JobID:    uuid.NewString(),
		MatchID:  matchID,
		RosterID: rosterID,
	})
}

// ScoreInput loads a roster and the latest scorecard of its match. It is
// the source the scoring workers read from.
func (s *Service) ScoreInput(_ context.Context, matchID, rosterID string) (scoring.Input, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rosters[rosterID]
	if !ok || r.MatchID != matchID {
		return scoring.Input{}, fmt.Errorf("roster %s in match %s: %w", rosterID, matchID, ErrRosterNotFound)
	}
	sh, ok := s.sheets[matchID]
	if !ok {
		return scoring.Input{}, fmt.Errorf("match %s: %w", matchID, ErrNoScorecard)
	}
	return scoring.Input{
		RosterID:     r.ID,
		MatchID:      r.MatchID,
		Selection:    r.Selection,
		Performances: sh.perfs,
		Revision:     sh.revision,
	}, nil
}

// SaveScore keeps the latest scored view of a roster. A result computed
// from a superseded scorecard is discarded and the roster is queued again,
// since the stale total may have reached the leaderboard after a newer one.
func (s *Service) SaveScore(ctx context.Context, sr model.ScoredRoster) {
	s.mu.Lock()
	current := s.sheets[sr.MatchID].revision
	stale := sr.Revision < current
	if !stale {
		if prev, ok := s.scores[sr.RosterID]; !ok || prev.Revision <= sr.Revision {
			s.scores[sr.RosterID] = sr
		}
	}
	s.mu.Unlock()

	if !stale {
		return
	}
	s.logger.Debug(ctx, "stale score, rescoring",
		logger.String("roster_id", sr.RosterID),
		logger.Int("revision", int(sr.Revision)),
		logger.Int("current", int(current)),
	)
	if err := s.enqueue(ctx, sr.MatchID, sr.RosterID); err != nil {
		metrics.RecordErrorByComponent("service", "requeue_failed")
		s.logger.Warn(ctx, "stale score not requeued",
			logger.String("roster_id", sr.RosterID),
			logger.Error(err),
		)
	}
}

// Score computes a roster's points against the latest scorecard of its
// match.
func (s *Service) Score(ctx context.Context, rosterID string) (model.ScoredRoster, error) {
	s.mu.RLock()
	r, ok := s.rosters[rosterID]
	engine := s.engine
	s.mu.RUnlock()

	if !ok {
		return model.ScoredRoster{}, fmt.Errorf("score %s: %w", rosterID, ErrRosterNotFound)
	}
	if engine == nil {
		return model.ScoredRoster{}, fmt.Errorf("score %s: %w", rosterID, ErrNotStarted)
	}
	in, err := s.ScoreInput(ctx, r.MatchID, rosterID)
	if err != nil {
		return model.ScoredRoster{}, fmt.Errorf("score %s: %w", rosterID, err)
	}
	return engine.Score(ctx, in)
}

// LastScore returns the result the workers last published for a roster.
func (s *Service) LastScore(_ context.Context, rosterID string) (model.ScoredRoster, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sr, ok := s.scores[rosterID]
	return sr, ok
}

// TopN returns the top n leaderboard entries of a match.
func (s *Service) TopN(ctx context.Context, matchID string, n int) ([]model.LeaderboardEntry, error) {
	store, err := s.store()
	if err != nil {
		return nil, err
	}
	return store.TopN(ctx, matchID, n)
}

// Rank returns a roster's rank and points in a match.
func (s *Service) Rank(ctx context.Context, matchID, rosterID string) (model.LeaderboardEntry, error) {
	store, err := s.store()
	if err != nil {
		return model.LeaderboardEntry{}, err
	}
	return store.Rank(ctx, matchID, rosterID)
}

func (s *Service) store() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.leaderboard == nil {
		return nil, ErrNotStarted
	}
	return s.leaderboard, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	out := map[string]any{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"format":        string(s.format),
		"tableVersion":  s.table.Version,
		"rosters":       len(s.rosters),
		"matches":       len(s.entries),
		"scorecards":    len(s.sheets),
		"scoredRosters": len(s.scores),
	}

	if s.started {
		queueLen := s.jobs.Len(ctx)
		ranked := 0
		for _, id := range s.leaderboard.Matches(ctx) {
			ranked += s.leaderboard.Count(ctx, id)
		}
		out["queueLength"] = queueLen
		out["rankedRosters"] = ranked
		out["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateLeaderboardRosters(ranked)
		metrics.UpdateWorkerCount(s.workerPool.Size())
	}
	return out
}

func outcome(d roster.Decision) string {
	if d.Allowed {
		return "allowed"
	}
	return string(d.Reason)
}
