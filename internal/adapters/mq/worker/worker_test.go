package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/wicket/internal/adapters/mq/queue"
	worker "github.com/okian/wicket/internal/adapters/mq/worker"
	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/internal/domain/pointstable"
	"github.com/okian/wicket/internal/domain/scoring"
	"github.com/shopspring/decimal"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	jobs chan queue.Job
}

func newMockQueue() *mockQueue { return &mockQueue{jobs: make(chan queue.Job, 10)} }

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Job { return mq.jobs }

func (mq *mockQueue) Close() error {
	close(mq.jobs)
	return nil
}

// mockSource serves one roster per id, all sharing the same performances.
type mockSource struct {
	mu       sync.Mutex
	rosters  map[string]model.RosterSelection
	perfs    map[string]model.MatchPerformance
	failures map[string]error
}

func (s *mockSource) ScoreInput(ctx context.Context, matchID, rosterID string) (scoring.Input, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failures[rosterID]; ok {
		return scoring.Input{}, err
	}
	sel, ok := s.rosters[rosterID]
	if !ok {
		return scoring.Input{}, errors.New("unknown roster")
	}
	return scoring.Input{RosterID: rosterID, MatchID: matchID, Selection: sel, Performances: s.perfs}, nil
}

type mockUpdater struct {
	mu     sync.Mutex
	totals map[string]decimal.Decimal
	err    error
}

func (u *mockUpdater) Upsert(ctx context.Context, matchID, rosterID string, points decimal.Decimal) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return u.err
	}
	u.totals[matchID+"/"+rosterID] = points
	return nil
}

func (u *mockUpdater) total(key string) (decimal.Decimal, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	d, ok := u.totals[key]
	return d, ok
}

type collector struct {
	mu     sync.Mutex
	scored []model.ScoredRoster
	seen   chan struct{}
}

func (c *collector) SaveScore(ctx context.Context, sr model.ScoredRoster) {
	c.mu.Lock()
	c.scored = append(c.scored, sr)
	c.mu.Unlock()
	c.seen <- struct{}{}
}

func fixture() (*mockSource, *scoring.Engine) {
	engine, err := scoring.New(pointstable.Default())
	if err != nil {
		panic(err)
	}
	src := &mockSource{
		rosters: map[string]model.RosterSelection{
			"r1": {Players: []model.Player{{ID: "x", Role: model.Batsman}, {ID: "y", Role: model.Bowler}}, CaptainID: "x", ViceCaptainID: "y"},
			"r2": {Players: []model.Player{{ID: "x", Role: model.Batsman}, {ID: "y", Role: model.Bowler}}, CaptainID: "y", ViceCaptainID: "x"},
		},
		perfs: map[string]model.MatchPerformance{
			"x": {PlayerID: "x", Runs: 55, BallsFaced: 40, Fours: 6, Sixes: 2},
			"y": {PlayerID: "y", Overs: model.Overs{Complete: 4}, RunsConceded: 18, Wickets: 4, BowledOrLBW: 2},
		},
		failures: map[string]error{},
	}
	return src, engine
}

func waitFor(ch <-chan struct{}, n int) error {
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			return fmt.Errorf("timed out after %d of %d results", i, n)
		}
	}
	return nil
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker with a real scoring engine", t, func() {
		q := newMockQueue()
		src, engine := fixture()
		upd := &mockUpdater{totals: map[string]decimal.Decimal{}}
		sink := &collector{seen: make(chan struct{}, 10)}
		w := worker.NewInMemoryWorker(q, src, engine, upd, worker.WithName("w-test"), worker.WithResults(sink))

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When two roster jobs are queued", func() {
			q.jobs <- queue.Job{JobID: "j1", MatchID: "m1", RosterID: "r1"}
			q.jobs <- queue.Job{JobID: "j2", MatchID: "m1", RosterID: "r2"}
			convey.So(waitFor(sink.seen, 2), convey.ShouldBeNil)

			convey.Convey("Then each leaderboard total reflects its captaincy", func() {
				r1, ok := upd.total("m1/r1")
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(r1.Equal(decimal.NewFromInt(154+195)), convey.ShouldBeTrue)
				r2, _ := upd.total("m1/r2")
				convey.So(r2.Equal(decimal.RequireFromString("375.5")), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the source fails for one job", func() {
			src.mu.Lock()
			src.failures["r1"] = errors.New("roster store unavailable")
			src.mu.Unlock()
			q.jobs <- queue.Job{JobID: "j1", MatchID: "m1", RosterID: "r1"}
			q.jobs <- queue.Job{JobID: "j2", MatchID: "m1", RosterID: "r2"}
			convey.So(waitFor(sink.seen, 1), convey.ShouldBeNil)

			convey.Convey("Then the worker keeps going with the next job", func() {
				_, ok := upd.total("m1/r1")
				convey.So(ok, convey.ShouldBeFalse)
				_, ok = upd.total("m1/r2")
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When shut down", func() {
			err := w.Shutdown(context.Background())

			convey.Convey("Then it stops cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a failing leaderboard", t, func() {
		q := newMockQueue()
		src, engine := fixture()
		upd := &mockUpdater{totals: map[string]decimal.Decimal{}, err: errors.New("closed")}
		sink := &collector{seen: make(chan struct{}, 10)}
		w := worker.NewInMemoryWorker(q, src, engine, upd, worker.WithResults(sink))

		q.jobs <- queue.Job{JobID: "j1", MatchID: "m1", RosterID: "r1"}
		_ = q.Close()
		w.Run(context.Background())

		convey.Convey("Then no result is published", func() {
			convey.So(len(sink.scored), convey.ShouldEqual, 0)
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a pool over a real queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		src, engine := fixture()
		upd := &mockUpdater{totals: map[string]decimal.Decimal{}}
		sink := &collector{seen: make(chan struct{}, 100)}
		pool := worker.NewPool(4, q, src, engine, upd, worker.WithResults(sink))
		convey.So(pool.Size(), convey.ShouldEqual, 4)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		convey.Convey("When many jobs are processed and the pool shuts down", func() {
			for i := 0; i < 40; i++ {
				roster := "r1"
				if i%2 == 1 {
					roster = "r2"
				}
				convey.So(q.Enqueue(ctx, queue.Job{JobID: fmt.Sprint(i), MatchID: fmt.Sprintf("m%d", i), RosterID: roster}), convey.ShouldBeNil)
			}
			convey.So(waitFor(sink.seen, 40), convey.ShouldBeNil)
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)

			convey.Convey("Then every job reached the leaderboard", func() {
				upd.mu.Lock()
				defer upd.mu.Unlock()
				convey.So(len(upd.totals), convey.ShouldEqual, 40)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("A non-positive worker count falls back to the CPU count", t, func() {
		pool := worker.NewPool(0, newMockQueue(), nil, nil, nil)
		convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
	})
}
