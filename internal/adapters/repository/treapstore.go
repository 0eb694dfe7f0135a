package repository

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/internal/domain/pointstable"
	"github.com/okian/wicket/pkg/metrics"
	"github.com/shopspring/decimal"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: points DESC, then rosterID ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the leaderboard
// from best to worst. Rosters with equal points share a dense rank.

// pointsScale is the fixed-point scale of stored totals. Validated tables
// limit multipliers to this many places, so totals are stored exactly.
const pointsScale = pointstable.MultiplierPlaces

type pointsFP int64

func toFixedPoint(d decimal.Decimal) pointsFP {
	return pointsFP(d.Round(pointsScale).Shift(pointsScale).IntPart())
}

func toDecimal(x pointsFP) decimal.Decimal {
	return decimal.New(int64(x), -pointsScale)
}

// BoardSnapshot is an immutable view of one match leaderboard.
type BoardSnapshot struct {
	Count int
	Top   []model.LeaderboardEntry
}

// Snapshot is an immutable view of every board, published periodically.
type Snapshot struct {
	Boards      map[string]BoardSnapshot
	PublishedAt time.Time
}

type node struct {
	id     string
	points pointsFP
	prio   uint64
	left   *node
	right  *node
	size   int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aPoints, aID) should appear before (bPoints, bID).
func less(aPoints pointsFP, aID string, bPoints pointsFP, bID string) bool {
	if aPoints != bPoints {
		return aPoints > bPoints
	}
	return aID < bID
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id string, points pointsFP) *node {
	if n == nil {
		return &node{id: id, points: points, prio: rand.Uint64(), size: 1} //nolint:gosec // treap balance only
	}
	if less(points, id, n.points, n.id) {
		n.left = insert(n.left, id, points)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, points)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id string, points pointsFP) *node {
	if n == nil {
		return nil
	}
	switch {
	case points == n.points && id == n.id:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, points)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, points)
		}
	case less(points, id, n.points, n.id):
		n.left = deleteNode(n.left, id, points)
	default:
		n.right = deleteNode(n.right, id, points)
	}
	fix(n)
	return n
}

// board is one match leaderboard. levels holds the distinct totals in
// descending order so a dense rank is a binary search.
type board struct {
	root   *node
	byID   map[string]pointsFP
	levels []pointsFP
	counts map[pointsFP]int
}

func newBoard() *board {
	return &board{byID: make(map[string]pointsFP), counts: make(map[pointsFP]int)}
}

func (b *board) levelIndex(p pointsFP) int {
	return sort.Search(len(b.levels), func(i int) bool { return b.levels[i] <= p })
}

func (b *board) denseRank(p pointsFP) int { return b.levelIndex(p) + 1 }

func (b *board) addLevel(p pointsFP) {
	b.counts[p]++
	if b.counts[p] > 1 {
		return
	}
	i := b.levelIndex(p)
	b.levels = append(b.levels, 0)
	copy(b.levels[i+1:], b.levels[i:])
	b.levels[i] = p
}

func (b *board) dropLevel(p pointsFP) {
	b.counts[p]--
	if b.counts[p] > 0 {
		return
	}
	delete(b.counts, p)
	i := b.levelIndex(p)
	b.levels = append(b.levels[:i], b.levels[i+1:]...)
}

func (b *board) set(id string, p pointsFP) {
	if old, ok := b.byID[id]; ok {
		if old == p {
			return
		}
		b.root = deleteNode(b.root, id, old)
		b.dropLevel(old)
	}
	b.byID[id] = p
	b.root = insert(b.root, id, p)
	b.addLevel(p)
}

func (b *board) remove(id string) bool {
	old, ok := b.byID[id]
	if !ok {
		return false
	}
	delete(b.byID, id)
	b.root = deleteNode(b.root, id, old)
	b.dropLevel(old)
	return true
}

// top appends up to limit entries in rank order.
func (b *board) top(n *node, limit int, out *[]model.LeaderboardEntry) {
	if n == nil || len(*out) >= limit {
		return
	}
	b.top(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, model.LeaderboardEntry{
			Rank:     b.denseRank(n.points),
			RosterID: n.id,
			Points:   toDecimal(n.points),
		})
	}
	b.top(n.right, limit, out)
}

// TreapStore implements Store with one treap per match.
type TreapStore struct {
	mu     sync.RWMutex
	boards map[string]*board
	closed bool

	snapshotInterval      time.Duration
	topCacheSize          int
	metricsUpdateInterval time.Duration

	snapshot atomic.Pointer[Snapshot]

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewTreapStore constructs a store and starts its background snapshot and
// metrics loops. They stop when ctx is done or Close is called.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		boards:                make(map[string]*board),
		snapshotInterval:      time.Second,
		topCacheSize:          100,
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.PublishSnapshot()
	s.every(ctx, s.snapshotInterval, s.PublishSnapshot)
	s.every(ctx, s.metricsUpdateInterval, s.updateMetrics)
	return s
}

func (s *TreapStore) every(ctx context.Context, interval time.Duration, fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Close stops the background loops. Writes after Close fail with ErrClosed.
func (s *TreapStore) Close() error {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
	})
	s.wg.Wait()
	return nil
}

// Upsert implements Store.Upsert in O(log n) expected time.
func (s *TreapStore) Upsert(ctx context.Context, matchID, rosterID string, points decimal.Decimal) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	b, ok := s.boards[matchID]
	if !ok {
		b = newBoard()
		s.boards[matchID] = b
	}
	b.set(rosterID, toFixedPoint(points))
	return nil
}

// Remove implements Store.Remove.
func (s *TreapStore) Remove(ctx context.Context, matchID, rosterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	b, ok := s.boards[matchID]
	if !ok || !b.remove(rosterID) {
		return ErrNotFound
	}
	if len(b.byID) == 0 {
		delete(s.boards, matchID)
	}
	return nil
}

// Rank implements Store.Rank in O(log n).
func (s *TreapStore) Rank(ctx context.Context, matchID, rosterID string) (model.LeaderboardEntry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boards[matchID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.LeaderboardEntry{}, ErrNotFound
	}
	p, ok := b.byID[rosterID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.LeaderboardEntry{}, ErrNotFound
	}
	return model.LeaderboardEntry{Rank: b.denseRank(p), RosterID: rosterID, Points: toDecimal(p)}, nil
}

// TopN implements Store.TopN. An unknown match yields an empty list.
func (s *TreapStore) TopN(ctx context.Context, matchID string, n int) ([]model.LeaderboardEntry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boards[matchID]
	if !ok {
		return []model.LeaderboardEntry{}, nil
	}
	out := make([]model.LeaderboardEntry, 0, min(n, len(b.byID)))
	b.top(b.root, n, &out)
	return out, nil
}

// Count implements Store.Count.
func (s *TreapStore) Count(ctx context.Context, matchID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b, ok := s.boards[matchID]; ok {
		return len(b.byID)
	}
	return 0
}

// Matches implements Store.Matches. Ids are sorted.
func (s *TreapStore) Matches(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.boards))
	for id := range s.boards {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns the most recently published snapshot. It may lag
// writes by up to the snapshot interval.
func (s *TreapStore) Snapshot() *Snapshot {
	return s.snapshot.Load()
}

// PublishSnapshot rebuilds and publishes a snapshot now.
func (s *TreapStore) PublishSnapshot() {
	start := time.Now()

	s.mu.RLock()
	snap := &Snapshot{Boards: make(map[string]BoardSnapshot, len(s.boards))}
	for id, b := range s.boards {
		top := make([]model.LeaderboardEntry, 0, min(s.topCacheSize, len(b.byID)))
		b.top(b.root, s.topCacheSize, &top)
		snap.Boards[id] = BoardSnapshot{Count: len(b.byID), Top: top}
	}
	s.mu.RUnlock()

	snap.PublishedAt = time.Now()
	s.snapshot.Store(snap)

	metrics.RecordRepositorySnapshotRebuildDuration(float64(time.Since(start).Microseconds()) / 1000)
	metrics.UpdateRepositorySnapshotLastUnix(float64(snap.PublishedAt.Unix()))
	metrics.IncrementRepositorySnapshotCount()
}

func (s *TreapStore) updateMetrics() {
	s.mu.RLock()
	matches, rosters := len(s.boards), 0
	for _, b := range s.boards {
		rosters += len(b.byID)
	}
	s.mu.RUnlock()

	metrics.UpdateLeaderboardMatches(matches)
	metrics.UpdateLeaderboardRosters(rosters)
}
