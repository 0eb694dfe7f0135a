package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func pts(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestStore(t *testing.T, opts ...Option) *TreapStore {
	t.Helper()
	store := NewTreapStore(context.Background(), opts...)
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return store
}

func TestTreapStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if count := store.Count(ctx, "m1"); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	if err := store.Upsert(ctx, "m1", "r1", pts("154")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count := store.Count(ctx, "m1"); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	entry, err := store.Rank(ctx, "m1", "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 1 {
		t.Errorf("expected rank 1, got %d", entry.Rank)
	}
	if !entry.Points.Equal(pts("154")) {
		t.Errorf("expected 154 points, got %s", entry.Points)
	}

	entries, err := store.TopN(ctx, "m1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].RosterID != "r1" {
		t.Errorf("unexpected top entries: %+v", entries)
	}
}

func TestTreapStore_UpsertReplaces(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_ = store.Upsert(ctx, "m1", "r1", pts("90"))
	_ = store.Upsert(ctx, "m1", "r2", pts("80"))

	// A corrected performance can lower a total.
	if err := store.Upsert(ctx, "m1", "r1", pts("70.5")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entry, _ := store.Rank(ctx, "m1", "r1")
	if entry.Rank != 2 || !entry.Points.Equal(pts("70.5")) {
		t.Errorf("expected rank 2 with 70.5, got %+v", entry)
	}
	if store.Count(ctx, "m1") != 2 {
		t.Errorf("expected 2 rosters after replace, got %d", store.Count(ctx, "m1"))
	}

	// Same total twice is a no-op.
	_ = store.Upsert(ctx, "m1", "r1", pts("70.50"))
	if store.Count(ctx, "m1") != 2 {
		t.Errorf("expected 2 rosters, got %d", store.Count(ctx, "m1"))
	}
}

func TestTreapStore_TiesShareDenseRank(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_ = store.Upsert(ctx, "m1", "c", pts("100"))
	_ = store.Upsert(ctx, "m1", "a", pts("100"))
	_ = store.Upsert(ctx, "m1", "b", pts("120.5"))
	_ = store.Upsert(ctx, "m1", "d", pts("99"))

	entries, err := store.TopN(ctx, "m1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		id   string
		rank int
	}{{"b", 1}, {"a", 2}, {"c", 2}, {"d", 3}}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, w := range want {
		if entries[i].RosterID != w.id || entries[i].Rank != w.rank {
			t.Errorf("position %d: expected %s rank %d, got %s rank %d", i, w.id, w.rank, entries[i].RosterID, entries[i].Rank)
		}
	}

	entry, _ := store.Rank(ctx, "m1", "d")
	if entry.Rank != 3 {
		t.Errorf("expected dense rank 3 for d, got %d", entry.Rank)
	}

	// Removing one of the tied rosters keeps the level; removing both drops it.
	_ = store.Remove(ctx, "m1", "a")
	if e, _ := store.Rank(ctx, "m1", "d"); e.Rank != 3 {
		t.Errorf("expected d to stay rank 3, got %d", e.Rank)
	}
	_ = store.Remove(ctx, "m1", "c")
	if e, _ := store.Rank(ctx, "m1", "d"); e.Rank != 2 {
		t.Errorf("expected d to move to rank 2, got %d", e.Rank)
	}
}

func TestTreapStore_MatchesAreIsolated(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_ = store.Upsert(ctx, "m2", "r1", pts("10"))
	_ = store.Upsert(ctx, "m1", "r1", pts("20"))

	if got := store.Matches(ctx); fmt.Sprint(got) != "[m1 m2]" {
		t.Errorf("expected [m1 m2], got %v", got)
	}
	e1, _ := store.Rank(ctx, "m1", "r1")
	e2, _ := store.Rank(ctx, "m2", "r1")
	if !e1.Points.Equal(pts("20")) || !e2.Points.Equal(pts("10")) {
		t.Errorf("match totals leaked: %s %s", e1.Points, e2.Points)
	}

	if err := store.Remove(ctx, "m2", "r1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Matches(ctx); len(got) != 1 || got[0] != "m1" {
		t.Errorf("expected empty board to be dropped, got %v", got)
	}
}

func TestTreapStore_EdgeCases(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Rank(ctx, "m1", "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown match, got %v", err)
	}
	_ = store.Upsert(ctx, "m1", "r1", pts("1"))
	if _, err := store.Rank(ctx, "m1", "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown roster, got %v", err)
	}
	if err := store.Remove(ctx, "m1", "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on remove, got %v", err)
	}
	if _, err := store.TopN(ctx, "m1", 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	entries, err := store.TopN(ctx, "unknown", 5)
	if err != nil || len(entries) != 0 {
		t.Errorf("expected empty list for unknown match, got %v %v", entries, err)
	}

	// Negative totals (a duck-heavy roster) rank last.
	_ = store.Upsert(ctx, "m1", "r2", pts("-4"))
	if e, _ := store.Rank(ctx, "m1", "r2"); e.Rank != 2 {
		t.Errorf("expected negative total to rank 2, got %d", e.Rank)
	}
}

func TestTreapStore_FixedPoint(t *testing.T) {
	cases := []string{"0", "154", "115.5", "-2", "357.25"}
	for _, c := range cases {
		if got := toDecimal(toFixedPoint(pts(c))); !got.Equal(pts(c)) {
			t.Errorf("round trip %s: got %s", c, got)
		}
	}
}

func TestTreapStore_ExactForTwoPlaceMultipliers(t *testing.T) {
	for _, m := range []string{"1.5", "1.25", "2.05", "0.99"} {
		for base := int64(-5); base <= 60; base++ {
			total := decimal.NewFromInt(base).Mul(pts(m))
			if got := toDecimal(toFixedPoint(total)); !got.Equal(total) {
				t.Errorf("%d x %s: stored %s, want %s", base, m, got, total)
			}
		}
	}
}

func TestTreapStore_MatchesSortedReference(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	rng := rand.New(rand.NewSource(7))

	totals := make(map[string]int64)
	for i := 0; i < 2000; i++ {
		id := fmt.Sprintf("r%03d", rng.Intn(500))
		v := int64(rng.Intn(60)) * 5 // plenty of ties
		totals[id] = v
		_ = store.Upsert(ctx, "m1", id, decimal.NewFromInt(v))
	}

	ids := make([]string, 0, len(totals))
	for id := range totals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if totals[ids[i]] != totals[ids[j]] {
			return totals[ids[i]] > totals[ids[j]]
		}
		return ids[i] < ids[j]
	})

	entries, err := store.TopN(ctx, "m1", len(ids))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rank := 0
	var prev int64 = -1
	for i, id := range ids {
		if totals[id] != prev {
			rank++
			prev = totals[id]
		}
		if entries[i].RosterID != id || entries[i].Rank != rank {
			t.Fatalf("position %d: expected %s rank %d, got %s rank %d", i, id, rank, entries[i].RosterID, entries[i].Rank)
		}
		if e, _ := store.Rank(ctx, "m1", id); e.Rank != rank {
			t.Fatalf("Rank(%s): expected %d, got %d", id, rank, e.Rank)
		}
	}
}

func TestTreapStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id := fmt.Sprintf("r%d-%d", w, i%50)
				_ = store.Upsert(ctx, "m1", id, decimal.NewFromInt(int64(i)))
				_, _ = store.TopN(ctx, "m1", 10)
				_, _ = store.Rank(ctx, "m1", id)
			}
		}(w)
	}
	wg.Wait()

	if count := store.Count(ctx, "m1"); count != 400 {
		t.Errorf("expected 400 rosters, got %d", count)
	}
}

func TestTreapStore_PeriodicSnapshots(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t,
		WithSnapshotInterval(10*time.Millisecond),
		WithTopCacheSize(2),
		WithMetricsUpdateInterval(10*time.Millisecond),
	)

	_ = store.Upsert(ctx, "m1", "r1", pts("100"))
	_ = store.Upsert(ctx, "m1", "r2", pts("200"))
	_ = store.Upsert(ctx, "m1", "r3", pts("150"))

	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := store.Snapshot()
		if snap != nil && snap.Boards["m1"].Count == 3 {
			top := snap.Boards["m1"].Top
			if len(top) != 2 || top[0].RosterID != "r2" || top[1].RosterID != "r3" {
				t.Errorf("unexpected top cache: %+v", top)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("snapshot never caught up")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestTreapStore_CloseBehavior(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(ctx)
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := store.Upsert(ctx, "m1", "r1", pts("1")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func BenchmarkTreapStore_Upsert(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore(ctx)
	defer store.Close()
	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Upsert(ctx, "m1", fmt.Sprintf("r%d", rng.Intn(100_000)), decimal.NewFromInt(int64(rng.Intn(500))))
	}
}

func BenchmarkTreapStore_TopN(b *testing.B) {
	ctx := context.Background()
	store := NewTreapStore(ctx)
	defer store.Close()
	for i := 0; i < 100_000; i++ {
		_ = store.Upsert(ctx, "m1", fmt.Sprintf("r%d", i), decimal.NewFromInt(int64(i%700)))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.TopN(ctx, "m1", 100)
	}
}
