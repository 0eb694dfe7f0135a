package simulate

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/internal/domain/roster"
	"github.com/okian/wicket/internal/domain/stats"
)

// ErrNoLegalRoster is returned when no legal roster could be drawn from a pool.
var ErrNoLegalRoster = errors.New("no legal roster found in pool")

// Generator draws player pools, legal rosters and plausible scorecards.
// Pools, selections and statistics depend only on the seed; roster ids are
// random uuids so repeated runs never collide on the service.
type Generator struct {
	rng    *rand.Rand
	quota  model.RoleQuota
	format stats.Format
}

// NewGenerator creates a generator for quota and format.
func NewGenerator(seed uint64, quota model.RoleQuota, format stats.Format) *Generator {
	return &Generator{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		quota:  quota,
		format: format,
	}
}

// Pool returns the players available for matchID.
func (g *Generator) Pool(matchID string) []model.Player {
	var pool []model.Player
	for _, team := range teams {
		n := 0
		for _, shape := range teamShape {
			for range shape.count {
				n++
				pool = append(pool, model.Player{
					ID:    fmt.Sprintf("%s-%s-%02d", matchID, strings.ToLower(team), n),
					Name:  fmt.Sprintf("%s %s %d", team, shape.role, n),
					Role:  shape.role,
					Price: int64(minPrice + g.rng.IntN(maxPrice-minPrice+1)),
					Team:  team,
				})
			}
		}
	}
	return pool
}

// Roster draws a legal roster for matchID from pool. Players are added one
// at a time through roster.Add, the way a client builds a team.
func (g *Generator) Roster(matchID, owner string, pool []model.Player) (model.Roster, error) {
	if g.quota.RosterSize < 2 {
		return model.Roster{}, fmt.Errorf("%w: roster size %d leaves no vice-captain", ErrNoLegalRoster, g.quota.RosterSize)
	}
	for range maxBuildAttempts {
		sel, ok := g.draw(pool)
		if !ok {
			continue
		}
		n := sel.Len()
		c := g.rng.IntN(n)
		v := (c + 1 + g.rng.IntN(n-1)) % n
		sel, _ = roster.SetCaptain(sel, sel.Players[c].ID)
		sel, _ = roster.SetViceCaptain(sel, sel.Players[v].ID)
		if roster.ValidateFinal(sel, g.quota).Valid() {
			return model.Roster{
				ID:        uuid.NewString(),
				MatchID:   matchID,
				Owner:     owner,
				Selection: sel,
			}, nil
		}
	}
	return model.Roster{}, fmt.Errorf("%w: match %s", ErrNoLegalRoster, matchID)
}

func (g *Generator) draw(pool []model.Player) (model.RosterSelection, bool) {
	var sel model.RosterSelection
	order := g.rng.Perm(len(pool))

	// Role minimums first, then anyone who still fits.
	for _, role := range model.Roles() {
		for _, i := range order {
			if sel.RoleCount(role) >= g.quota.Min[role] {
				break
			}
			if pool[i].Role == role {
				sel = g.tryAdd(sel, pool[i])
			}
		}
	}
	for _, i := range order {
		if sel.Len() >= g.quota.RosterSize {
			break
		}
		sel = g.tryAdd(sel, pool[i])
	}
	return sel, sel.Len() == g.quota.RosterSize
}

// tryAdd adds p when allowed and when the budget left still covers the
// open slots at the cheapest price.
func (g *Generator) tryAdd(sel model.RosterSelection, p model.Player) model.RosterSelection {
	if sel.Contains(p.ID) {
		return sel
	}
	next, d := roster.Add(sel, p, g.quota)
	if !d.Allowed {
		return sel
	}
	open := int64(g.quota.RosterSize - next.Len())
	if roster.BudgetRemaining(next, g.quota) < open*minPrice {
		return sel
	}
	return next
}

// Scorecard returns a revision of statistics for every player of pool.
// Roughly one player in twelve did not play and is left out.
func (g *Generator) Scorecard(matchID string, revision int64, pool []model.Player) model.Scorecard {
	sc := model.Scorecard{MatchID: matchID, Revision: revision}
	for _, p := range pool {
		if g.rng.IntN(12) == 0 {
			continue
		}
		sc.Performances = append(sc.Performances, g.performance(p))
	}
	return sc
}

func (g *Generator) performance(p model.Player) model.MatchPerformance {
	perf := model.MatchPerformance{PlayerID: p.ID, Role: p.Role}

	runs := g.rng.IntN(maxRuns + 1)
	perf.Runs = runs
	perf.Fours = g.rng.IntN(runs/8 + 1)
	perf.Sixes = g.rng.IntN((runs-4*perf.Fours)/12 + 1)
	perf.BallsFaced = runs/2 + g.rng.IntN(runs+6)
	perf.Dismissed = g.rng.IntN(3) > 0

	if p.Role == model.Bowler || p.Role == model.AllRounder {
		limit := g.format.BowlerOvers()
		if limit == 0 {
			limit = defaultMaxOvers
		}
		perf.Overs.Complete = g.rng.IntN(limit + 1)
		if perf.Overs.Complete < limit {
			perf.Overs.Balls = g.rng.IntN(model.BallsPerOver)
		}
		if balls := perf.Overs.TotalBalls(); balls > 0 {
			perf.Wickets = g.rng.IntN(maxWickets + 1)
			perf.BowledOrLBW = g.rng.IntN(perf.Wickets + 1)
			perf.Maidens = min(g.rng.IntN(2), perf.Overs.Complete)
			perf.RunsConceded = balls * (3 + g.rng.IntN(10)) / model.BallsPerOver
		}
	}

	perf.Catches = g.rng.IntN(3)
	if p.Role == model.WicketKeeper {
		perf.Stumpings = g.rng.IntN(2)
	}
	if g.rng.IntN(10) == 0 {
		perf.DirectRunOuts = 1
	}
	if g.rng.IntN(10) == 0 {
		perf.IndirectRunOuts = 1
	}
	return perf
}
