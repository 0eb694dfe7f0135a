// Package scoring turns match performances into fantasy points using a
// points table. The engine is pure: the same performances, table and
// captaincy always produce the same totals.
package scoring

import (
	"context"
	"fmt"
	"slices"

	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/internal/domain/pointstable"
	"github.com/shopspring/decimal"
)

// Input is everything needed to score one roster for one match.
type Input struct {
	RosterID     string
	MatchID      string
	Selection    model.RosterSelection
	Performances map[string]model.MatchPerformance
	// Revision of the scorecard the performances came from.
	Revision int64
}

// Scorer computes a roster's points.
type Scorer interface {
	// Score computes a roster's points, honoring ctx for cancellation.
	Score(ctx context.Context, in Input) (model.ScoredRoster, error)
}

// Engine scores rosters against one points table. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	table       pointstable.Table
	captain     decimal.Decimal
	viceCaptain decimal.Decimal
	ceiling     decimal.Decimal
}

// New returns an engine for table. The table is copied and validated.
func New(table pointstable.Table) (*Engine, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	t := table.Clone()
	return &Engine{
		table:       t,
		captain:     decimal.NewFromFloat(t.Captain),
		viceCaptain: decimal.NewFromFloat(t.ViceCaptain),
		ceiling:     decimal.NewFromFloat(t.Economy.Ceiling),
	}, nil
}

// Table returns a copy of the engine's points table.
func (e *Engine) Table() pointstable.Table { return e.table.Clone() }

// BasePoints computes a player's points before any multiplier.
func (e *Engine) BasePoints(perf model.MatchPerformance) model.PlayerPoints {
	pp := model.PlayerPoints{
		PlayerID: perf.PlayerID,
		Batting:  e.batting(perf),
		Bowling:  e.bowling(perf),
		Fielding: e.fielding(perf),
	}
	pp.Base = pp.Batting + pp.Bowling + pp.Fielding
	pp.Multiplier = decimal.NewFromInt(1)
	pp.Final = decimal.NewFromInt(pp.Base)
	return pp
}

func (e *Engine) batting(p model.MatchPerformance) int64 {
	t := e.table
	pts := int64(p.Runs)*t.Run + int64(p.Fours)*t.Four + int64(p.Sixes)*t.Six
	pts += cumulative(t.BattingMilestones, p.Runs)
	if p.Runs == 0 && p.Dismissed && p.BallsFaced > 0 && !slices.Contains(t.DuckExemptRoles, p.Role) {
		pts += t.DuckPenalty
	}
	return pts
}

func (e *Engine) bowling(p model.MatchPerformance) int64 {
	t := e.table
	pts := int64(p.Wickets)*t.Wicket + int64(p.BowledOrLBW)*t.BowledOrLBW + int64(p.Maidens)*t.Maiden
	if t.CumulativeHauls {
		pts += cumulative(t.WicketHauls, p.Wickets)
	} else {
		pts += highest(t.WicketHauls, p.Wickets)
	}
	if e.economical(p) {
		pts += t.Economy.Bonus
	}
	return pts
}

// economical compares runs per over against the ceiling without dividing:
// runs/(balls/6) < ceiling  <=>  6*runs < ceiling*balls.
func (e *Engine) economical(p model.MatchPerformance) bool {
	balls := p.Overs.TotalBalls()
	// balls == 0 only matters when min_overs is 0.
	if balls == 0 || balls < e.table.Economy.MinOvers*model.BallsPerOver {
		return false
	}
	conceded := decimal.NewFromInt(int64(p.RunsConceded) * model.BallsPerOver)
	return conceded.LessThan(e.ceiling.Mul(decimal.NewFromInt(int64(balls))))
}

func (e *Engine) fielding(p model.MatchPerformance) int64 {
	t := e.table
	pts := int64(p.Catches)*t.Catch +
		int64(p.Stumpings)*t.Stumping +
		int64(p.DirectRunOuts)*t.DirectRunOut +
		int64(p.IndirectRunOuts)*t.IndirectRunOut
	return pts + cumulative(t.CatchMilestones, p.Catches)
}

// cumulative pays every tier whose threshold n reaches, each once.
func cumulative(tiers []pointstable.Milestone, n int) int64 {
	var sum int64
	for _, m := range tiers {
		if n >= m.Threshold {
			sum += m.Bonus
		}
	}
	return sum
}

// highest pays only the top tier n reaches.
func highest(tiers []pointstable.Milestone, n int) int64 {
	var best int64
	for _, m := range tiers {
		if n >= m.Threshold {
			best = m.Bonus
		}
	}
	return best
}

// Multiplier returns the captaincy multiplier for playerID in sel.
func (e *Engine) Multiplier(playerID string, sel model.RosterSelection) decimal.Decimal {
	switch playerID {
	case "":
		return decimal.NewFromInt(1)
	case sel.CaptainID:
		return e.captain
	case sel.ViceCaptainID:
		return e.viceCaptain
	}
	return decimal.NewFromInt(1)
}

// ScoreRoster scores every selected player and sums the result exactly.
// A player with no performance record scores zero. A performance without a
// role takes the role recorded in the selection.
func (e *Engine) ScoreRoster(rosterID, matchID string, sel model.RosterSelection, perfs map[string]model.MatchPerformance) model.ScoredRoster {
	out := model.ScoredRoster{
		RosterID:     rosterID,
		MatchID:      matchID,
		TableVersion: e.table.Version,
		Players:      make([]model.PlayerPoints, 0, sel.Len()),
		Total:        decimal.Zero,
	}
	for _, p := range sel.Players {
		var pp model.PlayerPoints
		perf, ok := perfs[p.ID]
		if ok {
			if perf.Role == "" {
				perf.Role = p.Role
			}
			perf.PlayerID = p.ID
			pp = e.BasePoints(perf)
		} else {
			pp = model.PlayerPoints{PlayerID: p.ID, DidNotPlay: true}
		}
		pp.Multiplier = e.Multiplier(p.ID, sel)
		pp.Final = decimal.NewFromInt(pp.Base).Mul(pp.Multiplier)
		out.Total = out.Total.Add(pp.Final)
		out.Players = append(out.Players, pp)
	}
	return out
}

// Score implements Scorer.
func (e *Engine) Score(ctx context.Context, in Input) (model.ScoredRoster, error) {
	if err := ctx.Err(); err != nil {
		return model.ScoredRoster{}, fmt.Errorf("score roster %s: %w", in.RosterID, err)
	}
	sr := e.ScoreRoster(in.RosterID, in.MatchID, in.Selection, in.Performances)
	sr.Revision = in.Revision
	return sr, nil
}
