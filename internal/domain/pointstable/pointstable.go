// Package pointstable holds the versioned mapping from match events to
// fantasy points. The scoring engine never embeds these values; it is
// always handed a Table.
package pointstable

import (
	"errors"
	"fmt"
	"sort"

	"github.com/okian/wicket/internal/domain/model"
	"github.com/shopspring/decimal"
)

// MultiplierPlaces is the most decimal places a captaincy multiplier may
// carry. Base points are integral, so every roster total is exact at this
// scale.
const MultiplierPlaces = 2

// Milestone pays Bonus once when a count reaches Threshold.
type Milestone struct {
	Threshold int   `koanf:"threshold" json:"threshold"`
	Bonus     int64 `koanf:"bonus" json:"bonus"`
}

// EconomyBonus rewards tight bowling spells.
type EconomyBonus struct {
	// MinOvers is the shortest spell (in complete overs) that qualifies.
	MinOvers int `koanf:"min_overs" json:"min_overs"`
	// Ceiling is the exclusive upper bound on runs conceded per over.
	Ceiling float64 `koanf:"ceiling" json:"ceiling"`
	Bonus   int64   `koanf:"bonus" json:"bonus"`
}

// Table is one version of the points rules.
type Table struct {
	Version string `koanf:"version" json:"version"`

	Run               int64        `koanf:"run" json:"run"`
	Four              int64        `koanf:"four" json:"four"`
	Six               int64        `koanf:"six" json:"six"`
	BattingMilestones []Milestone  `koanf:"batting_milestones" json:"batting_milestones"`
	DuckPenalty       int64        `koanf:"duck_penalty" json:"duck_penalty"`
	DuckExemptRoles   []model.Role `koanf:"duck_exempt_roles" json:"duck_exempt_roles"`

	Wicket      int64       `koanf:"wicket" json:"wicket"`
	BowledOrLBW int64       `koanf:"bowled_or_lbw" json:"bowled_or_lbw"`
	Maiden      int64       `koanf:"maiden" json:"maiden"`
	WicketHauls []Milestone `koanf:"wicket_hauls" json:"wicket_hauls"`
	// CumulativeHauls pays every haul tier reached. When false only the
	// highest tier reached is paid.
	CumulativeHauls bool         `koanf:"cumulative_hauls" json:"cumulative_hauls"`
	Economy         EconomyBonus `koanf:"economy" json:"economy"`

	Catch           int64       `koanf:"catch" json:"catch"`
	CatchMilestones []Milestone `koanf:"catch_milestones" json:"catch_milestones"`
	Stumping        int64       `koanf:"stumping" json:"stumping"`
	DirectRunOut    int64       `koanf:"direct_run_out" json:"direct_run_out"`
	IndirectRunOut  int64       `koanf:"indirect_run_out" json:"indirect_run_out"`

	Captain     float64 `koanf:"captain" json:"captain"`
	ViceCaptain float64 `koanf:"vice_captain" json:"vice_captain"`
}

// Default returns the published v1 rules.
func Default() Table {
	return Table{
		Version: "v1",
		Run:     1,
		Four:    1,
		Six:     2,
		BattingMilestones: []Milestone{
			{Threshold: 30, Bonus: 4},
			{Threshold: 50, Bonus: 8},
			{Threshold: 100, Bonus: 16},
		},
		DuckPenalty:     -2,
		DuckExemptRoles: []model.Role{model.Bowler},

		Wicket:      25,
		BowledOrLBW: 8,
		Maiden:      12,
		WicketHauls: []Milestone{
			{Threshold: 3, Bonus: 4},
			{Threshold: 4, Bonus: 8},
			{Threshold: 5, Bonus: 16},
		},
		Economy: EconomyBonus{MinOvers: 2, Ceiling: 5, Bonus: 6},

		Catch:           8,
		CatchMilestones: []Milestone{{Threshold: 3, Bonus: 4}},
		Stumping:        12,
		DirectRunOut:    12,
		IndirectRunOut:  6,

		Captain:     2,
		ViceCaptain: 1.5,
	}
}

// Clone returns a deep copy so callers can snapshot a table for a run.
func (t Table) Clone() Table {
	out := t
	out.BattingMilestones = append([]Milestone(nil), t.BattingMilestones...)
	out.WicketHauls = append([]Milestone(nil), t.WicketHauls...)
	out.CatchMilestones = append([]Milestone(nil), t.CatchMilestones...)
	out.DuckExemptRoles = append([]model.Role(nil), t.DuckExemptRoles...)
	return out
}

// Validate reports every inconsistency in the table.
func (t Table) Validate() error {
	var errs []error
	if t.Version == "" {
		errs = append(errs, errors.New("version must not be empty"))
	}
	nonNegative := map[string]int64{
		"run":              t.Run,
		"four":             t.Four,
		"six":              t.Six,
		"wicket":           t.Wicket,
		"bowled_or_lbw":    t.BowledOrLBW,
		"maiden":           t.Maiden,
		"economy.bonus":    t.Economy.Bonus,
		"catch":            t.Catch,
		"stumping":         t.Stumping,
		"direct_run_out":   t.DirectRunOut,
		"indirect_run_out": t.IndirectRunOut,
	}
	keys := make([]string, 0, len(nonNegative))
	for k := range nonNegative {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if nonNegative[k] < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", k))
		}
	}
	if t.DuckPenalty > 0 {
		errs = append(errs, errors.New("duck_penalty must not be positive"))
	}
	for _, r := range t.DuckExemptRoles {
		if !r.Valid() {
			errs = append(errs, fmt.Errorf("duck_exempt_roles: unknown role %q", r))
		}
	}
	errs = append(errs, checkMilestones("batting_milestones", t.BattingMilestones)...)
	errs = append(errs, checkMilestones("wicket_hauls", t.WicketHauls)...)
	errs = append(errs, checkMilestones("catch_milestones", t.CatchMilestones)...)
	if t.Economy.MinOvers < 0 {
		errs = append(errs, errors.New("economy.min_overs must not be negative"))
	}
	if t.Economy.Ceiling <= 0 {
		errs = append(errs, errors.New("economy.ceiling must be positive"))
	}
	if t.Captain <= 0 || t.ViceCaptain <= 0 {
		errs = append(errs, errors.New("captain and vice_captain multipliers must be positive"))
	}
	for _, m := range []struct {
		name  string
		value float64
	}{{"captain", t.Captain}, {"vice_captain", t.ViceCaptain}} {
		d := decimal.NewFromFloat(m.value)
		if !d.Equal(d.Round(MultiplierPlaces)) {
			errs = append(errs, fmt.Errorf("%s multiplier %s has more than %d decimal places", m.name, d, MultiplierPlaces))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidTable, errors.Join(errs...))
}

func checkMilestones(name string, ms []Milestone) []error {
	var errs []error
	for i, m := range ms {
		if m.Threshold <= 0 {
			errs = append(errs, fmt.Errorf("%s[%d]: threshold must be positive", name, i))
		}
		if m.Bonus < 0 {
			errs = append(errs, fmt.Errorf("%s[%d]: bonus must not be negative", name, i))
		}
		if i > 0 && m.Threshold <= ms[i-1].Threshold {
			errs = append(errs, fmt.Errorf("%s[%d]: thresholds must be strictly increasing", name, i))
		}
	}
	return errs
}
