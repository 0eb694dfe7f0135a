package stats

import (
	"errors"
	"fmt"

	"github.com/okian/wicket/internal/domain/model"
)

// WicketsPerInnings is the most wickets that can fall in one innings.
const WicketsPerInnings = 10

// Validate reports every malformed field of perf. The returned error wraps
// ErrMalformed and names the player.
func Validate(format Format, perf model.MatchPerformance) error {
	var errs []error
	counts := []struct {
		name string
		v    int
	}{
		{"runs", perf.Runs},
		{"balls_faced", perf.BallsFaced},
		{"fours", perf.Fours},
		{"sixes", perf.Sixes},
		{"overs", perf.Overs.Complete},
		{"runs_conceded", perf.RunsConceded},
		{"wickets", perf.Wickets},
		{"bowled_or_lbw", perf.BowledOrLBW},
		{"maidens", perf.Maidens},
		{"catches", perf.Catches},
		{"stumpings", perf.Stumpings},
		{"direct_run_outs", perf.DirectRunOuts},
		{"indirect_run_outs", perf.IndirectRunOuts},
	}
	for _, c := range counts {
		if c.v < 0 {
			errs = append(errs, fmt.Errorf("%s is negative", c.name))
		}
	}

	if perf.PlayerID == "" {
		errs = append(errs, errors.New("player_id is empty"))
	}
	if perf.Role != "" && !perf.Role.Valid() {
		errs = append(errs, fmt.Errorf("role %q is unknown", perf.Role))
	}
	if perf.Overs.Balls < 0 || perf.Overs.Balls >= model.BallsPerOver {
		errs = append(errs, fmt.Errorf("overs has %d balls in the current over", perf.Overs.Balls))
	}
	if limit := format.BowlerOvers(); limit > 0 && perf.Overs.TotalBalls() > limit*model.BallsPerOver {
		errs = append(errs, fmt.Errorf("overs %s exceeds the %s limit of %d", perf.Overs, format, limit))
	}
	if perf.BowledOrLBW > perf.Wickets {
		errs = append(errs, errors.New("bowled_or_lbw exceeds wickets"))
	}
	if limit := format.MaxWickets(); perf.Wickets > limit {
		errs = append(errs, fmt.Errorf("wickets exceeds %d in %s", limit, format))
	}
	if perf.Maidens > perf.Overs.Complete {
		errs = append(errs, errors.New("maidens exceeds complete overs"))
	}
	if boundary := 4*perf.Fours + 6*perf.Sixes; boundary > perf.Runs {
		errs = append(errs, fmt.Errorf("boundaries account for %d runs but only %d were scored", boundary, perf.Runs))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w %s: %w", ErrMalformed, perf.PlayerID, errors.Join(errs...))
}

// ValidateAll validates each performance and rejects repeated player ids.
func ValidateAll(format Format, perfs []model.MatchPerformance) error {
	var errs []error
	seen := make(map[string]struct{}, len(perfs))
	for _, p := range perfs {
		if err := Validate(format, p); err != nil {
			errs = append(errs, err)
		}
		if _, dup := seen[p.PlayerID]; dup {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicate, p.PlayerID))
			continue
		}
		seen[p.PlayerID] = struct{}{}
	}
	return errors.Join(errs...)
}
