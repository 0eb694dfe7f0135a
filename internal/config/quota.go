package config

import (
	"errors"
	"fmt"

	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/internal/domain/stats"
	"github.com/okian/wicket/pkg/logger"
)

// Quota converts the roster settings into a model.RoleQuota. Role keys may
// use any spelling model.ParseRole accepts.
func (c *Config) Quota() (model.RoleQuota, error) {
	q := model.RoleQuota{
		Min:        make(map[model.Role]int, len(c.RoleMin)),
		Max:        make(map[model.Role]int, len(c.RoleMax)),
		RosterSize: c.RosterSize,
		Budget:     c.Budget,
		MaxPerTeam: c.MaxPerTeam,
	}
	for key, n := range c.RoleMin {
		r, err := model.ParseRole(key)
		if err != nil {
			return model.RoleQuota{}, fmt.Errorf("%w: role_min: %w", ErrInvalidConfig, err)
		}
		q.Min[r] = n
	}
	for key, n := range c.RoleMax {
		r, err := model.ParseRole(key)
		if err != nil {
			return model.RoleQuota{}, fmt.Errorf("%w: role_max: %w", ErrInvalidConfig, err)
		}
		q.Max[r] = n
	}
	return q, nil
}

// Format returns the configured match format.
func (c *Config) Format() (stats.Format, error) {
	f, err := stats.ParseFormat(c.MatchFormat)
	if err != nil {
		return "", fmt.Errorf("%w: match_format: %w", ErrInvalidConfig, err)
	}
	return f, nil
}

// Validate reports every inconsistent setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if c.QueueSize < 1 {
		errs = append(errs, errors.New("queue_size must be positive"))
	}
	if c.MaxLeaderboardLimit < 1 {
		errs = append(errs, errors.New("max_leaderboard_limit must be positive"))
	}
	if c.SnapshotIntervalMS < 1 {
		errs = append(errs, errors.New("snapshot_interval_ms must be positive"))
	}
	if c.Budget < 1 {
		errs = append(errs, errors.New("budget must be positive"))
	}
	if c.RosterSize < 1 {
		errs = append(errs, errors.New("roster_size must be positive"))
	}
	if c.MaxPerTeam < 0 {
		errs = append(errs, errors.New("max_per_team must not be negative"))
	}
	if _, err := c.Format(); err != nil {
		errs = append(errs, err)
	}

	q, err := c.Quota()
	if err != nil {
		errs = append(errs, err)
	} else {
		sumMin, sumMax := 0, 0
		for _, r := range model.Roles() {
			lo, hi := q.Min[r], q.Max[r]
			if lo < 0 || lo > hi {
				errs = append(errs, fmt.Errorf("role %s: need 0 <= min (%d) <= max (%d)", r, lo, hi))
			}
			sumMin += lo
			sumMax += hi
		}
		if sumMin > c.RosterSize || sumMax < c.RosterSize {
			errs = append(errs, fmt.Errorf("role bounds (%d..%d) cannot fill a roster of %d", sumMin, sumMax, c.RosterSize))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}
