package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrQuotaNotSet     = errors.New("roster quota not configured")
	ErrMissingMatch    = errors.New("match id required")
	ErrInvalidRevision = errors.New("revision must be positive")
	ErrInvalidRoster   = errors.New("roster violates constraints")
	ErrRosterNotFound  = errors.New("roster not found")
	ErrRosterConflict  = errors.New("roster id already registered")
	ErrNoScorecard     = errors.New("no performances published for match")
	ErrStaleRevision   = errors.New("scorecard revision is older than the current one")
	ErrBackpressure    = errors.New("backpressure")
)
