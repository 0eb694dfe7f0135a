package repository

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrNotFound     = errors.New("roster not ranked")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrClosed       = errors.New("leaderboard store closed")
)
