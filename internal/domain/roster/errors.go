package roster

import "errors"

// Sentinel kinds for caller bugs. These are raised as panics.
var (
	ErrAlreadyInRoster = errors.New("player already in roster")
	ErrNotInRoster     = errors.New("player not in roster")
)
