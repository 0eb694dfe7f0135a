package model

import "errors"

// Sentinel kinds for model parsing errors.
var (
	ErrUnknownRole  = errors.New("unknown role")
	ErrInvalidOvers = errors.New("invalid overs notation")
)
