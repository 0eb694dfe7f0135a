package pointstable

import "errors"

// Sentinel kinds for points table errors.
var (
	ErrInvalidTable = errors.New("invalid points table")
	ErrLoadTable    = errors.New("load points table failed")
)
