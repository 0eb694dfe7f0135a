package stats

import "errors"

var (
	ErrUnknownFormat = errors.New("unknown match format")
	ErrMalformed     = errors.New("malformed performance")
	ErrDuplicate     = errors.New("duplicate performance")
)
