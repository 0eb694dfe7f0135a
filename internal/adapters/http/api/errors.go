package api

import (
	"errors"
	"fmt"
	"net/http"

	repository "github.com/okian/wicket/internal/adapters/repository"
	service "github.com/okian/wicket/internal/app"
	"github.com/okian/wicket/internal/domain/roster"
	"github.com/okian/wicket/internal/domain/stats"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrLimitExceeded = errors.New("limit exceeded")
)

// Error records the handler operation that failed, the kind used to pick a
// status code and the underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	case e.Kind == nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of the given kind with no further cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind tags err with a kind.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap records op on err without changing its kind.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// classify maps an error to its HTTP status and response code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidRoster):
		return http.StatusUnprocessableEntity, "invalid_roster"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrRosterNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNoScorecard):
		return http.StatusNotFound, "no_scorecard"
	case errors.Is(err, service.ErrRosterConflict):
		return http.StatusConflict, "roster_conflict"
	case errors.Is(err, service.ErrStaleRevision):
		return http.StatusConflict, "stale_revision"
	case errors.Is(err, stats.ErrMalformed), errors.Is(err, stats.ErrDuplicate):
		return http.StatusBadRequest, "malformed_statistics"
	case errors.Is(err, ErrLimitExceeded):
		return http.StatusBadRequest, "limit_exceeded"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrMissingMatch),
		errors.Is(err, service.ErrInvalidRevision),
		errors.Is(err, roster.ErrAlreadyInRoster),
		errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}
