// Package stats guards the boundary where per-player match statistics enter
// the system. Scoring assumes well-formed input; everything malformed is
// rejected here.
package stats

import (
	"fmt"
	"strings"
)

// Format is a match format.
type Format string

// Supported formats.
const (
	T20  Format = "T20"
	ODI  Format = "ODI"
	Test Format = "TEST"
	T10  Format = "T10"
)

// ParseFormat normalizes s to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToUpper(strings.TrimSpace(s))); f {
	case T20, ODI, Test, T10:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Overs returns the innings length in overs, or 0 when unlimited.
func (f Format) Overs() int {
	switch f {
	case T20:
		return 20
	case ODI:
		return 50
	case T10:
		return 10
	}
	return 0
}

// BowlerOvers returns the most overs one bowler may deliver, or 0 when
// unlimited. Limited-overs formats cap each bowler at a fifth of the innings.
func (f Format) BowlerOvers() int {
	return f.Overs() / 5
}

// Innings returns how many times each side may bat.
func (f Format) Innings() int {
	if f == Test {
		return 2
	}
	return 1
}

// MaxWickets returns the most wickets one bowler can take in a match.
func (f Format) MaxWickets() int {
	return WicketsPerInnings * f.Innings()
}
