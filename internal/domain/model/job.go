package model

import "time"

// ScoreJob asks a worker to rescore one roster for one match.
type ScoreJob struct {
	JobID      string
	MatchID    string
	RosterID   string
	EnqueuedAt time.Time
}
