package simulate

import (
	"time"

	"github.com/okian/wicket/internal/domain/model"
)

// Pool shape per team. Two teams give 22 players, enough for the default
// quota with room to vary.
var teamShape = []struct {
	role  model.Role
	count int
}{
	{model.WicketKeeper, 2},
	{model.Batsman, 4},
	{model.AllRounder, 2},
	{model.Bowler, 3},
}

var teams = []string{"HOME", "AWAY"}

// Price range in credits.
const (
	minPrice = 6
	maxPrice = 10
)

// Generation limits.
const (
	maxBuildAttempts = 200
	maxRuns          = 90
	maxWickets       = 5
	defaultMaxOvers  = 10
)

// Worker and polling constants.
const (
	WorkerChannelMultiplier = 2
	PollInterval            = 250 * time.Millisecond
	PercentageMultiplier    = 100
	directoryPermission     = 0750
	logFilePermission       = 0600
)
