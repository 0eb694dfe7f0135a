package simulate

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/wicket/pkg/logger"
)

// SetupLogging sends log output to both the console and a file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile, format string) (io.Closer, error) {
	if logFile == "" {
		logFile = "simulation_" + time.Now().Format("20060102_150405") + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	if err := logger.InitWith(io.MultiWriter(os.Stdout, file), format); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return file, nil
}

// ShowHelp prints usage information for the simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Wicket Fantasy Simulator
========================

Drives a running wicket service end to end: builds legal rosters for
simulated matches, submits them, publishes scorecard revisions and checks
every leaderboard and rank against a local computation.

Quota and match format are read from the same WICKET_* environment and
WICKET_CONFIG file as the service, so run both with the same settings.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -matches int
        Number of matches to simulate (default 5)
  -rosters int
        Rosters submitted per match (default 200)
  -revisions int
        Scorecard revisions published per match (default 2)
  -top int
        Leaderboard entries to verify per match (default 50)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -wait duration
        How long to wait for scoring to settle (default 30s)
  -seed uint
        Random seed for pools, selections and statistics (default: current time)
  -output string
        Output file for generated data (default: simulation_TIMESTAMP.json)
  -log string
        Log file for run output (default: simulation_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate with default settings
  go run ./cmd/simulate

  # Larger run against another port
  go run ./cmd/simulate -matches 20 -rosters 1000 -workers 16 -url http://localhost:8080

  # Reproduce a run's selections and statistics
  go run ./cmd/simulate -seed 42 -verbose
`)
}
