package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/wicket/internal/config"
	"github.com/okian/wicket/internal/simulate"
)

// Default configuration constants.
const (
	defaultMatches   = 5
	defaultRosters   = 200
	defaultRevisions = 2
	defaultTopN      = 50
	defaultWorkers   = 2 // multiplier for runtime.NumCPU()
	defaultTimeout   = 30 * time.Second
	defaultWait      = 30 * time.Second
	defaultRunTime   = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		matches    = flag.Int("matches", defaultMatches, "Number of matches to simulate")
		rosters    = flag.Int("rosters", defaultRosters, "Rosters submitted per match")
		revisions  = flag.Int("revisions", defaultRevisions, "Scorecard revisions published per match")
		topN       = flag.Int("top", defaultTopN, "Leaderboard entries to verify per match")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait       = flag.Duration("wait", defaultWait, "How long to wait for scoring to settle")
		seed       = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
		outputFile = flag.String("output", "", "Output file for generated data (default: simulation_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Log file for run output (default: simulation_TIMESTAMP.log)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTime)
	defer cancel()

	// Quota and format come from the same sources the service reads.
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("Failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	quota, err := cfg.Quota()
	if err != nil {
		os.Stderr.WriteString("Invalid quota: " + err.Error() + "\n")
		os.Exit(1)
	}
	format, err := cfg.Format()
	if err != nil {
		os.Stderr.WriteString("Invalid match format: " + err.Error() + "\n")
		os.Exit(1)
	}

	closer, err := simulate.SetupLogging(*logFile, cfg.LogFormat)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closer.Close()

	run := &simulate.Config{
		BaseURL:     *baseURL,
		Matches:     *matches,
		Rosters:     *rosters,
		Revisions:   *revisions,
		TopN:        *topN,
		Workers:     *workers,
		Timeout:     *timeout,
		WaitTimeout: *wait,
		Seed:        *seed,
		OutputFile:  *outputFile,
		LogFile:     *logFile,
		Verbose:     *verbose,
		Quota:       quota,
		Format:      format,
	}

	if err := simulate.Run(ctx, run); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		closer.Close()
		os.Exit(1)
	}
}
