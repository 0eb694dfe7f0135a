package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// getJSON fetches url and decodes a 200 response into out.
func (c *HTTPClient) getJSON(ctx context.Context, url string, out any) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitRosters submits rosters concurrently and reports which were accepted.
func submitRosters(ctx context.Context, config *Config, rosters []model.Roster, st *Stats) []bool {
	log := logger.Get()
	log.Info(ctx, "submitting rosters", logger.Int("rosters", len(rosters)), logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/rosters"
	accepted := make([]bool, len(rosters))

	var submitted, rejected int64
	indexes := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for range config.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if ctx.Err() != nil {
					return
				}
				atomic.AddInt64(&submitted, 1)
				if err := submitRoster(ctx, client, url, rosters[i]); err != nil {
					atomic.AddInt64(&rejected, 1)
					if config.Verbose {
						log.Warn(ctx, "roster rejected", logger.String("rosterID", rosters[i].ID), logger.Error(err))
					}
					continue
				}
				accepted[i] = true
			}
		}()
	}

	go func() {
		defer close(indexes)
		for i := range rosters {
			select {
			case <-ctx.Done():
				return
			case indexes <- i:
			}
		}
	}()

	wg.Wait()

	st.RostersSubmitted = int(atomic.LoadInt64(&submitted))
	st.RostersRejected = int(atomic.LoadInt64(&rejected))
	log.Info(ctx, "roster submission completed",
		logger.Int("submitted", st.RostersSubmitted),
		logger.Int("rejected", st.RostersRejected))
	return accepted
}

func submitRoster(ctx context.Context, client *HTTPClient, url string, r model.Roster) error {
	resp, err := client.Post(ctx, url, r)
	if err != nil {
		return err
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// publishScorecards publishes every match's revisions in order. Matches run
// concurrently. Backpressure is retried until ctx is done.
func publishScorecards(ctx context.Context, config *Config, matches []*Match, st *Stats) {
	log := logger.Get()
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/performances"

	var accepted, failed, jobs int64
	work := make(chan *Match, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for range config.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for m := range work {
				for _, sc := range m.Scorecards {
					ack, err := publishScorecard(ctx, client, url, sc)
					if err != nil {
						atomic.AddInt64(&failed, 1)
						log.Warn(ctx, "scorecard rejected",
							logger.String("matchID", sc.MatchID),
							logger.Int("revision", int(sc.Revision)),
							logger.Error(err))
						continue
					}
					atomic.AddInt64(&accepted, 1)
					atomic.AddInt64(&jobs, int64(ack.Jobs))
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for _, m := range matches {
			select {
			case <-ctx.Done():
				return
			case work <- m:
			}
		}
	}()

	wg.Wait()

	st.ScorecardsAccepted = int(atomic.LoadInt64(&accepted))
	st.ScorecardsFailed = int(atomic.LoadInt64(&failed))
	st.JobsQueued = int(atomic.LoadInt64(&jobs))
	log.Info(ctx, "scorecard publication completed",
		logger.Int("accepted", st.ScorecardsAccepted),
		logger.Int("failed", st.ScorecardsFailed),
		logger.Int("jobs", st.JobsQueued))
}

func publishScorecard(ctx context.Context, client *HTTPClient, url string, sc model.Scorecard) (ackResponse, error) {
	for {
		resp, err := client.Post(ctx, url, sc)
		if err != nil {
			return ackResponse{}, err
		}
		body, err := readResponseBody(resp)
		if err != nil {
			return ackResponse{}, err
		}
		switch resp.StatusCode {
		case http.StatusAccepted, http.StatusOK:
			var ack ackResponse
			if err := json.Unmarshal(body, &ack); err != nil {
				return ackResponse{}, fmt.Errorf("failed to parse response: %w", err)
			}
			return ack, nil
		case http.StatusTooManyRequests:
			select {
			case <-ctx.Done():
				return ackResponse{}, ctx.Err()
			case <-time.After(PollInterval):
			}
		default:
			return ackResponse{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
		}
	}
}
