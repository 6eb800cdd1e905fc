package teststrokes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// submitAttempts submits attempts concurrently using a worker pool.
func submitAttempts(ctx context.Context, config *Config, attempts []Attempt, stats *Stats) error {
	log.Printf("submitting %d attempts with %d workers...", len(attempts), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/attempts"

	var (
		successful int64
		duplicate  int64
		failed     int64
		submitted  int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	attemptChan := make(chan Attempt, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for attempt := range attemptChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := submitSingleAttempt(ctx, client, url, attempt)

					atomic.AddInt64(&submitted, 1)
					switch result {
					case "success":
						atomic.AddInt64(&successful, 1)
					case "duplicate":
						atomic.AddInt64(&duplicate, 1)
					case "failed":
						atomic.AddInt64(&failed, 1)
					}

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						succ := atomic.LoadInt64(&successful)
						dup := atomic.LoadInt64(&duplicate)
						fail := atomic.LoadInt64(&failed)

						if config.Verbose {
							log.Printf("progress: %d/%d submitted (success: %d, duplicate: %d, failed: %d)",
								total, len(attempts), succ, dup, fail)
						} else {
							fmt.Printf("\rsubmitted: %d/%d (success: %d, duplicate: %d, failed: %d)",
								total, len(attempts), succ, dup, fail)
						}
					}
				}
			}
		}()
	}

	go func() {
		defer close(attemptChan)
		for _, attempt := range attempts {
			select {
			case <-ctx.Done():
				return
			case attemptChan <- attempt:
			}
		}
	}()

	wg.Wait()

	if !config.Verbose {
		fmt.Println()
	}

	stats.AttemptsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.AttemptsSuccessful = int(atomic.LoadInt64(&successful))
	stats.AttemptsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.AttemptsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`attempt submission completed:
   successful: %d
   duplicate: %d
   failed: %d
`, stats.AttemptsSuccessful, stats.AttemptsDuplicate, stats.AttemptsFailed)

	return nil
}

// submitSingleAttempt submits a single attempt and classifies the outcome.
func submitSingleAttempt(ctx context.Context, client *HTTPClient, url string, attempt Attempt) string {
	resp, err := client.Post(ctx, url, attempt)
	if err != nil {
		return "failed"
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case StatusAccepted:
		return "success"
	case StatusOK:
		var ack AckResponse
		if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate"
	default:
		return "failed"
	}
}
