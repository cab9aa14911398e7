package probe

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

	"github.com/okian/cardio/pkg/logger"
)

const workerChannelMultiplier = 2

type client struct {
	http *http.Client
	base string
}

func newClient(base string, timeout time.Duration) *client {
	return &client{http: &http.Client{Timeout: timeout}, base: base}
}

func (c *client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return c.http.Do(req)
}

func (c *client) predict(ctx context.Context, r Request) Result {
	res := Result{ID: r.ID}
	body, err := json.Marshal(r.Patient)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/predict", bytes.NewReader(body))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", r.ID)

	start := time.Now()
	resp, err := c.http.Do(req)
	res.Latency = time.Since(start)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer resp.Body.Close()
	res.Status = resp.StatusCode

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	var payload struct {
		Prediction  int     `json:"prediction"`
		Probability float64 `json:"probability"`
		Error       string  `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		res.Error = fmt.Sprintf("decode response: %v", err)
		return res
	}
	res.Prediction = payload.Prediction
	res.Probability = payload.Probability
	res.Error = payload.Error
	return res
}

// submit posts every request through a pool of workers. Results keep the
// order of requests; requests skipped after cancellation are omitted.
func submit(ctx context.Context, cfg *Config, c *client, requests []Request) []Result {
	results := make([]Result, len(requests))
	jobs := make(chan int, cfg.Workers*workerChannelMultiplier)
	var done atomic.Int64
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = c.predict(ctx, requests[i])
				if n := done.Add(1); cfg.Verbose && n%100 == 0 {
					logger.Get().Debug(ctx, "progress", logger.Int("done", int(n)), logger.Int("total", len(requests)))
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range requests {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	wg.Wait()
	out := results[:0]
	for _, r := range results {
		if r.ID != "" {
			out = append(out, r)
		}
	}
	return out
}
