package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/okian/cardio/pkg/logger"
	"gonum.org/v1/gonum/stat"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// ErrNotReady is returned when /readyz does not answer 200.
var ErrNotReady = errors.New("service not ready")

// Run checks readiness, submits generated requests and returns the summary.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	log := logger.Get().Named("probe")
	log.Info(ctx, "starting prediction probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Float64("invalidRatio", cfg.InvalidRatio))

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := checkReady(ctx, c); err != nil {
		return Stats{}, err
	}

	requests := Generate(cfg.Requests, cfg.Seed, cfg.InvalidRatio)
	start := time.Now()
	results := submit(ctx, cfg, c, requests)
	stats := Summarize(results)
	stats.Duration = time.Since(start)

	if cfg.OutputFile != "" {
		if err := saveResults(cfg.OutputFile, results); err != nil {
			log.Warn(ctx, "failed to save results", logger.Error(err))
		}
	}

	log.Info(ctx, "probe finished",
		logger.Int("submitted", stats.Submitted),
		logger.Int("ok", stats.OK),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("positive", stats.Positive),
		logger.Duration("p50", stats.P50),
		logger.Duration("p95", stats.P95),
		logger.Duration("p99", stats.P99),
		logger.Duration("duration", stats.Duration))
	if err := ctx.Err(); err != nil {
		return stats, fmt.Errorf("probe interrupted: %w", err)
	}
	return stats, nil
}

func checkReady(ctx context.Context, c *client) error {
	resp, err := c.get(ctx, "/readyz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: /readyz answered %d", ErrNotReady, resp.StatusCode)
	}
	return nil
}

// Summarize counts outcomes by status class and computes latency quantiles
// over the requests that got a response.
func Summarize(results []Result) Stats {
	s := Stats{Submitted: len(results)}
	latencies := make([]float64, 0, len(results))
	for _, r := range results {
		switch {
		case r.Status == http.StatusOK:
			s.OK++
			if r.Prediction == 1 {
				s.Positive++
			}
		case r.Status >= 400 && r.Status < 500:
			s.Rejected++
		default:
			s.Failed++
		}
		if r.Status != 0 {
			latencies = append(latencies, float64(r.Latency))
		}
	}
	if len(latencies) == 0 {
		return s
	}
	slices.Sort(latencies)
	q := func(p float64) time.Duration {
		return time.Duration(stat.Quantile(p, stat.Empirical, latencies, nil))
	}
	s.P50, s.P95, s.P99 = q(0.5), q(0.95), q(0.99)
	return s
}

func saveResults(path string, results []Result) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	if err := os.WriteFile(path, data, filePermission); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
