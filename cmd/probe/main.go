package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/cardio/internal/probe"
	"github.com/okian/cardio/pkg/logger"
)

const (
	defaultRequests     = 1000
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 10 * time.Second
	defaultProbeTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "Base URL of the service")
		requests = flag.Int("requests", defaultRequests, "Number of predictions to submit")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "Seed for generated patients")
		invalid  = flag.Float64("invalid", 0, "Fraction of records sent with an undeclared thal code")
		output   = flag.String("output", "", "Write per-request results as JSON to this file")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()

	_, err := probe.Run(ctx, &probe.Config{
		BaseURL:      *baseURL,
		Requests:     *requests,
		Workers:      max(1, *workers),
		Timeout:      *timeout,
		Seed:         *seed,
		InvalidRatio: *invalid,
		OutputFile:   *output,
		Verbose:      *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("probe failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
