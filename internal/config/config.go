// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"runtime"
	"slices"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataPath is the training CSV read on startup.
	DataPath string `koanf:"data_path"`

	// ArtifactDir holds model.json, scaler.json and feature_names.json.
	ArtifactDir string `koanf:"artifact_dir"`

	// JournalPath is the SQLite file for training runs. Empty disables the journal.
	JournalPath string `koanf:"journal_path"`

	// TrainOnStartup trains from DataPath when true, otherwise loads ArtifactDir.
	TrainOnStartup bool `koanf:"train_on_startup"`

	// Forest hyperparameters. MaxDepth 0 means unbounded.
	Trees           int   `koanf:"n_estimators"`
	MaxDepth        int   `koanf:"max_depth"`
	MinSamplesSplit int   `koanf:"min_samples_split"`
	Seed            int64 `koanf:"random_seed"`
	TrainWorkers    int   `koanf:"train_workers"`

	// TestRatio is the held-out fraction used for evaluation. 0 fits on every row.
	TestRatio float64 `koanf:"test_ratio"`

	// RejectUnknownCategories turns undeclared categorical codes into 400s.
	RejectUnknownCategories bool `koanf:"reject_unknown_categories"`

	// AllowedOrigins is the CORS allow-list; "*" allows any origin.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// MaxBodyBytes caps the /predict request body.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":8080",
		DataPath:        "heart.csv",
		ArtifactDir:     "artifacts",
		JournalPath:     "",
		TrainOnStartup:  true,
		Trees:           100,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		Seed:            42,
		TrainWorkers:    runtime.NumCPU(),
		TestRatio:       0,
		AllowedOrigins:  []string{"*"},
		MaxBodyBytes:    64 << 10,
	}
}

// Validate checks value ranges. Every error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel):
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.TrainOnStartup && c.DataPath == "":
		return fmt.Errorf("%w: data_path is required when training on startup", ErrInvalidConfig)
	case c.Trees < 1:
		return fmt.Errorf("%w: n_estimators must be positive, got %d", ErrInvalidConfig, c.Trees)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max_depth must not be negative, got %d", ErrInvalidConfig, c.MaxDepth)
	case c.MinSamplesSplit < 2:
		return fmt.Errorf("%w: min_samples_split must be at least 2, got %d", ErrInvalidConfig, c.MinSamplesSplit)
	case c.TrainWorkers < 1:
		return fmt.Errorf("%w: train_workers must be positive, got %d", ErrInvalidConfig, c.TrainWorkers)
	case c.TestRatio < 0 || c.TestRatio >= 1:
		return fmt.Errorf("%w: test_ratio must be in [0, 1), got %g", ErrInvalidConfig, c.TestRatio)
	case c.MaxBodyBytes < 1:
		return fmt.Errorf("%w: max_body_bytes must be positive, got %d", ErrInvalidConfig, c.MaxBodyBytes)
	}
	return nil
}
