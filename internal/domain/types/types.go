// Package types contains common types used across the application
package types

import (
	"errors"
	"time"
)

// Errors shared between the service and its transports.
var (
	ErrModelUnavailable = errors.New("model not trained")
	ErrJournalDisabled  = errors.New("training journal disabled")
)

// Prediction is the classifier output for one record
type Prediction struct {
	Label       int     `json:"prediction"`
	Probability float64 `json:"probability"`
}

// ModelInfo describes the artifact set currently served
type ModelInfo struct {
	Ready    bool   `json:"ready"`
	RunID    string `json:"run_id,omitempty"`
	Features int    `json:"features"`
	Trees    int    `json:"trees"`
	Strict   bool   `json:"strict"`
}

// TrainingRun is one entry of the training-run journal
type TrainingRun struct {
	ID            string        `json:"run_id"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"-"`
	DurationMs    int64         `json:"duration_ms"`
	Status        string        `json:"status"`
	Error         string        `json:"error,omitempty"`
	Rows          int           `json:"rows"`
	Dropped       int           `json:"dropped_rows"`
	Features      int           `json:"features"`
	Trees         int           `json:"trees"`
	TrainAccuracy float64       `json:"train_accuracy"`
	TestAccuracy  float64       `json:"test_accuracy"`
	Precision     float64       `json:"precision"`
	Recall        float64       `json:"recall"`
	Constant      []string      `json:"constant_columns,omitempty"`
}
