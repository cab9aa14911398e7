// Package probe drives concurrent /predict traffic against a running
// service and summarizes outcomes and latency.
package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Requests     int           // Number of predictions to submit
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	Seed         int64         // Seed for patient generation
	InvalidRatio float64       // Fraction of records with an undeclared thal code
	OutputFile   string        // Where per-request results are written, empty to skip
	Verbose      bool          // Enable verbose logging
}

// Patient is one /predict request body.
type Patient struct {
	Age      float64 `json:"age"`
	Sex      int     `json:"sex"`
	CP       int     `json:"cp"`
	Trestbps float64 `json:"trestbps"`
	Chol     float64 `json:"chol"`
	FBS      int     `json:"fbs"`
	RestECG  int     `json:"restecg"`
	Thalach  float64 `json:"thalach"`
	Exang    int     `json:"exang"`
	Oldpeak  float64 `json:"oldpeak"`
	Slope    int     `json:"slope"`
	CA       int     `json:"ca"`
	Thal     int     `json:"thal"`
}

// Request pairs a patient with the id sent as X-Request-ID.
type Request struct {
	ID      string  `json:"id"`
	Patient Patient `json:"patient"`
}

// Result is the outcome of one submitted request.
type Result struct {
	ID          string        `json:"id"`
	Status      int           `json:"status"`
	Prediction  int           `json:"prediction"`
	Probability float64       `json:"probability"`
	Error       string        `json:"error,omitempty"`
	Latency     time.Duration `json:"latency_ns"`
}

// Stats summarizes a probe run.
type Stats struct {
	Submitted int
	OK        int
	Rejected  int
	Failed    int
	Positive  int
	P50       time.Duration
	P95       time.Duration
	P99       time.Duration
	Duration  time.Duration
}
