// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/cardio/internal/domain/model"
	"github.com/okian/cardio/internal/domain/types"
	"github.com/okian/cardio/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Ready reports whether a complete artifact set is loaded.
	Ready() bool
	// Predict classifies one decoded record.
	Predict(ctx context.Context, rec model.Record) (types.Prediction, error)
	// Info describes the served artifact set.
	Info() types.ModelInfo
	// Runs lists recent training runs, newest first.
	Runs(ctx context.Context, limit int) ([]types.TrainingRun, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler
	runsHandler    *RunsHandler

	allowedOrigins []string
	maxBodyBytes   int64
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		allowedOrigins: []string{"*"},
		maxBodyBytes:   defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.predictHandler = NewPredictHandler(deps, s.maxBodyBytes, s.logger)
	s.runsHandler = NewRunsHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/predict", MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/training/runs", MetricsMiddleware(s.runsHandler.HandleRuns, "training_runs"))
}

// Handler wraps mux with panic recovery and CORS.
func (s *Server) Handler(mux http.Handler) http.Handler {
	return Chain(RecoveryMiddleware(s.logger), CORSMiddleware(s.allowedOrigins))(mux)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes {"error": msg}. For *Error values only the wrapped
// cause is shown to the client.
func writeError(w http.ResponseWriter, status int, err error) {
	msg := http.StatusText(status)
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		msg = apiErr.Message()
	case err != nil:
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
}
