package api

import (
	"net/http"

	"github.com/okian/cardio/internal/domain/types"
	"github.com/okian/cardio/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadinessProvider reports whether predictions can be served.
type ReadinessProvider interface {
	Ready() bool
	Info() types.ModelInfo
}

// HealthHandler serves liveness metrics and model readiness.
type HealthHandler struct {
	deps    ReadinessProvider
	metrics http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(deps ReadinessProvider) *HealthHandler {
	return &HealthHandler{
		deps:    deps,
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz by exposing the service metrics.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// HandleReady handles GET /readyz. It answers 503 until a model is loaded.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	status := http.StatusOK
	if !h.deps.Ready() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, h.deps.Info())
}
