package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/cardio/internal/domain/types"
)

const (
	defaultRunsLimit = 10
	maxRunsLimit     = 500
)

// RunsProvider lists journaled training runs.
type RunsProvider interface {
	Runs(ctx context.Context, limit int) ([]types.TrainingRun, error)
}

// RunsHandler serves the training-run journal.
type RunsHandler struct {
	deps RunsProvider
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps RunsProvider) *RunsHandler {
	return &RunsHandler{deps: deps}
}

type runsResponse struct {
	Runs []types.TrainingRun `json:"runs"`
}

// HandleRuns handles GET /training/runs?limit=N.
func (h *RunsHandler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRunsLimit {
			writeError(w, http.StatusBadRequest,
				WrapKind("runs", ErrBadRequest, fmt.Errorf("limit must be an integer in [1, %d]", maxRunsLimit)))
			return
		}
		limit = n
	}

	runs, err := h.deps.Runs(r.Context(), limit)
	switch {
	case errors.Is(err, types.ErrJournalDisabled):
		writeError(w, http.StatusNotFound, WrapKind("runs", ErrNotFound, err))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, ErrInternal)
		return
	}
	if runs == nil {
		runs = []types.TrainingRun{}
	}
	writeJSON(w, http.StatusOK, runsResponse{Runs: runs})
}
