package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/cardio/internal/domain/model"
	"github.com/okian/cardio/internal/domain/types"
	"github.com/okian/cardio/pkg/logger"
	"github.com/okian/cardio/pkg/metrics"
)

// PredictDependencies defines what the predict handler needs.
type PredictDependencies interface {
	Ready() bool
	Predict(ctx context.Context, rec model.Record) (types.Prediction, error)
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps         PredictDependencies
	maxBodyBytes int64
	logger       logger.Logger
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps PredictDependencies, maxBodyBytes int64, l logger.Logger) *PredictHandler {
	return &PredictHandler{deps: deps, maxBodyBytes: maxBodyBytes, logger: l}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if !h.deps.Ready() {
		writeError(w, http.StatusInternalServerError, NewKind(op, ErrModelNotTrained))
		return
	}

	raw, err := decodeObject(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, status, WrapKind(op, ErrBadRequest, err))
		return
	}

	rec, err := model.Decode(raw)
	if err != nil {
		var fe *model.FieldError
		if errors.As(err, &fe) {
			metrics.RecordValidationFailure(fe.Field)
		}
		h.logger.Debug(r.Context(), "rejected prediction input", logger.Error(err))
		writeError(w, http.StatusBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}

	pred, err := h.deps.Predict(r.Context(), rec)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, pred)
	case errors.Is(err, types.ErrModelUnavailable):
		writeError(w, http.StatusInternalServerError, NewKind(op, ErrModelNotTrained))
	case errors.Is(err, model.ErrOutOfDomain):
		var fe *model.FieldError
		if errors.As(err, &fe) {
			metrics.RecordValidationFailure(fe.Field)
		}
		writeError(w, http.StatusBadRequest, WrapKind(op, ErrBadRequest, err))
	default:
		h.logger.Error(r.Context(), "prediction failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, NewKind(op, ErrInternal))
	}
}

// decodeObject reads exactly one JSON object, keeping numbers as json.Number.
func decodeObject(body io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, tooLarge.Limit)
		}
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty request body")
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if raw == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON object")
	}
	return raw, nil
}
