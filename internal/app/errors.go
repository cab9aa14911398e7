package service

import (
	"errors"

	"github.com/okian/cardio/internal/domain/types"
)

// Sentinel kinds for service errors.
var (
	ErrModelUnavailable = types.ErrModelUnavailable
	ErrJournalDisabled  = types.ErrJournalDisabled
	ErrInsufficientData = errors.New("insufficient training data")
)
