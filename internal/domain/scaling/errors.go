package scaling

import "errors"

// Sentinel kinds for scaler errors.
var (
	ErrNoColumns         = errors.New("scaler has no columns")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrEmptySeries       = errors.New("empty training series")
	ErrMissingColumn     = errors.New("vector missing scaled column")
	ErrInvalidStd        = errors.New("invalid standard deviation")
)
