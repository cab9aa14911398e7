package dataset

import "errors"

var (
	ErrNoData        = errors.New("training data not found")
	ErrMissingColumn = errors.New("dataset missing column")
	ErrMalformedRow  = errors.New("malformed dataset row")
	ErrInvalidTarget = errors.New("target must be 0 or 1")
)
