package forest

import "errors"

var (
	ErrNotFitted        = errors.New("forest not fitted")
	ErrEmptyTrainingSet = errors.New("empty training set")
	ErrShapeMismatch    = errors.New("training shape mismatch")
	ErrInvalidLabel     = errors.New("label must be 0 or 1")
	ErrFeatureCount     = errors.New("feature count mismatch")
	ErrCorruptTree      = errors.New("corrupt tree")
)
