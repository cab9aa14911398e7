package repository

import "errors"

// Sentinel kinds for artifact and journal errors.
var (
	ErrNotFound              = errors.New("artifacts not found")
	ErrIncompleteArtifacts   = errors.New("artifact set incomplete")
	ErrInconsistentArtifacts = errors.New("artifacts belong to different training runs")
	ErrInvalidLimit          = errors.New("invalid journal limit")
)
