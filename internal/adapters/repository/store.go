// Package repository persists trained artifacts and the training-run journal.
package repository

import (
	"context"
	"time"

	"github.com/okian/cardio/internal/domain/encoding"
	"github.com/okian/cardio/internal/domain/forest"
	"github.com/okian/cardio/internal/domain/scaling"
)

// Artifacts is everything inference needs from one training run.
type Artifacts struct {
	RunID     string
	TrainedAt time.Time
	Forest    *forest.Forest
	Scaler    scaling.State
	Ordering  encoding.Ordering
}

// Validate checks that the three parts agree with each other.
func (a *Artifacts) Validate() error {
	if a == nil || a.Forest == nil {
		return ErrIncompleteArtifacts
	}
	if err := a.Forest.Validate(); err != nil {
		return err
	}
	if err := a.Scaler.Validate(); err != nil {
		return err
	}
	if len(a.Ordering) != a.Forest.Features {
		return ErrInconsistentArtifacts
	}
	for _, name := range a.Scaler.Columns {
		if a.Ordering.Index(name) < 0 {
			return ErrInconsistentArtifacts
		}
	}
	return nil
}

// Store saves and loads artifact bundles.
type Store interface {
	// Save persists all three artifacts. Each is written atomically, but the
	// set is not.
	Save(ctx context.Context, a *Artifacts) error
	// Load reads all three artifacts and checks they come from the same run.
	// Returns ErrNotFound when nothing has been saved yet.
	Load(ctx context.Context) (*Artifacts, error)
}
