// Package forest implements a bagged random forest of gini decision trees
// for binary classification.
package forest

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
)

// Forest is a fitted ensemble. The zero value is unfitted.
type Forest struct {
	Trees    []Tree `json:"trees"`
	Features int    `json:"n_features"`
	Params   Params `json:"params"`
}

// Params are the hyperparameters a forest was fitted with.
type Params struct {
	Trees           int   `json:"n_estimators"`
	MaxDepth        int   `json:"max_depth"`
	MinSamplesSplit int   `json:"min_samples_split"`
	MaxFeatures     int   `json:"max_features"`
	Seed            int64 `json:"seed"`
}

// Fit grows the ensemble on rows (one feature vector per sample) and binary
// labels. Tree i uses seed+i, so the result does not depend on the number of
// workers.
func Fit(ctx context.Context, rows [][]float64, labels []int, opts ...Option) (*Forest, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := checkInput(rows, labels); err != nil {
		return nil, err
	}

	features := len(rows[0])
	maxFeatures := cfg.maxFeatures
	if maxFeatures <= 0 {
		maxFeatures = max(1, int(math.Sqrt(float64(features))))
	}
	maxFeatures = min(maxFeatures, features)

	f := &Forest{
		Trees:    make([]Tree, cfg.trees),
		Features: features,
		Params: Params{
			Trees:           cfg.trees,
			MaxDepth:        cfg.maxDepth,
			MinSamplesSplit: cfg.minSamplesSplit,
			MaxFeatures:     maxFeatures,
			Seed:            cfg.seed,
		},
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(cfg.workers, cfg.trees) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g := &grower{
				rows:        rows,
				labels:      labels,
				maxFeatures: maxFeatures,
				maxDepth:    cfg.maxDepth,
				minSplit:    cfg.minSamplesSplit,
			}
			for i := range jobs {
				g.rng = rand.New(rand.NewSource(cfg.seed + int64(i)))
				f.Trees[i] = g.grow(bootstrap(g.rng, len(rows)))
			}
		}()
	}

	var err error
dispatch:
	for i := range cfg.trees {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if err != nil {
		return nil, fmt.Errorf("fit canceled: %w", err)
	}
	return f, nil
}

// Predict returns the positive-class probability, averaged over trees, and
// the label derived from it (1 iff probability > 0.5).
func (f *Forest) Predict(row []float64) (int, float64, error) {
	if f == nil || len(f.Trees) == 0 {
		return 0, 0, ErrNotFitted
	}
	if len(row) != f.Features {
		return 0, 0, fmt.Errorf("%w: want %d features, got %d", ErrFeatureCount, f.Features, len(row))
	}
	var sum float64
	for i := range f.Trees {
		p, err := f.Trees[i].predict(row)
		if err != nil {
			return 0, 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += p
	}
	proba := sum / float64(len(f.Trees))
	label := 0
	if proba > 0.5 {
		label = 1
	}
	return label, proba, nil
}

// Validate checks a forest loaded from storage before it serves predictions.
func (f *Forest) Validate() error {
	if f == nil || len(f.Trees) == 0 {
		return ErrNotFitted
	}
	if f.Features <= 0 {
		return fmt.Errorf("%w: feature count %d", ErrCorruptTree, f.Features)
	}
	for i := range f.Trees {
		if err := f.Trees[i].validate(f.Features); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
	}
	return nil
}

func checkInput(rows [][]float64, labels []int) error {
	if len(rows) == 0 {
		return ErrEmptyTrainingSet
	}
	if len(rows) != len(labels) {
		return fmt.Errorf("%w: %d rows, %d labels", ErrShapeMismatch, len(rows), len(labels))
	}
	width := len(rows[0])
	if width == 0 {
		return fmt.Errorf("%w: zero features", ErrShapeMismatch)
	}
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("%w: row %d has %d features, want %d", ErrShapeMismatch, i, len(row), width)
		}
		if labels[i] != 0 && labels[i] != 1 {
			return fmt.Errorf("%w: row %d label %d", ErrInvalidLabel, i, labels[i])
		}
	}
	return nil
}

func bootstrap(rng *rand.Rand, n int) []int {
	sample := make([]int, n)
	for i := range sample {
		sample[i] = rng.Intn(n)
	}
	return sample
}
