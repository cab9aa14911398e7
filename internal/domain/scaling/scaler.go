// Package scaling standardizes continuous columns with a mean/std state
// frozen at training time.
package scaling

import (
	"fmt"
	"math"
	"slices"

	"github.com/okian/cardio/internal/domain/encoding"
	"gonum.org/v1/gonum/stat"
)

// State is the per-column mean and population standard deviation.
// Columns that had zero variance at fit time carry Std = 1.
type State struct {
	Columns []string  `json:"columns"`
	Mean    []float64 `json:"mean"`
	Std     []float64 `json:"std"`
	// Constant lists the columns whose fit variance was zero.
	Constant []string `json:"constant,omitempty"`
}

// Fit computes the state from data, where data[j] holds every training
// value of columns[j].
func Fit(columns []string, data [][]float64) (State, error) {
	if len(columns) == 0 {
		return State{}, ErrNoColumns
	}
	if len(columns) != len(data) {
		return State{}, fmt.Errorf("%w: %d columns, %d series", ErrDimensionMismatch, len(columns), len(data))
	}
	s := State{
		Columns: slices.Clone(columns),
		Mean:    make([]float64, len(columns)),
		Std:     make([]float64, len(columns)),
	}
	for j, series := range data {
		if len(series) == 0 {
			return State{}, fmt.Errorf("%w: column %s", ErrEmptySeries, columns[j])
		}
		mean, variance := stat.PopMeanVariance(series, nil)
		std := math.Sqrt(variance)
		if std == 0 || math.IsNaN(std) {
			std = 1
			s.Constant = append(s.Constant, columns[j])
		}
		s.Mean[j] = mean
		s.Std[j] = std
	}
	return s, nil
}

// Degenerate reports whether any column was constant at fit time.
func (s State) Degenerate() bool { return len(s.Constant) > 0 }

// Transform applies (x - mean) / std to values laid out like s.Columns.
func (s State) Transform(values []float64) ([]float64, error) {
	if len(values) != len(s.Columns) {
		return nil, fmt.Errorf("%w: want %d values, got %d", ErrDimensionMismatch, len(s.Columns), len(values))
	}
	out := make([]float64, len(values))
	for j, x := range values {
		out[j] = (x - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}

// TransformVector returns a copy of v with the state's columns standardized.
// Columns the state does not know are copied unchanged.
func (s State) TransformVector(v encoding.Vector) (encoding.Vector, error) {
	out := encoding.Vector{Columns: v.Columns, Values: slices.Clone(v.Values)}
	for j, name := range s.Columns {
		i := v.Columns.Index(name)
		if i < 0 {
			return encoding.Vector{}, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		out.Values[i] = (v.Values[i] - s.Mean[j]) / s.Std[j]
	}
	return out, nil
}

// Validate checks that the state is internally consistent.
func (s State) Validate() error {
	if len(s.Columns) == 0 {
		return ErrNoColumns
	}
	if len(s.Mean) != len(s.Columns) || len(s.Std) != len(s.Columns) {
		return fmt.Errorf("%w: columns/mean/std lengths differ", ErrDimensionMismatch)
	}
	for j, std := range s.Std {
		if std <= 0 || math.IsNaN(std) || math.IsInf(std, 0) {
			return fmt.Errorf("%w: column %s", ErrInvalidStd, s.Columns[j])
		}
	}
	return nil
}
