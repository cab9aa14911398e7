// Package encoding turns patient records into fixed-layout numeric vectors.
//
// Continuous features are copied as-is; every categorical feature expands
// into one 0/1 indicator column per declared value, named {feature}_{value}.
// When a Feature Name Ordering is supplied, the output has exactly that
// column set and order, whatever values the record carried.
package encoding

import (
	"slices"
	"strconv"

	"github.com/okian/cardio/internal/domain/model"
	"github.com/okian/cardio/internal/domain/schema"
)

// Ordering is the canonical list of encoded column names fed to the model.
type Ordering []string

// Index returns the position of name, or -1.
func (o Ordering) Index(name string) int { return slices.Index(o, name) }

// Equal reports whether both orderings hold the same names in the same order.
func (o Ordering) Equal(other Ordering) bool { return slices.Equal(o, other) }

// Vector is an encoded record. Columns and Values have equal length.
type Vector struct {
	Columns Ordering
	Values  []float64
}

// Get returns the value of a named column.
func (v Vector) Get(name string) (float64, bool) {
	i := v.Columns.Index(name)
	if i < 0 {
		return 0, false
	}
	return v.Values[i], true
}

// ColumnName is the indicator column name for a categorical value.
func ColumnName(feature string, value int) string {
	return feature + "_" + strconv.Itoa(value)
}

// DefaultOrdering is the layout Encode produces without a known ordering.
func DefaultOrdering() Ordering {
	cols := make(Ordering, 0, 32)
	cols = append(cols, schema.Continuous()...)
	for _, feature := range schema.Categorical() {
		values, _ := schema.Domain(feature)
		for _, v := range values {
			cols = append(cols, ColumnName(feature, v))
		}
	}
	return cols
}

// Encode builds the vector for rec. With a nil ordering the default layout
// is used; otherwise the result follows known exactly, with 0 for columns
// the record did not produce.
func Encode(rec model.Record, known Ordering) Vector {
	cols := DefaultOrdering()
	values := make([]float64, len(cols))
	i := 0
	for _, name := range schema.Continuous() {
		values[i], _ = rec.Continuous(name)
		i++
	}
	for _, feature := range schema.Categorical() {
		code, _ := rec.Categorical(feature)
		domain, _ := schema.Domain(feature)
		for _, v := range domain {
			if code == v {
				values[i] = 1
			}
			i++
		}
	}
	if known == nil {
		return Vector{Columns: cols, Values: values}
	}
	return align(Vector{Columns: cols, Values: values}, known)
}

// align rebuilds v column by column following known.
func align(v Vector, known Ordering) Vector {
	byName := make(map[string]float64, len(v.Columns))
	for i, name := range v.Columns {
		byName[name] = v.Values[i]
	}
	out := Vector{
		Columns: slices.Clone(known),
		Values:  make([]float64, len(known)),
	}
	for i, name := range known {
		out.Values[i] = byName[name]
	}
	return out
}

// DeriveOrdering returns the union of the vectors' columns in first-seen order.
func DeriveOrdering(vectors []Vector) Ordering {
	seen := make(map[string]struct{})
	var out Ordering
	for _, v := range vectors {
		for _, name := range v.Columns {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
