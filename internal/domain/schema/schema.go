// Package schema is the fixed registry of patient features and the legal
// values of every categorical feature.
package schema

import "slices"

// Target is the label column of the training data.
const Target = "target"

// Continuous feature names, in canonical column order.
const (
	Age      = "age"
	Trestbps = "trestbps"
	Chol     = "chol"
	Thalach  = "thalach"
	Oldpeak  = "oldpeak"
)

// Categorical feature names, in canonical column order.
const (
	Sex     = "sex"
	CP      = "cp"
	FBS     = "fbs"
	RestECG = "restecg"
	Exang   = "exang"
	Slope   = "slope"
	CA      = "ca"
	Thal    = "thal"
)

var continuous = []string{Age, Trestbps, Chol, Thalach, Oldpeak}

var categorical = []string{Sex, CP, FBS, RestECG, Exang, Slope, CA, Thal}

var domains = map[string][]int{
	Sex:     {0, 1},
	CP:      {0, 1, 2, 3},
	FBS:     {0, 1},
	RestECG: {0, 1, 2},
	Exang:   {0, 1},
	Slope:   {0, 1, 2},
	CA:      {0, 1, 2, 3},
	Thal:    {1, 2, 3},
}

// Continuous returns the continuous feature names.
func Continuous() []string { return slices.Clone(continuous) }

// Categorical returns the categorical feature names.
func Categorical() []string { return slices.Clone(categorical) }

// Fields returns every feature name: continuous first, then categorical.
func Fields() []string {
	out := make([]string, 0, len(continuous)+len(categorical))
	out = append(out, continuous...)
	return append(out, categorical...)
}

// Domain returns the ordered legal values of a categorical feature.
// The second result is false for names that are not categorical.
func Domain(feature string) ([]int, bool) {
	values, ok := domains[feature]
	if !ok {
		return nil, false
	}
	return slices.Clone(values), true
}

// Contains reports whether value is declared for the categorical feature.
func Contains(feature string, value int) bool {
	return slices.Contains(domains[feature], value)
}

// IsContinuous reports whether name is a continuous feature.
func IsContinuous(name string) bool { return slices.Contains(continuous, name) }

// IsCategorical reports whether name is a categorical feature.
func IsCategorical(name string) bool {
	_, ok := domains[name]
	return ok
}
