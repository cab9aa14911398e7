// Package model contains domain models passed between layers.
package model

import (
	"github.com/okian/cardio/internal/domain/schema"
)

// Record is one patient's raw feature values. Continuous features are
// floats and categorical features are integer codes from the schema.
type Record struct {
	Age      float64 `json:"age"`
	Trestbps float64 `json:"trestbps"` // resting blood pressure, mm Hg
	Chol     float64 `json:"chol"`     // serum cholesterol, mg/dl
	Thalach  float64 `json:"thalach"`  // max heart rate achieved
	Oldpeak  float64 `json:"oldpeak"`  // ST depression induced by exercise

	Sex     int `json:"sex"`
	CP      int `json:"cp"`
	FBS     int `json:"fbs"`
	RestECG int `json:"restecg"`
	Exang   int `json:"exang"`
	Slope   int `json:"slope"`
	CA      int `json:"ca"`
	Thal    int `json:"thal"`
}

// Labeled is a training row: a record plus its 0/1 target.
type Labeled struct {
	Record
	Target int
}

// Continuous returns the value of a continuous feature.
func (r Record) Continuous(name string) (float64, bool) {
	switch name {
	case schema.Age:
		return r.Age, true
	case schema.Trestbps:
		return r.Trestbps, true
	case schema.Chol:
		return r.Chol, true
	case schema.Thalach:
		return r.Thalach, true
	case schema.Oldpeak:
		return r.Oldpeak, true
	}
	return 0, false
}

// Categorical returns the code of a categorical feature.
func (r Record) Categorical(name string) (int, bool) {
	switch name {
	case schema.Sex:
		return r.Sex, true
	case schema.CP:
		return r.CP, true
	case schema.FBS:
		return r.FBS, true
	case schema.RestECG:
		return r.RestECG, true
	case schema.Exang:
		return r.Exang, true
	case schema.Slope:
		return r.Slope, true
	case schema.CA:
		return r.CA, true
	case schema.Thal:
		return r.Thal, true
	}
	return 0, false
}

// setContinuous and setCategorical are the write side used by Decode.
func (r *Record) setContinuous(name string, v float64) {
	switch name {
	case schema.Age:
		r.Age = v
	case schema.Trestbps:
		r.Trestbps = v
	case schema.Chol:
		r.Chol = v
	case schema.Thalach:
		r.Thalach = v
	case schema.Oldpeak:
		r.Oldpeak = v
	}
}

func (r *Record) setCategorical(name string, v int) {
	switch name {
	case schema.Sex:
		r.Sex = v
	case schema.CP:
		r.CP = v
	case schema.FBS:
		r.FBS = v
	case schema.RestECG:
		r.RestECG = v
	case schema.Exang:
		r.Exang = v
	case schema.Slope:
		r.Slope = v
	case schema.CA:
		r.CA = v
	case schema.Thal:
		r.Thal = v
	}
}

// Validate checks every categorical code against its declared domain.
// The first violation is returned as a *FieldError wrapping ErrOutOfDomain.
func (r Record) Validate() error {
	for _, name := range schema.Categorical() {
		v, _ := r.Categorical(name)
		if !schema.Contains(name, v) {
			return &FieldError{Field: name, Reason: "value not in declared domain", Err: ErrOutOfDomain}
		}
	}
	return nil
}

// OutOfDomain lists the categorical features whose code is not declared.
func (r Record) OutOfDomain() []string {
	var out []string
	for _, name := range schema.Categorical() {
		v, _ := r.Categorical(name)
		if !schema.Contains(name, v) {
			out = append(out, name)
		}
	}
	return out
}
