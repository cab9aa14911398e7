package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/cardio/internal/domain/schema"
)

// Decode coerces a loosely-typed JSON object into a Record. Continuous
// fields accept numbers and numeric strings. Categorical fields accept
// numbers (fraction truncated toward zero) and base-10 integer strings.
// Fields are checked in schema order and the first failure is returned.
// Unknown keys are ignored.
func Decode(raw map[string]any) (Record, error) {
	var rec Record
	for _, name := range schema.Continuous() {
		v, ok := raw[name]
		if !ok {
			return Record{}, &FieldError{Field: name, Err: ErrMissingField}
		}
		f, err := toFloat(v)
		if err != nil {
			return Record{}, &FieldError{Field: name, Reason: err.Error(), Err: ErrInvalidValue}
		}
		rec.setContinuous(name, f)
	}
	for _, name := range schema.Categorical() {
		v, ok := raw[name]
		if !ok {
			return Record{}, &FieldError{Field: name, Err: ErrMissingField}
		}
		n, err := toInt(v)
		if err != nil {
			return Record{}, &FieldError{Field: name, Reason: err.Error(), Err: ErrInvalidValue}
		}
		rec.setCategorical(name, n)
	}
	return rec, nil
}

func toFloat(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x.String())
		}
		f = parsed
	case float64:
		f = x
	case int:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert string to float: %q", x)
		}
		f = parsed
	case nil:
		return 0, fmt.Errorf("null is not a number")
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number")
	}
	return f, nil
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case json.Number:
		if n, err := strconv.ParseInt(x.String(), 10, 64); err == nil {
			return int(n), nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", x.String())
		}
		return truncate(f)
	case float64:
		return truncate(x)
	case int:
		return x, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("invalid literal for int: %q", x)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("null is not an integer")
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func truncate(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite number")
	}
	t := math.Trunc(f)
	if t > math.MaxInt32 || t < math.MinInt32 {
		return 0, fmt.Errorf("integer out of range")
	}
	return int(t), nil
}
