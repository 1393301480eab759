package plot

import (
	"fmt"
	"reflect"
)

// ValidationError reports a series argument that is not a one-dimensional
// numeric sequence.
type ValidationError struct {
	Arg    string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Arg, e.Reason)
}

// ParseSeries converts v to a []float64. It accepts slices and arrays whose
// elements are integers or floats; anything else, including nested
// sequences, is rejected.
func ParseSeries(arg string, v any) ([]float64, error) {
	if v == nil {
		return nil, &ValidationError{Arg: arg, Reason: "must be a numeric sequence, got nil"}
	}
	if xs, ok := v.([]float64); ok {
		out := make([]float64, len(xs))
		copy(out, xs)
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
	default:
		return nil, &ValidationError{Arg: arg, Reason: fmt.Sprintf("must be a numeric sequence, got %T", v)}
	}

	switch rv.Type().Elem().Kind() {
	case reflect.Slice, reflect.Array:
		return nil, &ValidationError{Arg: arg, Reason: "must be 1 dimensional"}
	}

	out := make([]float64, rv.Len())
	for i := range out {
		f, ok := toFloat(rv.Index(i))
		if !ok {
			return nil, &ValidationError{
				Arg:    arg,
				Reason: fmt.Sprintf("must be numeric, element %d is %s", i, rv.Index(i).Type()),
			}
		}
		out[i] = f
	}
	return out, nil
}

func toFloat(v reflect.Value) (float64, bool) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return 0, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	default:
		return 0, false
	}
}
