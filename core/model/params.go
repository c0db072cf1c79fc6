package model

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	mlerrors "github.com/YuminosukeSato/mentoraid/pkg/errors"
)

// Hyperparameter values arrive from Go code, from YAML grids and from gob
// snapshots, so the same logical value may be an int, an int64 or a float64.
// The helpers below coerce them and report a ValidationError otherwise.
// A nil value is "None".

// ParamInt coerces v to an int. Floats must be integral.
func ParamInt(name string, v interface{}) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case uint:
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, mlerrors.NewValidationError(name, "must be an integer", v)
		}
		return int(x), nil
	default:
		return 0, mlerrors.NewValidationError(name, "must be an integer", v)
	}
}

// ParamOptionalInt is ParamInt where nil means "None" and is reported with ok=false.
func ParamOptionalInt(name string, v interface{}) (value int, ok bool, err error) {
	if v == nil {
		return 0, false, nil
	}
	value, err = ParamInt(name, v)
	return value, err == nil, err
}

// ParamFloat coerces v to a float64.
func ParamFloat(name string, v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	default:
		return 0, mlerrors.NewValidationError(name, "must be a number", v)
	}
}

// ParamString coerces v to a string. nil maps to "none" so that the
// scikit-learn spelling None and the lower-case "none" are interchangeable.
func ParamString(name string, v interface{}) (string, error) {
	switch x := v.(type) {
	case nil:
		return "none", nil
	case string:
		return x, nil
	default:
		return "", mlerrors.NewValidationError(name, "must be a string", v)
	}
}

// ParamBool coerces v to a bool.
func ParamBool(name string, v interface{}) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, mlerrors.NewValidationError(name, "must be a boolean", v)
	}
	return b, nil
}

// ParamOneOf checks that s is one of allowed.
func ParamOneOf(name, s string, allowed ...string) error {
	for _, a := range allowed {
		if s == a {
			return nil
		}
	}
	return mlerrors.NewValidationError(name, fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")), s)
}

// FormatParamValue renders a single value the way Python prints it inside
// a dict: strings quoted, nil as None, integral numbers without a decimal point.
func FormatParamValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return "'" + x + "'"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1e15 {
			return strconv.FormatFloat(x, 'f', 1, 64)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// FormatParams renders params as a Python-style dict with sorted keys,
// e.g. {'C': 10, 'kernel': 'rbf'}.
func FormatParams(params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("'" + k + "': ")
		b.WriteString(FormatParamValue(params[k]))
	}
	b.WriteByte('}')
	return b.String()
}

// StringParams renders every value with FormatParamValue.
func StringParams(params map[string]interface{}) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = FormatParamValue(v)
	}
	return out
}
