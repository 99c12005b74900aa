package model

import (
	"fmt"
	"reflect"
)

// TypeName returns the runtime type tag of a decoded JSON value:
// string, number, boolean, array, object or null.
func TypeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64:
		return "number"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return reflect.TypeOf(v).Kind().String()
	}
}

// Numeric converts supported value types to float64. The second return is
// false for non-numeric values, which aggregate functions exclude.
func Numeric(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	default:
		return 0, false
	}
}

// Stringify renders a value for composite keys and lexicographic comparison.
func Stringify(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}
