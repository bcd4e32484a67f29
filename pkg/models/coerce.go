package models

import (
	"encoding/json"
	"strconv"
)

// CoerceFloat converts the loosely typed values a JSON market feed can
// carry into a float64. The bool result reports whether the value was
// numeric; callers decide how strict to be about failures.
func CoerceFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// CoerceString converts a value to string, reporting whether it was one.
func CoerceString(value interface{}) (string, bool) {
	s, ok := value.(string)
	return s, ok
}
