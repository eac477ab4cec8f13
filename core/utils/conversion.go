package utils

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToInt64 converts a decoded record value to int64 using explicit type switching.
// Unlike a lenient cast it reports ok=false for anything that is not an exact integer:
// fractional floats, out-of-range unsigned values, non-numeric strings, nil and booleans.
func ToInt64(val any) (int64, bool) {
	switch v := val.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		return floatToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case json.Number:
		return parseInt64(string(v))
	case string:
		return parseInt64(v)
	case []byte:
		return parseInt64(string(v))
	default:
		return 0, false
	}
}

func parseInt64(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	// Whole numbers written with a fraction or exponent, e.g. "10.0" or "1e3".
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return floatToInt64(f)
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
