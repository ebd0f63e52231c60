package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number is a loosely typed numeric document field.
// Profiles written by the mobile client keep scores as strings while seeded
// documents keep them as JSON numbers, so the raw value is preserved and
// interpreted on demand.
type Number struct {
	raw any
}

// NumberOf wraps a raw document value.
func NumberOf(v any) Number {
	if n, ok := v.(Number); ok {
		return n
	}
	return Number{raw: v}
}

// Raw returns the value as it was stored in the document.
func (n Number) Raw() any { return n.raw }

// IsSet reports whether the field was present at all.
func (n Number) IsSet() bool { return n.raw != nil }

// Truthy reports whether the raw value counts as present: missing values,
// empty strings, zero and false do not.
func (n Number) Truthy() bool {
	switch v := n.raw.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	}

	if f, ok := toFloat(n.raw); ok {
		return f != 0 && !math.IsNaN(f)
	}

	return true
}

// Int parses the value as an integer the way document scores are entered:
// leading whitespace, an optional sign and at least one leading digit.
// Trailing garbage is ignored and fractional numbers are truncated.
func (n Number) Int() (int, bool) {
	switch v := n.raw.(type) {
	case nil, bool:
		return 0, false
	case string:
		return leadingInt(v)
	case json.Number:
		return leadingInt(v.String())
	}

	f, ok := toFloat(n.raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

// Float parses the value as a float. Strings must hold a complete number.
func (n Number) Float() (float64, bool) {
	switch v := n.raw.(type) {
	case nil, bool:
		return 0, false
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}

	f, ok := toFloat(n.raw)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func (n Number) String() string {
	if n.raw == nil {
		return ""
	}
	if f, ok := n.raw.(float64); ok && f == math.Trunc(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", n.raw)
}

// MarshalJSON writes the raw value back unchanged.
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.raw)
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	v, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return v, true
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}
