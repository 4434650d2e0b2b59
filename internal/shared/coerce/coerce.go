// Package coerce converts loosely typed JSON values, as returned by the REST data store,
// into concrete Go values.
//
// PostgREST returns numeric and boolean columns either as JSON primitives or as strings
// depending on the column type, so every reader goes through these helpers.
package coerce

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// String returns v as a string. nil yields ("", false).
// Non-string values are formatted, so a numeric id still becomes a usable string.
func String(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	default:
		return fmt.Sprint(x), true
	}
}

// StringPtr is String returning nil for absent values.
func StringPtr(v any) *string {
	s, ok := String(v)
	if !ok {
		return nil
	}
	return &s
}

// Float parses numbers and numeric strings.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Int parses integral numbers and integer strings.
// Fractional numbers and strings like "1.5" are rejected.
func Int(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) {
			return 0, false
		}
		return int(x), true
	case int:
		return x, true
	case int64:
		return int(x), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// IntPtr is Int returning nil for absent or unparseable values.
func IntPtr(v any) *int {
	n, ok := Int(v)
	if !ok {
		return nil
	}
	return &n
}

// Bool interprets v with the given set of truthy strings (compared lower-cased and trimmed).
// Numbers are true when non-zero; nil is false.
func Bool(v any, truthy ...string) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		for _, t := range truthy {
			if s == t {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// Flag parses a boolean query value the way the frontend sends them:
// 1/0, true/false, t/f, yes/no, y/n and on/off, case-insensitive.
func Flag(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, true
	case "0", "false", "f", "no", "n", "off":
		return false, true
	}
	return false, false
}

// Upper upper-cases string values and leaves everything else untouched.
func Upper(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.ToUpper(s), true
}

// timeLayouts covers timestamptz (with offset) and plain timestamp columns.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
}

// Time parses a timestamp string as returned by PostgREST.
func Time(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, x); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// TimePtr is Time returning nil for absent or unparseable values.
func TimePtr(v any) *time.Time {
	t, ok := Time(v)
	if !ok {
		return nil
	}
	return &t
}
