// Package fields resolves logical attributes out of semi-structured provider JSON.
//
// A Registry lists, per logical attribute, the candidate paths to try in order.
// Paths use dots for nested objects and decimal segments for array indexes
// ("data.0.0.rating"). The first candidate holding a usable value wins.
package fields

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Registry maps a logical attribute to its ordered candidate paths.
type Registry map[string][]string

// Lookup walks path through nested maps and slices. It returns nil when any
// segment is missing.
func Lookup(m map[string]any, path string) any {
	var cur any = m
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil
			}
			cur = node[i]
		default:
			return nil
		}
	}
	return cur
}

// String returns the first non-empty string among the candidates of key.
// Numbers are formatted without exponent so numeric ids resolve too.
func (r Registry) String(m map[string]any, key string) string {
	for _, p := range r[key] {
		if s, ok := ToString(Lookup(m, p)); ok && s != "" {
			return s
		}
	}
	return ""
}

// Float returns the first candidate of key that parses as a number.
func (r Registry) Float(m map[string]any, key string) (float64, bool) {
	for _, p := range r[key] {
		if f, ok := ToFloat(Lookup(m, p)); ok {
			return f, true
		}
	}
	return 0, false
}

// Int is Float rounded to the nearest integer.
func (r Registry) Int(m map[string]any, key string) (int, bool) {
	f, ok := r.Float(m, key)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}

// Map returns the first candidate of key that is a non-empty JSON object.
func (r Registry) Map(m map[string]any, key string) map[string]any {
	for _, p := range r[key] {
		if v, ok := Lookup(m, p).(map[string]any); ok && len(v) > 0 {
			return v
		}
	}
	return nil
}

// Slice returns the first candidate of key that is a JSON array.
// An empty array still wins so callers can tell "no records" from "no field".
func (r Registry) Slice(m map[string]any, key string) ([]any, bool) {
	for _, p := range r[key] {
		if v, ok := Lookup(m, p).([]any); ok {
			return v, true
		}
	}
	return nil, false
}

// ToString accepts strings and JSON numbers.
func ToString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	}
	return "", false
}

// ToFloat accepts JSON numbers and numeric strings ("4,5" included).
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, !math.IsNaN(t) && !math.IsInf(t, 0)
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
