// internal/scoring/features.go
package scoring

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Features is the raw bundle an evaluator reads. Values may be typed Go values or
// whatever encoding/json produced for a job variable.
type Features map[string]interface{}

// ScoreInput maps a dimension name to its feature bundle.
type ScoreInput map[string]Features

// Has reports whether key is present and non-nil.
func (f Features) Has(key string) bool {
	if f == nil {
		return false
	}
	v, ok := f[key]
	return ok && v != nil
}

// Float returns a non-negative number for key. Missing, negative, NaN and
// non-numeric values read as 0.
func (f Features) Float(key string) float64 {
	if !f.Has(key) {
		return 0
	}
	n, err := cast.ToFloat64E(f[key])
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n < 0 {
		return 0
	}
	return n
}

// FloatOr is Float with a fallback for absent keys.
func (f Features) FloatOr(key string, def float64) float64 {
	if !f.Has(key) {
		return def
	}
	return f.Float(key)
}

// Int truncates Float.
func (f Features) Int(key string) int {
	return int(f.Float(key))
}

func (f Features) Bool(key string) bool {
	if !f.Has(key) {
		return false
	}
	b, err := cast.ToBoolE(f[key])
	if err != nil {
		return false
	}
	return b
}

// String returns the trimmed string form of key, or "".
func (f Features) String(key string) string {
	if !f.Has(key) {
		return ""
	}
	s, err := cast.ToStringE(f[key])
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// Strings returns a string slice for key. A single string becomes a one-element slice.
func (f Features) Strings(key string) []string {
	if !f.Has(key) {
		return nil
	}
	if s, ok := f[key].(string); ok {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return []string{s}
	}
	out, err := cast.ToStringSliceE(f[key])
	if err != nil {
		return nil
	}
	return out
}

// Floats returns a numeric slice for key, with invalid elements read as 0.
func (f Features) Floats(key string) []float64 {
	if !f.Has(key) {
		return nil
	}
	switch v := f[key].(type) {
	case []float64:
		out := make([]float64, 0, len(v))
		for _, n := range v {
			out = append(out, math.Max(n, 0))
		}
		return out
	case []int:
		out := make([]float64, 0, len(v))
		for _, n := range v {
			out = append(out, math.Max(float64(n), 0))
		}
		return out
	}
	items, err := cast.ToSliceE(f[key])
	if err != nil {
		return nil
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		n, err := cast.ToFloat64E(item)
		if err != nil || math.IsNaN(n) || n < 0 {
			n = 0
		}
		out = append(out, n)
	}
	return out
}

// Maps returns a slice of nested bundles for key, skipping elements that are not objects.
func (f Features) Maps(key string) []Features {
	if !f.Has(key) {
		return nil
	}
	switch v := f[key].(type) {
	case []Features:
		return v
	case []map[string]interface{}:
		out := make([]Features, 0, len(v))
		for _, m := range v {
			out = append(out, Features(m))
		}
		return out
	}
	items, err := cast.ToSliceE(f[key])
	if err != nil {
		return nil
	}
	out := make([]Features, 0, len(items))
	for _, item := range items {
		switch m := item.(type) {
		case Features:
			out = append(out, m)
		case map[string]interface{}:
			out = append(out, Features(m))
		default:
			if sm, err := cast.ToStringMapE(item); err == nil {
				out = append(out, Features(sm))
			}
		}
	}
	return out
}
