package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
)

// ParseHumanDuration parses durations in both Go form ("1h30m") and human
// form ("1d12h", "1w").
func ParseHumanDuration(s string) (time.Duration, error) {
	return str2duration.ParseDuration(strings.TrimSpace(s))
}

// ParseAnyDuration parses a duration from common forms. Returns false when
// unsupported.
//
// Notes on numeric handling:
//   - int, int64: interpreted as time.Duration units directly.
//   - float64: fractional values are truncated (not rounded) to their integer
//     part before conversion. This is intentional and locked by tests.
func ParseAnyDuration(v any) (time.Duration, bool) {
	switch t := v.(type) {
	case time.Duration:
		return t, true
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, false
		}
		if d, err := ParseHumanDuration(t); err == nil {
			return d, true
		}
		return 0, false
	case int:
		return time.Duration(t), true
	case int64:
		return time.Duration(t), true
	case float64:
		return time.Duration(int64(t)), true
	default:
		return 0, false
	}
}

// ParseAnyInt parses an integer from common forms. Returns false when
// unsupported or lossy.
func ParseAnyInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int32:
		return int(t), true
	case int64:
		return int(t), true
	case float64:
		if t == float64(int(t)) {
			return int(t), true
		}
		return 0, false
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, false
		}
		if iv, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return iv, true
		}
		return 0, false
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// ParseAnyFloat parses a float from common forms. Returns false when
// unsupported.
func ParseAnyFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		if strings.TrimSpace(t) == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f, true
		}
		return 0, false
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// ParseAnyBool parses a boolean from common forms. Returns false when
// unsupported.
func ParseAnyBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(t)); err == nil {
			return b, true
		}
		return false, false
	case int:
		return t != 0, true
	default:
		return false, false
	}
}

// ToStringMap converts supported map forms into map[string]string.
// Note: For map[string]string inputs, this returns a copy to avoid aliasing.
// Unsupported inputs return nil.
func ToStringMap(v any) map[string]string {
	if v == nil {
		return nil
	}
	out := map[string]string{}
	switch m := v.(type) {
	case map[string]string:
		for k, vv := range m {
			out[k] = vv
		}
		return out
	case map[string]any:
		for k, vv := range m {
			if s, ok := vv.(string); ok {
				out[k] = s
			}
		}
		return out
	default:
		return nil
	}
}
