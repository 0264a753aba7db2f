package formschema

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// truthy mirrors the loose boolean coercion legacy records were written with.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// trimmedStrings keeps the trimmed, non-empty string members of v.
func trimmedStrings(v []any) []string {
	out := make([]string, 0, len(v))
	for _, item := range v {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CloneValue deep-copies a JSON-shaped value (maps, slices and scalars).
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = CloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = CloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// CloneMap deep-copies a JSON object. A nil map stays nil.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return CloneValue(m).(map[string]any)
}

// canonicalJSON renders v with sorted object keys regardless of whether v is
// a struct, a map or a raw decoded value.
func canonicalJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil
	}
	out, err := json.Marshal(generic)
	if err != nil {
		return nil
	}
	return out
}

// SameJSON reports whether a and b encode to the same JSON document once
// object keys are sorted.
func SameJSON(a, b any) bool {
	ca, cb := canonicalJSON(a), canonicalJSON(b)
	return ca != nil && cb != nil && bytes.Equal(ca, cb)
}
