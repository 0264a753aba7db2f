package formschema

import (
	"math"
	"strconv"
	"strings"
)

// MissingRequired returns the ids of required fields whose value in data is
// absent, null, the empty string or an empty array, in field order.
func MissingRequired(fields []Field, data map[string]any) []string {
	missing := []string{}
	for _, f := range fields {
		if !f.Required {
			continue
		}
		if isBlank(data[f.ID]) {
			missing = append(missing, f.ID)
		}
	}
	return missing
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	default:
		return false
	}
}

// DurationMinutes returns end minus start in minutes for two "HH:MM" clock
// values. A missing minute part counts as zero. It reports false when either
// value is empty, the hours do not parse or the difference is not positive.
func DurationMinutes(start, end any) (float64, bool) {
	if !truthy(start) || !truthy(end) {
		return 0, false
	}
	s, ok := clockMinutes(asString(start))
	if !ok {
		return 0, false
	}
	e, ok := clockMinutes(asString(end))
	if !ok {
		return 0, false
	}
	diff := e - s
	if diff <= 0 || math.IsInf(diff, 0) || math.IsNaN(diff) {
		return 0, false
	}
	return diff, true
}

func clockMinutes(v string) (float64, bool) {
	parts := strings.Split(v, ":")
	hours, ok := parseNumber(parts[0])
	if !ok {
		return 0, false
	}
	minutes := 0.0
	if len(parts) > 1 {
		if m, ok := parseNumber(parts[1]); ok {
			minutes = m
		}
	}
	return hours*60 + minutes, true
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) {
		return 0, false
	}
	return n, true
}
