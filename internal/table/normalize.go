package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// normalize maps equivalent representations of a field value to one
// comparable value: numeric strings and numbers become float64, dates become
// YYYY-MM-DD, and nil becomes "".
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return normalizeString(t)
	case json.Number:
		return normalizeString(t.String())
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case bool:
		return t
	case time.Time:
		return t.UTC().Format(time.DateOnly)
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.UTC().Format(time.DateOnly)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func normalizeString(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(time.DateOnly)
		}
	}
	return s
}

// unchanged reports whether applying payload to original would change
// nothing. Only the fields present in payload are compared.
func unchanged(original, payload map[string]any) bool {
	for k, v := range payload {
		if normalize(v) != normalize(original[k]) {
			return false
		}
	}
	return true
}
