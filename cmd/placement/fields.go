package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// splitField splits "key=value" into (key, value, true).
// Returns ("", "", false) if there is no '=' or key is empty.
func splitField(s string) (string, string, bool) {
	i := strings.IndexByte(s, '=')
	if i <= 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// parseValue decodes v if it looks like a JSON literal (object, array,
// quoted string, boolean, null, or number). Anything else is kept as a
// plain string. Numbers stay json.Number so large ids survive.
func parseValue(v string) any {
	if len(v) == 0 {
		return v
	}
	looksJSON := false
	switch {
	case v[0] == '{', v[0] == '[', v[0] == '"':
		looksJSON = true
	case v == "true", v == "false", v == "null":
		looksJSON = true
	case v[0] == '-' || unicode.IsDigit(rune(v[0])):
		looksJSON = true
	}
	if !looksJSON || !json.Valid([]byte(v)) {
		return v
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(v)))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return v
	}
	return out
}

// parseFields turns repeated -f key=value flags into a record payload.
func parseFields(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := splitField(p)
		if !ok {
			return nil, fmt.Errorf("invalid field %q: expected key=value", p)
		}
		m[k] = parseValue(v)
	}
	return m, nil
}
