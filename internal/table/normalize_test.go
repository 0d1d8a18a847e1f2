package table

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		a, b any
		same bool
	}{
		{"numeric string vs number", "42", float64(42), true},
		{"json number vs int", json.Number("7"), 7, true},
		{"decimal string", "2.50", 2.5, true},
		{"timestamp vs date", "2024-06-01T00:00:00Z", "2024-06-01", true},
		{"time vs date string", day, "2024-06-01", true},
		{"space separated timestamp", "2024-06-01 09:30:00", day, true},
		{"nil vs empty", nil, "", true},
		{"nil vs blank", nil, "   ", true},
		{"different dates", "2024-06-01", "2024-06-02", false},
		{"different numbers", "42", 43, false},
		{"text vs number", "abc", 0, false},
		{"bool", true, true, true},
		{"bool vs string", true, "true", false},
		{"slices", []any{"a"}, []any{"a"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize(tt.a) == normalize(tt.b)
			if got != tt.same {
				t.Errorf("normalize(%v) == normalize(%v) = %v, want %v", tt.a, tt.b, got, tt.same)
			}
		})
	}
}

func TestUnchanged_OnlyPayloadFields(t *testing.T) {
	original := map[string]any{"id": "1", "name": "CSE", "code": "CS"}
	if !unchanged(original, map[string]any{"name": "CSE"}) {
		t.Error("subset payload reported as a change")
	}
	if unchanged(original, map[string]any{"name": "CSE", "code": "CE"}) {
		t.Error("changed code reported as unchanged")
	}
	if unchanged(original, map[string]any{"head": "Dr. Rao"}) {
		t.Error("new field reported as unchanged")
	}
	if !unchanged(original, map[string]any{"head": nil}) {
		t.Error("nil for a missing field reported as a change")
	}
}
