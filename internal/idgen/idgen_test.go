package idgen

import (
	"regexp"
	"testing"
)

func TestGenerateWithPrefix_Length(t *testing.T) {
	id, err := GenerateWithPrefix(PrefixRequest)
	if err != nil {
		t.Fatalf("GenerateWithPrefix() error: %v", err)
	}
	wantLen := len(PrefixRequest) + Length
	if len(id) != wantLen {
		t.Errorf("GenerateWithPrefix() length = %d, want %d (id=%q)", len(id), wantLen, id)
	}
}

func TestHelpers_Prefixes(t *testing.T) {
	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"request", RequestID, PrefixRequest},
		{"notification", NotificationID, PrefixNotification},
		{"origin", OriginID, PrefixOrigin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(tt.prefix) + `[a-zA-Z0-9]+$`)
			id := tt.gen()
			if !pattern.MatchString(id) {
				t.Errorf("%s() = %q, does not match %s", tt.name, id, pattern)
			}
		})
	}
}

func TestGenerate_Uniqueness(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for i := 0; i < 1000; i++ {
		id := RequestID()
		if seen[id] {
			t.Fatalf("duplicate ID on iteration %d: %q", i, id)
		}
		seen[id] = true
	}
}
