package relation

import (
	"encoding/json"
	"testing"
)

// TestUnwrap covers the four cardinality shapes the backend produces.
func TestUnwrap(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  any // nil or expected value of key "a"
	}{
		{"object", map[string]any{"a": 1.0}, 1.0},
		{"singleElementArray", []any{map[string]any{"a": 1.0}}, 1.0},
		{"emptyArray", []any{}, nil},
		{"nil", nil, nil},
		{"scalar", "oops", nil},
		{"arrayOfScalars", []any{42.0}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Unwrap(tt.input)
			if tt.want == nil {
				if got != nil {
					t.Errorf("expected nil, got %v", got)
				}
				return
			}
			if got == nil || got["a"] != tt.want {
				t.Errorf("expected {a:%v}, got %v", tt.want, got)
			}
		})
	}
}

// TestUnwrap_FromJSON verifies the shapes as they actually arrive off the wire.
func TestUnwrap_FromJSON(t *testing.T) {
	var record map[string]any
	payload := `{"id":"inv-1","invoice":[{"a":1}],"session":{"a":1},"school":[],"center":null}`
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if obj := UnwrapField(record, "invoice"); obj == nil || obj["a"] != 1.0 {
		t.Errorf("invoice: expected {a:1}, got %v", obj)
	}
	if obj := UnwrapField(record, "session"); obj == nil || obj["a"] != 1.0 {
		t.Errorf("session: expected {a:1}, got %v", obj)
	}
	if obj := UnwrapField(record, "school"); obj != nil {
		t.Errorf("school: expected nil, got %v", obj)
	}
	if obj := UnwrapField(record, "center"); obj != nil {
		t.Errorf("center: expected nil, got %v", obj)
	}
	if obj := UnwrapField(nil, "anything"); obj != nil {
		t.Errorf("nil record: expected nil, got %v", obj)
	}
}
