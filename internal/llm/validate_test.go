package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func searchSchema() *Schema {
	return &Schema{
		Name:        "search-args-test",
		Description: "web search arguments",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query":       map[string]any{"type": "string", "minLength": 1},
				"max_results": map[string]any{"type": "integer", "minimum": 1, "maximum": 10},
				"depth":       map[string]any{"type": "string", "enum": []any{"basic", "advanced"}},
			},
			"required":             []any{"query"},
			"additionalProperties": false,
		},
	}
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"query":"dijkstra","max_results":3,"depth":"basic"}`, false},
		{"optional omitted", `{"query":"dijkstra"}`, false},
		{"missing required", `{"max_results":3}`, true},
		{"wrong type", `{"query":"x","max_results":"three"}`, true},
		{"out of range", `{"query":"x","max_results":50}`, true},
		{"bad enum", `{"query":"x","depth":"deep"}`, true},
		{"extra property", `{"query":"x","page":2}`, true},
		{"malformed", `{"query":`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(searchSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T", err)
				}
			}
		})
	}
}

func TestValidateJSON_NilSchema(t *testing.T) {
	if err := ValidateJSON(nil, json.RawMessage(`anything`)); err != nil {
		t.Fatalf("expected nil schema to accept, got %v", err)
	}
}

func TestValidateJSON_CachesCompiledSchema(t *testing.T) {
	s := searchSchema()
	s.Name = "search-args-cache"
	if err := ValidateJSON(s, json.RawMessage(`{"query":"a"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := schemaCache.Load(s.Name); !ok {
		t.Fatal("expected compiled schema to be cached")
	}
}
