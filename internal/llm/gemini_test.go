package llm

import (
	"testing"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, geminiModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema_ToolParameters(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query":       map[string]any{"type": "string", "description": "search terms"},
			"max_results": map[string]any{"type": "integer"},
			"site":        map[string]any{"type": "string", "enum": []any{"youtube.com", "any"}},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"query"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["query"].Description != "search terms" {
		t.Fatalf("description lost: %+v", schema.Properties["query"])
	}
	if schema.Properties["max_results"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER, got %s", schema.Properties["max_results"].Type)
	}
	if len(schema.Properties["site"].Enum) != 2 {
		t.Fatalf("expected 2 enum values, got %d", len(schema.Properties["site"].Enum))
	}
	if schema.Properties["tags"].Items.Type != "STRING" {
		t.Fatalf("expected STRING items, got %s", schema.Properties["tags"].Items.Type)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "query" {
		t.Fatalf("unexpected required %v", schema.Required)
	}
}

func TestBuildGeminiContents_ToolRoundTrip(t *testing.T) {
	contents := buildGeminiContents([]Message{
		{Role: RoleUser, Content: "find videos"},
		{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "1", Name: "web_search", Arguments: []byte(`{"query":"bfs"}`)}}},
		{Role: RoleTool, ToolCallID: "1", ToolName: "web_search", Content: "results"},
	})
	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}
	if contents[1].Role != "model" || contents[1].Parts[0].FunctionCall == nil {
		t.Fatalf("expected model function call, got %+v", contents[1])
	}
	if got := contents[1].Parts[0].FunctionCall.Args["query"]; got != "bfs" {
		t.Fatalf("unexpected args %v", got)
	}
	fr := contents[2].Parts[0].FunctionResponse
	if fr == nil || fr.Name != "web_search" || fr.Response["output"] != "results" {
		t.Fatalf("unexpected function response %+v", fr)
	}
}
