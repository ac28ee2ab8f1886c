// Package agent runs a bounded tool-calling loop on top of an llm.Provider.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/tmc/langchaingo/tools"
)

// Tool is a function the model may call. Call receives the raw JSON
// arguments after they have been validated against Schema.
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]any
	Call(ctx context.Context, args json.RawMessage) (string, error)
}

// SchemaFor reflects T's JSON Schema, inlined and closed to extra keys.
func SchemaFor[T any]() map[string]any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	s := r.Reflect(v)

	raw, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("agent: marshal schema for %T: %v", v, err))
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		panic(fmt.Sprintf("agent: decode schema for %T: %v", v, err))
	}
	delete(m, "$schema")
	delete(m, "$id")
	return m
}

// SearchArgs are the arguments of a web search call.
type SearchArgs struct {
	Query string `json:"query" jsonschema:"required,minLength=1,description=What to search the web for"`
}

// SearchTool adapts a langchaingo search tool to the agent's JSON calling
// convention.
type SearchTool struct {
	search tools.Tool
	schema map[string]any
}

func NewSearchTool(search tools.Tool) *SearchTool {
	return &SearchTool{search: search, schema: SchemaFor[SearchArgs]()}
}

func (s *SearchTool) Name() string { return "web_search" }

func (s *SearchTool) Description() string {
	return "Search the web and return page titles, URLs and snippets."
}

func (s *SearchTool) Schema() map[string]any { return s.schema }

func (s *SearchTool) Call(ctx context.Context, args json.RawMessage) (string, error) {
	var in SearchArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("parse search arguments: %w", err)
	}
	return s.search.Call(ctx, in.Query)
}
