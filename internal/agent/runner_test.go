package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/llm"
)

type fakeSearch struct {
	queries []string
	err     error
}

func (f *fakeSearch) Name() string        { return "fake" }
func (f *fakeSearch) Description() string { return "fake search" }
func (f *fakeSearch) Call(_ context.Context, q string) (string, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return "", f.err
	}
	return "URL: https://www.youtube.com/watch?v=" + strings.ReplaceAll(q, " ", "_"), nil
}

func searchCall(id, query string) llm.ToolCall {
	args, _ := json.Marshal(map[string]string{"query": query})
	return llm.ToolCall{ID: id, Name: "web_search", Arguments: args}
}

func TestSchemaFor(t *testing.T) {
	s := SchemaFor[SearchArgs]()
	if s["type"] != "object" {
		t.Fatalf("expected object schema, got %v", s["type"])
	}
	if _, ok := s["$schema"]; ok {
		t.Fatal("$schema must be stripped")
	}
	props, ok := s["properties"].(map[string]any)
	if !ok || props["query"] == nil {
		t.Fatalf("missing query property: %v", s)
	}
	req, _ := s["required"].([]any)
	if len(req) != 1 || req[0] != "query" {
		t.Fatalf("query must be required, got %v", s["required"])
	}
}

func TestRunnerAnswersWithoutTools(t *testing.T) {
	mock := llm.NewMockProvider(llm.Text("  plain answer "))
	r, err := NewRunner(mock, Options{}, NewSearchTool(&fakeSearch{}))
	if err != nil {
		t.Fatal(err)
	}

	res, err := r.Run(context.Background(), "sys", "find videos")
	if err != nil {
		t.Fatal(err)
	}
	if res.Output != "plain answer" || res.ToolCalls != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(mock.LastCall().Tools) != 1 || mock.LastCall().Tools[0].Name != "web_search" {
		t.Fatalf("tools not offered: %+v", mock.LastCall().Tools)
	}
}

func TestRunnerExecutesToolThenAnswers(t *testing.T) {
	search := &fakeSearch{}
	mock := llm.NewMockProvider(
		llm.MockResponse{ToolCalls: []llm.ToolCall{searchCall("c1", "dijkstra")}},
		llm.Text("https://www.youtube.com/watch?v=dijkstra"),
	)
	r, _ := NewRunner(mock, Options{}, NewSearchTool(search))

	res, err := r.Run(context.Background(), "sys", "find videos")
	if err != nil {
		t.Fatal(err)
	}
	if res.ToolCalls != 1 || len(search.queries) != 1 || search.queries[0] != "dijkstra" {
		t.Fatalf("unexpected tool usage %+v %v", res, search.queries)
	}

	second := mock.Calls[1]
	if len(second.Messages) != 3 {
		t.Fatalf("expected user, assistant, tool messages; got %d", len(second.Messages))
	}
	toolMsg := second.Messages[2]
	if toolMsg.Role != llm.RoleTool || toolMsg.ToolCallID != "c1" || !strings.Contains(toolMsg.Content, "youtube") {
		t.Fatalf("unexpected tool message %+v", toolMsg)
	}
}

func TestRunnerStopsAfterThreeToolCalls(t *testing.T) {
	search := &fakeSearch{}
	mock := llm.NewMockProvider(
		llm.MockResponse{ToolCalls: []llm.ToolCall{searchCall("c1", "a"), searchCall("c2", "b")}},
		llm.MockResponse{ToolCalls: []llm.ToolCall{searchCall("c3", "c"), searchCall("c4", "d")}},
		llm.Text("final"),
	)
	r, _ := NewRunner(mock, Options{}, NewSearchTool(search))

	res, err := r.Run(context.Background(), "sys", "find videos")
	if err != nil {
		t.Fatal(err)
	}
	if res.ToolCalls != 3 || len(search.queries) != 3 {
		t.Fatalf("expected exactly 3 searches, got %d (%v)", res.ToolCalls, search.queries)
	}
	if res.Output != "final" {
		t.Fatalf("unexpected output %q", res.Output)
	}

	final := mock.LastCall()
	if len(final.Tools) != 0 {
		t.Fatal("final request must not offer tools")
	}
	if !strings.Contains(final.Messages[0].Content, "watch?v=c") {
		t.Fatal("final request must carry tool results")
	}
}

func TestRunnerReportsBadArgumentsToModel(t *testing.T) {
	search := &fakeSearch{}
	mock := llm.NewMockProvider(
		llm.MockResponse{ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: "web_search", Arguments: json.RawMessage(`{"q":"wrong key"}`)},
			{ID: "c2", Name: "nope", Arguments: json.RawMessage(`{}`)},
		}},
		llm.Text("done"),
	)
	r, _ := NewRunner(mock, Options{}, NewSearchTool(search))

	res, err := r.Run(context.Background(), "sys", "u")
	if err != nil {
		t.Fatal(err)
	}
	if len(search.queries) != 0 {
		t.Fatal("invalid arguments must not reach the tool")
	}
	if res.Output != "done" {
		t.Fatalf("unexpected output %q", res.Output)
	}
	msgs := mock.LastCall().Messages
	if !strings.HasPrefix(msgs[2].Content, "error: invalid arguments") {
		t.Fatalf("expected validation error, got %q", msgs[2].Content)
	}
	if !strings.Contains(msgs[3].Content, "unknown tool") {
		t.Fatalf("expected unknown tool error, got %q", msgs[3].Content)
	}
}

func TestRunnerToolErrorIsObservation(t *testing.T) {
	search := &fakeSearch{err: errors.New("search down")}
	mock := llm.NewMockProvider(
		llm.MockResponse{ToolCalls: []llm.ToolCall{searchCall("c1", "x")}},
		llm.Text("sorry"),
	)
	r, _ := NewRunner(mock, Options{}, NewSearchTool(search))

	res, err := r.Run(context.Background(), "sys", "u")
	if err != nil || res.Output != "sorry" {
		t.Fatalf("unexpected %+v %v", res, err)
	}
	if got := mock.LastCall().Messages[2].Content; got != "error: search down" {
		t.Fatalf("unexpected tool output %q", got)
	}
}

func TestRunnerPropagatesProviderError(t *testing.T) {
	mock := llm.NewMockProvider(llm.Fail(&llm.ErrProviderFatal{StatusCode: 401}))
	r, _ := NewRunner(mock, Options{}, NewSearchTool(&fakeSearch{}))
	if _, err := r.Run(context.Background(), "sys", "u"); !llm.IsFatal(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}
}

func TestNewRunnerRequiresTools(t *testing.T) {
	if _, err := NewRunner(llm.NewMockProvider(), Options{}); !errors.Is(err, ErrNoTools) {
		t.Fatalf("expected ErrNoTools, got %v", err)
	}
}
