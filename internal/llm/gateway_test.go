package llm

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/store"
)

var summaryTemplate = NewTemplate(
	"lecture-summary",
	"You summarize lectures in {{.language}}.",
	"Summarize:\n{{.text}}",
	"language", "text",
)

func TestTemplate_Render(t *testing.T) {
	system, user, err := summaryTemplate.Render(map[string]any{
		"language": "English",
		"text":     "Graphs have vertices and edges.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if system != "You summarize lectures in English." {
		t.Fatalf("unexpected system %q", system)
	}
	if user != "Summarize:\nGraphs have vertices and edges." {
		t.Fatalf("unexpected user %q", user)
	}
}

func TestTemplate_RenderMissingVariable(t *testing.T) {
	_, _, err := summaryTemplate.Render(map[string]any{"language": "English"})
	if err == nil || !strings.Contains(err.Error(), `"text"`) {
		t.Fatalf("expected missing variable error, got %v", err)
	}
}

func TestTemplate_VariableValuesAreNotTemplates(t *testing.T) {
	_, user, err := summaryTemplate.Render(map[string]any{
		"language": "English",
		"text":     "func f() { return {{.x}} }",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(user, "{{.x}}") {
		t.Fatalf("value was interpreted: %q", user)
	}
}

func TestGateway_Complete(t *testing.T) {
	mock := NewMockProvider(Text("  Graphs connect things.  \n"))
	g := NewGateway(mock, Config{Temperature: 0.7, MaxTokens: 300})

	out, err := g.Complete(context.Background(), summaryTemplate, map[string]any{
		"language": "English",
		"text":     "lecture",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Graphs connect things." {
		t.Fatalf("expected trimmed output, got %q", out)
	}

	req := mock.LastCall()
	if req.System != "You summarize lectures in English." {
		t.Fatalf("unexpected system prompt %q", req.System)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != RoleUser {
		t.Fatalf("expected one user message, got %+v", req.Messages)
	}
	if req.Temperature != 0.7 || req.MaxTokens != 300 {
		t.Fatalf("sampling settings not applied: %+v", req)
	}
}

func TestGateway_RateLimitsAreInvisible(t *testing.T) {
	mock := NewMockProvider(
		Fail(&ErrRateLimit{Err: errors.New("429")}),
		Fail(&ErrRateLimit{Err: errors.New("429")}),
		Text("final reply"),
	)
	g := NewGateway(WithRetry(mock, retryConfig()), DefaultConfig())

	out, err := g.Complete(context.Background(), summaryTemplate, map[string]any{"language": "en", "text": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "final reply" {
		t.Fatalf("unexpected output %q", out)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 attempts, got %d", mock.CallCount())
	}
}

func TestGateway_TruncatedReplyIsReturned(t *testing.T) {
	mock := NewMockProvider(Fail(&ErrMaxTokensExceeded{Content: []byte("Graphs connect things and ")}))
	g := NewGateway(WithRetry(mock, retryConfig()), DefaultConfig())

	out, err := g.Complete(context.Background(), summaryTemplate, map[string]any{"language": "en", "text": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Graphs connect things and" {
		t.Fatalf("unexpected output %q", out)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestGateway_EmptyTruncationIsOutage(t *testing.T) {
	mock := NewMockProvider(Fail(&ErrMaxTokensExceeded{}))
	g := NewGateway(WithRetry(mock, retryConfig()), DefaultConfig())

	_, err := g.Complete(context.Background(), summaryTemplate, map[string]any{"language": "en", "text": "x"})
	if !IsOutage(err) || IsFatal(err) {
		t.Fatalf("expected non-fatal outage, got %v", err)
	}
}

type recordingEventRepo struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingEventRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	repo := &recordingEventRepo{}
	mock := NewMockProvider(
		MockResponse{Content: "ok", Usage: Usage{InputTokens: 3, OutputTokens: 2}},
		Fail(&ErrProviderFatal{StatusCode: 401, Err: errors.New("bad key")}),
	)
	p := WithLogging(mock, repo, nil)

	ctx := WithUser(WithPurpose(context.Background(), "rag-answer"), 7)
	if _, err := p.Generate(ctx, Request{System: "s"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}

	if len(repo.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(repo.events))
	}
	ok, failed := repo.events[0], repo.events[1]
	if !ok.Success || ok.Purpose != "rag-answer" || ok.UserID != 7 || ok.InputTokens != 3 {
		t.Fatalf("unexpected success event %+v", ok)
	}
	if failed.Success || failed.ErrorMessage == "" {
		t.Fatalf("unexpected failure event %+v", failed)
	}
}

func TestLoggingProvider_RepoFailureDoesNotFailRequest(t *testing.T) {
	repo := &recordingEventRepo{err: errors.New("disk full")}
	p := WithLogging(NewMockProvider(Text("ok")), repo, nil)
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("expected request to succeed, got %v", err)
	}
}
