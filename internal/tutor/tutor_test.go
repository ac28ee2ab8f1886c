package tutor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/llm"
)

func newService(responses ...llm.MockResponse) (*Service, *llm.MockProvider) {
	mock := llm.NewMockProvider(responses...)
	return NewService(llm.NewGateway(mock, llm.DefaultConfig())), mock
}

func TestSummarize(t *testing.T) {
	svc, mock := newService(llm.Text(" - key point\n"))
	out, err := svc.Summarize(context.Background(), "Long lecture on graphs")
	if err != nil {
		t.Fatal(err)
	}
	if out != "- key point" {
		t.Errorf("unexpected summary %q", out)
	}
	call := mock.LastCall()
	if !strings.Contains(call.System, "summaries") {
		t.Errorf("unexpected system prompt %q", call.System)
	}
	if call.Messages[0].Content != "Long lecture on graphs" {
		t.Errorf("lecture not forwarded: %q", call.Messages[0].Content)
	}
}

func TestReviewCode(t *testing.T) {
	svc, mock := newService(llm.Text("looks fine"))
	if _, err := svc.ReviewCode(context.Background(), "sum two ints", "func add(a, b int) int { return a - b }"); err != nil {
		t.Fatal(err)
	}
	msg := mock.LastCall().Messages[0].Content
	if !strings.HasPrefix(msg, "Assignment: sum two ints\n\nCode:\nfunc add") {
		t.Errorf("unexpected review message %q", msg)
	}
}

func TestExplainUsesMaterial(t *testing.T) {
	svc, mock := newService(llm.Text("explained"), llm.Text("explained"))
	if _, err := svc.Explain(context.Background(), "Dijkstra", "Shortest paths."); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(mock.LastCall().Messages[0].Content, "Shortest paths.") {
		t.Error("material missing from prompt")
	}

	if _, err := svc.Explain(context.Background(), "Dijkstra", "  "); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(mock.LastCall().Messages[0].Content, "(none)") {
		t.Error("empty material should render as (none)")
	}
}

func TestAnswerTopicPutsTopicInSystemPrompt(t *testing.T) {
	svc, mock := newService(llm.Text("answer"))
	_, err := svc.AnswerTopic(context.Background(), "BFS", "Level order.", []string{UserTurn("why a queue?")})
	if err != nil {
		t.Fatal(err)
	}
	call := mock.LastCall()
	if !strings.Contains(call.System, `"BFS"`) || !strings.Contains(call.System, "Level order.") {
		t.Errorf("topic not in system prompt: %q", call.System)
	}
	if call.Messages[0].Content != "User: why a queue?" {
		t.Errorf("unexpected conversation %q", call.Messages[0].Content)
	}
}

func TestGuideProblemSendsLastFiveTurns(t *testing.T) {
	svc, mock := newService(llm.Text("What do you know about the input?"))
	history := []string{
		UserTurn("t1"), AssistantTurn("t2"), UserTurn("t3"),
		AssistantTurn("t4"), UserTurn("t5"), AssistantTurn("t6"), UserTurn("t7"),
	}
	if _, err := svc.GuideProblem(context.Background(), history); err != nil {
		t.Fatal(err)
	}
	call := mock.LastCall()
	got := call.Messages[0].Content
	want := "User: t3\nAssistant: t4\nUser: t5\nAssistant: t6\nUser: t7"
	if got != want {
		t.Errorf("conversation = %q, want %q", got, want)
	}
	if !strings.Contains(call.System, "Never give the finished solution") {
		t.Error("system prompt must forbid final solutions")
	}
}

func TestErrorsAreWrapped(t *testing.T) {
	svc, _ := newService(llm.Fail(&llm.ErrProviderFatal{StatusCode: 401, Err: errors.New("bad key")}))
	_, err := svc.Summarize(context.Background(), "x")
	if !llm.IsFatal(err) {
		t.Fatalf("expected fatal error in chain, got %v", err)
	}
}
