// Package tutor holds the single-completion teaching tasks: lecture
// summaries, code review, topic explanations, topic Q&A and guided
// problem solving.
package tutor

import (
	"context"
	"fmt"
	"strings"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/llm"
)

// HistoryLimit is how many turns of a conversation are sent to the model.
const HistoryLimit = 5

const (
	userPrefix      = "User: "
	assistantPrefix = "Assistant: "
)

// UserTurn and AssistantTurn format conversation entries as kept in
// session history.
func UserTurn(text string) string      { return userPrefix + text }
func AssistantTurn(text string) string { return assistantPrefix + text }

// Service runs tutoring tasks through a Completer.
type Service struct {
	llm llm.Completer
}

func NewService(c llm.Completer) *Service {
	return &Service{llm: c}
}

// Summarize condenses lecture text.
func (s *Service) Summarize(ctx context.Context, lecture string) (string, error) {
	out, err := s.llm.Complete(ctx, summaryTemplate, map[string]any{"text": lecture})
	if err != nil {
		return "", fmt.Errorf("summarize lecture: %w", err)
	}
	return out, nil
}

// ReviewCode reviews code written for task.
func (s *Service) ReviewCode(ctx context.Context, task, code string) (string, error) {
	out, err := s.llm.Complete(ctx, codeReviewTemplate, map[string]any{"task": task, "code": code})
	if err != nil {
		return "", fmt.Errorf("review code: %w", err)
	}
	return out, nil
}

// Explain explains a topic, grounded on its course text.
func (s *Service) Explain(ctx context.Context, topic, material string) (string, error) {
	out, err := s.llm.Complete(ctx, explainTemplate, map[string]any{
		"topic":    topic,
		"material": orNone(material),
	})
	if err != nil {
		return "", fmt.Errorf("explain %q: %w", topic, err)
	}
	return out, nil
}

// AnswerTopic answers the last user turn of history about topic.
func (s *Service) AnswerTopic(ctx context.Context, topic, material string, history []string) (string, error) {
	out, err := s.llm.Complete(ctx, topicQATemplate, map[string]any{
		"topic":        topic,
		"material":     orNone(material),
		"conversation": Conversation(history),
	})
	if err != nil {
		return "", fmt.Errorf("answer question on %q: %w", topic, err)
	}
	return out, nil
}

// GuideProblem asks the next leading question for a problem being solved.
func (s *Service) GuideProblem(ctx context.Context, history []string) (string, error) {
	out, err := s.llm.Complete(ctx, problemTemplate, map[string]any{
		"conversation": Conversation(history),
	})
	if err != nil {
		return "", fmt.Errorf("guide problem: %w", err)
	}
	return out, nil
}

// Conversation joins the last HistoryLimit turns, oldest first.
func Conversation(history []string) string {
	if len(history) > HistoryLimit {
		history = history[len(history)-HistoryLimit:]
	}
	return strings.Join(history, "\n")
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}
