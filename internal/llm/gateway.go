package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

// Template is a two-message chat prompt: a system message describing the
// task and a user message interpolating named variables ({{.name}}).
type Template struct {
	// Name labels the call in the event log.
	Name string

	vars []string
	chat prompts.ChatPromptTemplate
}

// NewTemplate builds a Template. vars lists every variable the two
// messages reference; Render rejects calls that omit one.
func NewTemplate(name, system, user string, vars ...string) Template {
	return Template{
		Name: name,
		vars: vars,
		chat: prompts.NewChatPromptTemplate([]prompts.MessageFormatter{
			prompts.NewSystemMessagePromptTemplate(system, vars),
			prompts.NewHumanMessagePromptTemplate(user, vars),
		}),
	}
}

// Render interpolates vars and returns the system prompt and user message.
func (t Template) Render(vars map[string]any) (system, user string, err error) {
	for _, v := range t.vars {
		if _, ok := vars[v]; !ok {
			return "", "", fmt.Errorf("template %s: missing variable %q", t.Name, v)
		}
	}

	msgs, err := t.chat.FormatMessages(vars)
	if err != nil {
		return "", "", fmt.Errorf("template %s: %w", t.Name, err)
	}

	for _, m := range msgs {
		switch m.GetType() {
		case llms.ChatMessageTypeSystem:
			system = m.GetContent()
		default:
			user = m.GetContent()
		}
	}
	return system, user, nil
}

// Completer turns a template plus variables into completion text.
type Completer interface {
	Complete(ctx context.Context, t Template, vars map[string]any) (string, error)
}

// Gateway is the single entry point for text completions.
type Gateway struct {
	provider    Provider
	temperature float64
	maxTokens   int
}

// NewGateway wraps a Provider (normally already retry-decorated).
func NewGateway(p Provider, cfg Config) *Gateway {
	return &Gateway{
		provider:    p,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Provider exposes the underlying provider for tool-calling loops.
func (g *Gateway) Provider() Provider {
	return g.provider
}

// Complete renders the template and returns the completion text. A reply
// cut at the token limit is returned as far as it got.
func (g *Gateway) Complete(ctx context.Context, t Template, vars map[string]any) (string, error) {
	system, user, err := t.Render(vars)
	if err != nil {
		return "", err
	}

	if PurposeFrom(ctx) == "unknown" && t.Name != "" {
		ctx = WithPurpose(ctx, t.Name)
	}

	resp, err := g.provider.Generate(ctx, Request{
		System:      system,
		Messages:    []Message{{Role: RoleUser, Content: user}},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		if text, ok := Truncated(err); ok {
			return text, nil
		}
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
