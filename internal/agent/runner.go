package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/llm"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
)

// DefaultMaxToolCalls bounds tool executions per Run.
const DefaultMaxToolCalls = 3

// ErrNoTools is returned by NewRunner when given no tools.
var ErrNoTools = errors.New("agent: no tools")

// Options configures a Runner.
type Options struct {
	MaxToolCalls int
	MaxTokens    int
	Temperature  float64
	Log          *logger.Logger
}

// Result is the outcome of one Run.
type Result struct {
	Output    string
	ToolCalls int
}

// Runner drives a model through tool calls until it answers in text.
type Runner struct {
	provider llm.Provider
	tools    []Tool
	byName   map[string]Tool
	opts     Options
	log      *logger.Logger
}

func NewRunner(p llm.Provider, opts Options, tools ...Tool) (*Runner, error) {
	if len(tools) == 0 {
		return nil, ErrNoTools
	}
	if opts.MaxToolCalls <= 0 {
		opts.MaxToolCalls = DefaultMaxToolCalls
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name()] = t
	}
	return &Runner{provider: p, tools: tools, byName: byName, opts: opts, log: log}, nil
}

// Run answers user under system. Once MaxToolCalls tools have run, the
// model gets one last request without tools, carrying everything the
// tools returned, and must answer from that.
func (r *Runner) Run(ctx context.Context, system, user string) (Result, error) {
	defs := make([]llm.ToolDef, len(r.tools))
	for i, t := range r.tools {
		defs[i] = llm.ToolDef{Name: t.Name(), Description: t.Description(), Parameters: t.Schema()}
	}

	msgs := []llm.Message{{Role: llm.RoleUser, Content: user}}
	var observations []string
	calls := 0

	for calls < r.opts.MaxToolCalls {
		resp, err := r.provider.Generate(ctx, llm.Request{
			System:      system,
			Messages:    msgs,
			Tools:       defs,
			MaxTokens:   r.opts.MaxTokens,
			Temperature: r.opts.Temperature,
		})
		if err != nil {
			return Result{ToolCalls: calls}, err
		}
		if len(resp.ToolCalls) == 0 {
			return Result{Output: strings.TrimSpace(resp.Text()), ToolCalls: calls}, nil
		}

		msgs = append(msgs, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Text(),
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			var out string
			if calls >= r.opts.MaxToolCalls {
				out = "skipped: tool call limit reached"
			} else {
				calls++
				out = r.execute(ctx, tc)
				observations = append(observations, out)
			}
			msgs = append(msgs, llm.Message{
				Role:       llm.RoleTool,
				Content:    out,
				ToolCallID: tc.ID,
				ToolName:   tc.Name,
			})
		}
	}

	r.log.Debug("tool budget exhausted, requesting final answer", "tool_calls", calls)
	final := user + "\n\nResults of your tool calls:\n\n" + strings.Join(observations, "\n\n---\n\n") +
		"\n\nNo more tool calls are available. Give your final answer now."
	resp, err := r.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: final}},
		MaxTokens:   r.opts.MaxTokens,
		Temperature: r.opts.Temperature,
	})
	if err != nil {
		return Result{ToolCalls: calls}, err
	}
	return Result{Output: strings.TrimSpace(resp.Text()), ToolCalls: calls}, nil
}

// execute runs one call. Failures are reported back to the model as the
// tool's output rather than aborting the run.
func (r *Runner) execute(ctx context.Context, tc llm.ToolCall) string {
	t, ok := r.byName[tc.Name]
	if !ok {
		r.log.Warn("model called unknown tool", "tool", tc.Name)
		return fmt.Sprintf("error: unknown tool %q", tc.Name)
	}

	schema := &llm.Schema{Name: "tool-" + t.Name(), Definition: t.Schema()}
	if err := llm.ValidateJSON(schema, tc.Arguments); err != nil {
		r.log.Warn("invalid tool arguments", "tool", tc.Name, "error", err)
		return fmt.Sprintf("error: invalid arguments: %v", err)
	}

	out, err := t.Call(ctx, tc.Arguments)
	if err != nil {
		r.log.Warn("tool call failed", "tool", tc.Name, "error", err)
		return fmt.Sprintf("error: %v", err)
	}
	r.log.Debug("tool call", "tool", tc.Name, "output_bytes", len(out))
	return out
}
