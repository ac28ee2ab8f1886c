package assessment

import (
	"context"
	"fmt"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/llm"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
)

var testTemplate = llm.NewTemplate("test-synthesis",
	`Create a test of 6-10 questions based on the text. Each question must have 4 answer options, and you must mark the correct one.
Format: question | option1 | option2 | option3 | option4 | correct_answer
Write one question per line, with no numbering and no other text. The correct answer must repeat one of the four options exactly. Write the test in the language of the text.`,
	"Topic text:\n{{.text}}",
	"text")

// Synthesizer asks the model for a test and validates the result.
type Synthesizer struct {
	llm llm.Completer
	cfg Config
	log *logger.Logger
}

func NewSynthesizer(c llm.Completer, cfg Config, log *logger.Logger) *Synthesizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Synthesizer{llm: c, cfg: cfg, log: log}
}

// Synthesize builds a test from topic text. Provider errors are returned
// as is; drafts failing validation are retried ExtraAttempts times before
// ErrTestGenerationFailed.
func (s *Synthesizer) Synthesize(ctx context.Context, topicText string) ([]Question, error) {
	var last *ValidationError
	attempts := 1 + s.cfg.ExtraAttempts

	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := s.llm.Complete(ctx, testTemplate, map[string]any{"text": topicText})
		if err != nil {
			return nil, fmt.Errorf("synthesize test: %w", err)
		}

		draft := ParseDraft(raw)
		verr := s.validate(draft)
		if verr == nil {
			return draft.Questions(), nil
		}

		last = verr
		s.log.Warn("rejected synthesized test",
			"attempt", attempt,
			"validator", verr.Validator,
			"reason", verr.Message,
			"lines", len(draft.Lines))
		if !verr.Retryable {
			break
		}
	}

	if last == nil {
		return nil, ErrTestGenerationFailed
	}
	return nil, fmt.Errorf("%w: %w", ErrTestGenerationFailed, last)
}

func (s *Synthesizer) validate(d Draft) *ValidationError {
	for _, v := range s.cfg.Validators {
		if verr := v.Validate(d); verr != nil {
			return verr
		}
	}
	return nil
}
