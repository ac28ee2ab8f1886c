package assessment

import (
	"fmt"
	"strings"
)

// Draft is a synthesized test split into lines and fields, before it is
// turned into questions.
type Draft struct {
	Lines [][]string
}

// ParseDraft splits raw model output into trimmed fields, one record per
// non-blank line.
func ParseDraft(raw string) Draft {
	var d Draft
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, FieldSeparator)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		d.Lines = append(d.Lines, parts)
	}
	return d
}

// Questions converts a validated draft.
func (d Draft) Questions() []Question {
	qs := make([]Question, len(d.Lines))
	for i, f := range d.Lines {
		qs[i] = Question{
			Prompt:  f[0],
			Options: append([]string(nil), f[1:1+OptionsPerQuestion]...),
			Correct: f[FieldsPerLine-1],
		}
	}
	return qs
}

// Validator checks a synthesized test draft.
type Validator interface {
	Name() string
	Validate(d Draft) *ValidationError
}

// ValidationError describes why a draft was rejected.
type ValidationError struct {
	Validator string
	Message   string
	Retryable bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// FieldCountValidator requires exactly FieldsPerLine non-empty fields per line.
type FieldCountValidator struct{}

func (v *FieldCountValidator) Name() string { return "field-count" }

func (v *FieldCountValidator) Validate(d Draft) *ValidationError {
	for i, f := range d.Lines {
		if len(f) != FieldsPerLine {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("line %d has %d fields, want %d", i+1, len(f), FieldsPerLine),
				Retryable: true,
			}
		}
		for j, field := range f {
			if field == "" {
				return &ValidationError{
					Validator: v.Name(),
					Message:   fmt.Sprintf("line %d field %d is empty", i+1, j+1),
					Retryable: true,
				}
			}
		}
	}
	return nil
}

// AnswerInOptionsValidator requires the correct answer to repeat one option.
type AnswerInOptionsValidator struct{}

func (v *AnswerInOptionsValidator) Name() string { return "answer-in-options" }

func (v *AnswerInOptionsValidator) Validate(d Draft) *ValidationError {
	for i, f := range d.Lines {
		if len(f) != FieldsPerLine {
			continue
		}
		correct := f[FieldsPerLine-1]
		found := false
		for _, opt := range f[1 : 1+OptionsPerQuestion] {
			if opt == correct {
				found = true
				break
			}
		}
		if !found {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("line %d: correct answer %q is not an option", i+1, correct),
				Retryable: true,
			}
		}
	}
	return nil
}

// QuestionCountValidator bounds the number of questions.
type QuestionCountValidator struct {
	Min, Max int
}

func (v *QuestionCountValidator) Name() string { return "question-count" }

func (v *QuestionCountValidator) Validate(d Draft) *ValidationError {
	if n := len(d.Lines); n < v.Min || n > v.Max {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("got %d questions, want %d-%d", n, v.Min, v.Max),
			Retryable: true,
		}
	}
	return nil
}

// DuplicateQuestionValidator rejects tests that ask the same question twice.
type DuplicateQuestionValidator struct{}

func (v *DuplicateQuestionValidator) Name() string { return "duplicate-question" }

func (v *DuplicateQuestionValidator) Validate(d Draft) *ValidationError {
	seen := make(map[string]int, len(d.Lines))
	for i, f := range d.Lines {
		if len(f) == 0 {
			continue
		}
		key := strings.ToLower(f[0])
		if prev, ok := seen[key]; ok {
			return &ValidationError{
				Validator: v.Name(),
				Message:   fmt.Sprintf("line %d repeats line %d", i+1, prev+1),
				Retryable: true,
			}
		}
		seen[key] = i
	}
	return nil
}
