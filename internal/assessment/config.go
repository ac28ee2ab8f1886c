package assessment

// Config controls test synthesis.
type Config struct {
	// Validators run in order on every draft; the first failure rejects it.
	Validators []Validator

	// ExtraAttempts is how many times synthesis is retried after a draft
	// fails validation.
	ExtraAttempts int
}

// DefaultConfig returns the standard validator chain with two retries.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&FieldCountValidator{},
			&AnswerInOptionsValidator{},
			&QuestionCountValidator{Min: MinQuestions, Max: MaxQuestions},
			&DuplicateQuestionValidator{},
		},
		ExtraAttempts: 2,
	}
}
