// Package assessment synthesizes multiple-choice tests from topic text,
// administers them one question at a time and commits the resulting mark.
package assessment

import "errors"

const (
	// OptionsPerQuestion is the number of answer options per question.
	OptionsPerQuestion = 4

	// FieldsPerLine is the field count of one test line:
	// question | opt1 | opt2 | opt3 | opt4 | correct.
	FieldsPerLine = OptionsPerQuestion + 2

	MinQuestions = 6
	MaxQuestions = 10

	// FieldSeparator separates the fields of a test line.
	FieldSeparator = "|"
)

var (
	// ErrTestGenerationFailed is returned when no attempt produced a valid test.
	ErrTestGenerationFailed = errors.New("test generation failed")

	// ErrTestFinished is returned when answering a session that is already
	// committed.
	ErrTestFinished = errors.New("test already finished")
)

// Question is one multiple-choice item. Correct equals one of Options.
type Question struct {
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Correct string   `json:"correct"`
}

// AnswerRecord logs one administered question.
type AnswerRecord struct {
	Question   string `json:"question"`
	UserAnswer string `json:"user_answer"`
	Correct    string `json:"correct"`
}

// TestSession is the state of one quiz in progress.
type TestSession struct {
	ID        string         `json:"id"`
	UserID    int64          `json:"user_id"`
	CourseID  int64          `json:"course_id"`
	TopicID   int64          `json:"topic_id"`
	TopicName string         `json:"topic_name"`
	Questions []Question     `json:"questions"`
	Current   int            `json:"current"`
	Correct   int            `json:"correct"`
	Log       []AnswerRecord `json:"log"`
	Committed bool           `json:"committed"`
}

// Total returns the number of questions.
func (s *TestSession) Total() int { return len(s.Questions) }

// Done reports whether every question has been answered.
func (s *TestSession) Done() bool { return s.Current >= len(s.Questions) }

// CurrentQuestion returns the question awaiting an answer, or false when
// the test is done.
func (s *TestSession) CurrentQuestion() (Question, bool) {
	if s.Done() {
		return Question{}, false
	}
	return s.Questions[s.Current], true
}

// Percentage returns floor(100*correct/total), or 0 for an empty test.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return 100 * correct / total
}
