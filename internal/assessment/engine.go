package assessment

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/store"
)

// MarkStore persists final marks.
type MarkStore interface {
	UpsertMark(ctx context.Context, userID, topicID int64, score int) error
}

// Engine owns the lifecycle of tests.
type Engine struct {
	synth *Synthesizer
	marks MarkStore
	log   *logger.Logger
}

func NewEngine(synth *Synthesizer, marks MarkStore, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{synth: synth, marks: marks, log: log}
}

// Start synthesizes a test on topic and returns it positioned at question 1.
func (e *Engine) Start(ctx context.Context, userID, courseID int64, topic store.Topic) (*TestSession, error) {
	qs, err := e.synth.Synthesize(ctx, topic.Text)
	if err != nil {
		return nil, err
	}
	ts := &TestSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		CourseID:  courseID,
		TopicID:   topic.ID,
		TopicName: topic.Name,
		Questions: qs,
	}
	e.log.Info("test started", "test_id", ts.ID, "user_id", userID, "topic", topic.Name, "questions", len(qs))
	return ts, nil
}

// AdvanceResult is the outcome of one answer.
type AdvanceResult struct {
	// Correct reports whether the answer matched.
	Correct bool

	// Done is set after the last answer once the mark is committed.
	Done bool

	// Mark is the committed percentage when Done.
	Mark int
}

// Answer records reply for the current question and advances. After the
// last question the mark is committed exactly once. If the commit fails the
// error is returned and ts stays uncommitted.
func (e *Engine) Answer(ctx context.Context, ts *TestSession, reply string) (AdvanceResult, error) {
	if ts.Committed {
		return AdvanceResult{}, ErrTestFinished
	}
	q, ok := ts.CurrentQuestion()
	if !ok {
		return e.commit(ctx, ts)
	}

	answer, parsed := ParseAnswer(reply, q)
	if !parsed {
		e.log.Warn("unparseable test answer", "test_id", ts.ID, "question", ts.Current+1, "user_answer", reply)
		answer = strings.TrimSpace(reply)
	}

	correct := parsed && answer == q.Correct
	if correct {
		ts.Correct++
	}
	ts.Log = append(ts.Log, AnswerRecord{Question: q.Prompt, UserAnswer: answer, Correct: q.Correct})
	ts.Current++

	if !ts.Done() {
		return AdvanceResult{Correct: correct}, nil
	}
	res, err := e.commit(ctx, ts)
	res.Correct = correct
	return res, err
}

func (e *Engine) commit(ctx context.Context, ts *TestSession) (AdvanceResult, error) {
	mark := Percentage(ts.Correct, ts.Total())
	if err := e.marks.UpsertMark(ctx, ts.UserID, ts.TopicID, mark); err != nil {
		return AdvanceResult{}, fmt.Errorf("commit mark for test %s: %w", ts.ID, err)
	}
	ts.Committed = true
	e.log.Info("test finished", "test_id", ts.ID, "user_id", ts.UserID, "topic_id", ts.TopicID,
		"correct", ts.Correct, "total", ts.Total(), "mark", mark)
	return AdvanceResult{Done: true, Mark: mark}, nil
}

var answerPrefix = regexp.MustCompile(`^\s*(\d+)\s*\.`)

// ParseAnswer extracts the option from a reply of the form "<n>. <option>".
// A bare "<n>." selects option n of q. Replies without the numbered prefix
// do not parse.
func ParseAnswer(reply string, q Question) (string, bool) {
	m := answerPrefix.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}
	_, rest, _ := strings.Cut(reply, ".")
	answer := strings.TrimSpace(rest)
	if answer != "" {
		return answer, true
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > len(q.Options) {
		return "", false
	}
	return q.Options[n-1], true
}

// OptionLabels returns the reply buttons for q: "1. <opt>" ... "4. <opt>".
func OptionLabels(q Question) []string {
	labels := make([]string, len(q.Options))
	for i, opt := range q.Options {
		labels[i] = fmt.Sprintf("%d. %s", i+1, opt)
	}
	return labels
}
