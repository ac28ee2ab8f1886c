package dialogue

import (
	"strings"

	"github.com/samber/lo"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/assessment"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/locale"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/session"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/store"
)

func (t *turn) mainKeyboard() [][]string {
	return [][]string{
		{t.m.ProblemSolving, t.m.VideoDiscovery},
		{t.m.LectureSummary, t.m.CodeReview},
		{t.m.QA, t.m.Courses},
	}
}

func (t *turn) courseMenuKeyboard() [][]string {
	return [][]string{
		{t.m.CourseGraph},
		{t.m.ExplainTopic},
		{t.m.TakeTest},
		{t.m.BackToCourses},
	}
}

func (t *turn) courseListKeyboard(courses []store.Course) [][]string {
	rows := lo.Map(courses, func(c store.Course, _ int) []string {
		return []string{t.m.FormatCourse(c.Name, c.ID)}
	})
	return append(rows, []string{t.m.BackToMain})
}

func (t *turn) topicKeyboard(topics []store.Topic) [][]string {
	rows := lo.Map(topics, func(tp store.Topic, _ int) []string {
		return []string{tp.Name}
	})
	return append(rows, []string{t.m.BackToCourse})
}

func (t *turn) questionKeyboard(q assessment.Question) [][]string {
	rows := lo.Map(assessment.OptionLabels(q), func(label string, _ int) []string {
		return []string{label}
	})
	return append(rows, []string{t.m.ExitTest})
}

func (t *turn) exitKeyboard() [][]string   { return [][]string{{t.m.Exit}} }
func (t *turn) finishKeyboard() [][]string { return [][]string{{t.m.Finish}} }
func (t *turn) backKeyboard() [][]string   { return [][]string{{t.m.BackToMain}} }

// keyboardFor is the keyboard matching a state, or nil when it depends on
// catalog data.
func (t *turn) keyboardFor(s session.State) [][]string {
	switch s.Mode {
	case session.Idle:
		return t.mainKeyboard()
	case session.ProblemSolving:
		return t.finishKeyboard()
	case session.LectureSummaryWait, session.CodeReviewWaitTask, session.CodeReviewWaitCode,
		session.VideoWait, session.QAWait:
		return t.backKeyboard()
	case session.CourseMenu:
		if s.CourseID != 0 {
			return t.courseMenuKeyboard()
		}
	case session.TopicQA:
		return t.exitKeyboard()
	case session.TestInProgress:
		if s.Test != nil {
			if q, ok := s.Test.CurrentQuestion(); ok {
				return t.questionKeyboard(q)
			}
		}
	}
	return nil
}

// onMainMenu reports whether the message is a main menu button.
func (t *turn) onMainMenu() bool {
	for _, row := range t.mainKeyboard() {
		for _, label := range row {
			if t.is(label) {
				return true
			}
		}
	}
	return false
}

// is reports whether the message is the given button label.
func (t *turn) is(label string) bool {
	return strings.EqualFold(t.text, label)
}

// leaving reports whether the message leaves a one-shot mode.
func (t *turn) leaving() bool {
	return locale.IsExit(t.text) || t.is(t.m.BackToMain)
}
