package dialogue

import (
	"errors"
	"fmt"
	"strings"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/rag"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/session"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/tutor"
)

func (t *turn) idle() {
	switch {
	case t.is(t.m.ProblemSolving):
		if t.update(session.To(session.ProblemSolving)) {
			t.say(t.m.ProblemIntro, t.finishKeyboard())
		}
	case t.is(t.m.LectureSummary):
		if t.update(session.To(session.LectureSummaryWait)) {
			t.say(t.m.AskLecture, t.backKeyboard())
		}
	case t.is(t.m.CodeReview):
		if t.update(session.To(session.CodeReviewWaitTask)) {
			t.say(t.m.AskTask, t.backKeyboard())
		}
	case t.is(t.m.VideoDiscovery):
		if t.update(session.To(session.VideoWait)) {
			t.say(t.m.AskVideoTopic, t.backKeyboard())
		}
	case t.is(t.m.QA):
		if t.update(session.To(session.QAWait)) {
			t.say(t.m.AskQuestion, t.backKeyboard())
		}
	case t.is(t.m.Courses):
		t.showCourses()
	case t.navigation():
		t.mainMenu()
	default:
		if id, ok := parseCourseID(t.text); ok {
			t.selectCourse(id)
			return
		}
		t.say(t.m.UnknownCommand, t.mainKeyboard())
	}
}

// navigation reports whether the message is any back or exit token.
func (t *turn) navigation() bool {
	return t.leaving() || t.is(t.m.BackToCourses) || t.is(t.m.BackToCourse)
}

func (t *turn) problemSolving() {
	if t.leaving() {
		t.clear()
		t.say(t.m.ProblemFinished, t.mainKeyboard())
		return
	}

	t.typing()
	history := append(append([]string(nil), t.state.History...), tutor.UserTurn(t.text))
	answer, err := t.o.tutor.GuideProblem(t.ctx, history)
	if err != nil {
		t.fail(err)
		return
	}
	if !t.update(session.Patch{}.Append(tutor.UserTurn(t.text), tutor.AssistantTurn(answer))) {
		return
	}
	t.say(answer+"\n\n"+t.m.ProblemContinue, t.finishKeyboard())
}

func (t *turn) lectureSummary() {
	if t.leaving() {
		t.clear()
		t.mainMenu()
		return
	}

	t.typing()
	summary, err := t.o.tutor.Summarize(t.ctx, t.text)
	if err != nil {
		t.fail(err)
		return
	}
	t.reset(t.m.SummaryHeader + "\n\n" + summary)
}

func (t *turn) codeReviewTask() {
	if t.leaving() {
		t.clear()
		t.mainMenu()
		return
	}
	if t.update(session.To(session.CodeReviewWaitCode).WithTask(t.text)) {
		t.say(t.m.AskCode, t.backKeyboard())
	}
}

func (t *turn) codeReviewCode() {
	if t.leaving() {
		t.clear()
		t.mainMenu()
		return
	}

	t.typing()
	review, err := t.o.tutor.ReviewCode(t.ctx, t.state.CodeReviewTask, t.in.Text)
	if err != nil {
		t.fail(err)
		return
	}
	t.reset(t.m.ReviewHeader + "\n\n" + review)
}

func (t *turn) video() {
	if t.leaving() {
		t.clear()
		t.mainMenu()
		return
	}
	if t.o.videos == nil {
		t.log.Warn("video discovery is not configured")
		t.reset(t.m.VideoError)
		return
	}

	t.typing()
	links, err := t.o.videos.Find(t.ctx, t.text)
	if err != nil {
		t.log.Warn("video discovery failed", "topic", t.text, "error", err)
		t.reset(t.m.VideoError)
		return
	}

	switch {
	case strings.HasPrefix(links, "http"):
		t.reset(fmt.Sprintf(t.m.VideosFound, t.text) + "\n\n" + links)
	case strings.TrimSpace(links) == "":
		t.reset(t.m.NoVideos)
	default:
		t.reset(links)
	}
}

func (t *turn) question() {
	if t.leaving() {
		t.clear()
		t.mainMenu()
		return
	}

	t.typing()
	answer, err := t.o.qa.Answer(t.ctx, t.text)
	if errors.Is(err, rag.ErrNoContext) {
		t.reset(t.m.NotFound)
		return
	}
	if err != nil {
		t.fail(err)
		return
	}
	t.reset(answer)
}
