package session

import (
	"errors"
	"fmt"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/assessment"
)

// HistoryLimit bounds State.History; older turns are dropped first.
const HistoryLimit = 5

// ErrIllegalTransition marks a patch the current state cannot accept.
var ErrIllegalTransition = errors.New("illegal session transition")

// IllegalTransitionError describes a rejected update.
type IllegalTransitionError struct {
	From   Mode
	To     Mode
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s: %s", e.From, e.To, e.Reason)
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }

// State is one user's dialogue position. The zero value is idle.
type State struct {
	Mode           Mode                    `json:"mode"`
	CourseID       int64                   `json:"course_id,omitempty"`
	Topic          string                  `json:"topic,omitempty"`
	CodeReviewTask string                  `json:"code_review_task,omitempty"`
	History        []string                `json:"history,omitempty"`
	Test           *assessment.TestSession `json:"test,omitempty"`
}

// Normalized returns s with an explicit mode.
func (s State) Normalized() State {
	if s.Mode == "" {
		s.Mode = Idle
	}
	return s
}

// IsIdle reports whether s is the idle state.
func (s State) IsIdle() bool {
	return s.Mode == "" || s.Mode == Idle
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Mode           *Mode
	CourseID       *int64
	Topic          *string
	CodeReviewTask *string
	AppendHistory  []string
	Test           *assessment.TestSession
}

// To starts a patch that moves to mode m.
func To(m Mode) Patch {
	return Patch{Mode: &m}
}

// Course sets the course.
func (p Patch) Course(id int64) Patch {
	p.CourseID = &id
	return p
}

// WithTopic sets the topic.
func (p Patch) WithTopic(name string) Patch {
	p.Topic = &name
	return p
}

// WithTask stores the code review assignment.
func (p Patch) WithTask(task string) Patch {
	p.CodeReviewTask = &task
	return p
}

// Append adds dialogue turns to the history.
func (p Patch) Append(turns ...string) Patch {
	p.AppendHistory = append(p.AppendHistory, turns...)
	return p
}

// WithTest attaches a test in progress.
func (p Patch) WithTest(ts *assessment.TestSession) Patch {
	p.Test = ts
	return p
}

// Apply merges p into s. Fields the resulting mode does not carry are
// dropped, and history restarts whenever the mode changes.
func (p Patch) Apply(s State) (State, error) {
	s = s.Normalized()
	from := s.Mode
	to := from
	if p.Mode != nil {
		to = *p.Mode
	}

	illegal := func(reason string) (State, error) {
		return s, &IllegalTransitionError{From: from, To: to, Reason: reason}
	}

	if !CanTransition(from, to) {
		return illegal("mode change not allowed")
	}
	if p.CourseID != nil && !to.holdsCourse() {
		return illegal("mode does not carry a course")
	}
	if p.Topic != nil && !to.holdsTopic() {
		return illegal("mode does not carry a topic")
	}
	if p.CodeReviewTask != nil && to != CodeReviewWaitCode {
		return illegal("mode does not carry a code review task")
	}
	if len(p.AppendHistory) > 0 && !to.holdsHistory() {
		return illegal("mode does not keep history")
	}
	if p.Test != nil && to != TestInProgress {
		return illegal("mode does not carry a test")
	}

	next := s
	next.Mode = to
	if to != from {
		next.History = nil
	}
	if p.CourseID != nil {
		next.CourseID = *p.CourseID
	}
	if p.Topic != nil {
		next.Topic = *p.Topic
	}
	if p.CodeReviewTask != nil {
		next.CodeReviewTask = *p.CodeReviewTask
	}
	if p.Test != nil {
		next.Test = p.Test
	}
	if len(p.AppendHistory) > 0 {
		next.History = appendBounded(next.History, p.AppendHistory...)
	}

	if !to.holdsCourse() {
		next.CourseID = 0
	}
	if !to.holdsTopic() {
		next.Topic = ""
	}
	if to != CodeReviewWaitCode {
		next.CodeReviewTask = ""
	}
	if !to.holdsHistory() {
		next.History = nil
	}
	if to != TestInProgress {
		next.Test = nil
	}

	if to.requiresCourse() && next.CourseID == 0 {
		return illegal("mode requires a course")
	}
	if to == TestInProgress && next.Test == nil {
		return illegal("mode requires a test")
	}
	return next, nil
}

// appendBounded appends turns and keeps the newest HistoryLimit entries.
func appendBounded(history []string, turns ...string) []string {
	out := make([]string, 0, len(history)+len(turns))
	out = append(out, history...)
	out = append(out, turns...)
	if len(out) > HistoryLimit {
		out = out[len(out)-HistoryLimit:]
	}
	return out
}
