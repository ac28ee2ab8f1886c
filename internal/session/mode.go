// Package session keeps each user's position in the dialogue state machine.
package session

// Mode names what the next message from a user means.
type Mode string

const (
	Idle               Mode = "idle"
	ProblemSolving     Mode = "problem_solving"
	LectureSummaryWait Mode = "lecture_summary_wait"
	CodeReviewWaitTask Mode = "code_review_wait_task"
	CodeReviewWaitCode Mode = "code_review_wait_code"
	VideoWait          Mode = "video_wait"
	QAWait             Mode = "qa_wait"
	CourseMenu         Mode = "course_menu"
	TopicExplainWait   Mode = "topic_explain_wait"
	TopicQA            Mode = "topic_qa"
	TestWaitTopic      Mode = "test_wait_topic"
	TestInProgress     Mode = "test_in_progress"
)

// Modes lists every mode.
var Modes = []Mode{
	Idle, ProblemSolving, LectureSummaryWait, CodeReviewWaitTask, CodeReviewWaitCode,
	VideoWait, QAWait, CourseMenu, TopicExplainWait, TopicQA, TestWaitTopic, TestInProgress,
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	for _, k := range Modes {
		if k == m {
			return true
		}
	}
	return false
}

// transitions lists, per mode, the modes reachable in one step other than
// Idle and the mode itself, which are always reachable.
var transitions = map[Mode][]Mode{
	Idle:               {ProblemSolving, LectureSummaryWait, CodeReviewWaitTask, VideoWait, QAWait, CourseMenu},
	CodeReviewWaitTask: {CodeReviewWaitCode},
	CourseMenu:         {TopicExplainWait, TestWaitTopic},
	TopicExplainWait:   {TopicQA, CourseMenu},
	TopicQA:            {CourseMenu},
	TestWaitTopic:      {TestInProgress, CourseMenu},
	TestInProgress:     {TopicQA, CourseMenu},
}

// CanTransition reports whether from -> to is a legal step.
func CanTransition(from, to Mode) bool {
	if !to.Valid() {
		return false
	}
	if to == Idle || from == to {
		return true
	}
	for _, m := range transitions[from] {
		if m == to {
			return true
		}
	}
	return false
}

// holdsCourse reports whether a mode carries a course.
func (m Mode) holdsCourse() bool {
	switch m {
	case CourseMenu, TopicExplainWait, TopicQA, TestWaitTopic, TestInProgress:
		return true
	}
	return false
}

// requiresCourse reports whether a mode is meaningless without a course.
func (m Mode) requiresCourse() bool {
	return m.holdsCourse() && m != CourseMenu
}

func (m Mode) holdsTopic() bool {
	return m == TopicQA || m == TestInProgress
}

func (m Mode) holdsHistory() bool {
	return m == ProblemSolving || m == TopicQA
}
