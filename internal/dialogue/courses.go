package dialogue

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/assessment"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/progress"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/session"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/store"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/tutor"
)

var courseIDPattern = regexp.MustCompile(`\(ID:\s*(\d+)\)\s*$`)

// parseCourseID extracts n from a course button ending in "(ID: n)".
func parseCourseID(text string) (int64, bool) {
	m := courseIDPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (t *turn) showCourses() {
	courses, err := t.o.catalog.ListCourses(t.ctx)
	if err != nil {
		t.fail(err)
		return
	}
	if len(courses) == 0 {
		t.reset(t.m.NoCourses)
		return
	}
	// The course menu without a course is the course list.
	if t.update(session.To(session.CourseMenu).Course(0)) {
		t.say(t.m.ChooseCourse, t.courseListKeyboard(courses))
	}
}

func (t *turn) selectCourse(id int64) {
	course, err := t.o.catalog.CourseByID(t.ctx, id)
	if err != nil {
		t.fail(err)
		return
	}
	if course == nil {
		t.reset(t.m.NoCourse)
		return
	}
	if t.update(session.To(session.CourseMenu).Course(course.ID)) {
		t.say(t.m.ChooseCourseAction, t.courseMenuKeyboard())
	}
}

// courseByName finds a course from its bare name.
func (t *turn) courseByName(name string) (*store.Course, error) {
	courses, err := t.o.catalog.ListCourses(t.ctx)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		if strings.EqualFold(courses[i].Name, name) {
			return &courses[i], nil
		}
	}
	return nil, nil
}

func (t *turn) courseMenu() {
	if t.state.CourseID == 0 {
		t.chooseCourse()
		return
	}
	switch {
	case t.is(t.m.BackToMain):
		t.reset(t.m.ChooseAction)
	case t.is(t.m.BackToCourses):
		t.showCourses()
	case t.is(t.m.CourseGraph):
		t.graph()
	case t.is(t.m.ExplainTopic):
		t.listTopics(session.TopicExplainWait, t.m.ChooseExplainTopic)
	case t.is(t.m.TakeTest):
		t.listTopics(session.TestWaitTopic, t.m.ChooseTestTopic)
	case t.navigation():
		t.say(t.m.ChooseCourseAction, t.courseMenuKeyboard())
	default:
		if !t.pickCourse() {
			t.say(t.m.UnknownCommand, t.courseMenuKeyboard())
		}
	}
}

// chooseCourse handles a message sent while the course list is shown.
func (t *turn) chooseCourse() {
	switch {
	case t.is(t.m.BackToCourses):
		t.showCourses()
		return
	case t.navigation():
		t.reset(t.m.ChooseAction)
		return
	}
	if t.pickCourse() {
		return
	}
	if t.onMainMenu() {
		t.clear()
		t.idle()
		return
	}
	courses, err := t.o.catalog.ListCourses(t.ctx)
	if err != nil {
		t.fail(err)
		return
	}
	t.say(t.m.UnknownCommand, t.courseListKeyboard(courses))
}

// pickCourse opens the course named by the message, either through its
// "(ID: n)" suffix or by its bare name. It reports false when the message
// names no course and nothing was said.
func (t *turn) pickCourse() bool {
	if id, ok := parseCourseID(t.text); ok {
		t.selectCourse(id)
		return true
	}
	course, err := t.courseByName(t.text)
	if err != nil {
		t.fail(err)
		return true
	}
	if course == nil {
		return false
	}
	t.selectCourse(course.ID)
	return true
}

func (t *turn) graph() {
	if t.state.CourseID == 0 {
		t.reset(t.m.NoCourse)
		return
	}
	course, err := t.o.catalog.CourseByID(t.ctx, t.state.CourseID)
	if err != nil {
		t.fail(err)
		return
	}
	if course == nil {
		t.reset(t.m.NoCourse)
		return
	}
	topics, err := t.o.catalog.Progress(t.ctx, t.in.UserID, course.ID)
	if err != nil {
		t.fail(err)
		return
	}
	if len(topics) == 0 {
		t.say(t.m.NoTopics, t.courseMenuKeyboard())
		return
	}

	g := progress.Build(topics)
	caption := fmt.Sprintf(t.m.GraphCaption, course.Name)
	if t.o.graphs != nil {
		png, err := t.o.graphs.RenderBytes(g)
		if err == nil {
			t.replies = append(t.replies, Reply{Text: caption, Photo: png, Keyboard: t.courseMenuKeyboard()})
			return
		}
		t.log.Warn("render progress graph", "course_id", course.ID, "error", err)
	}
	t.say(caption+"\n\n"+g.Text(), t.courseMenuKeyboard())
}

func (t *turn) listTopics(next session.Mode, prompt string) {
	if t.state.CourseID == 0 {
		t.reset(t.m.NoCourse)
		return
	}
	topics, err := t.o.catalog.ListTopics(t.ctx, t.state.CourseID)
	if err != nil {
		t.fail(err)
		return
	}
	if len(topics) == 0 {
		t.say(t.m.NoTopics, t.courseMenuKeyboard())
		return
	}
	if t.update(session.To(next)) {
		t.say(prompt, t.topicKeyboard(topics))
	}
}

// backToCourse returns to the menu of the current course.
func (t *turn) backToCourse() {
	if !t.update(session.To(session.CourseMenu)) {
		return
	}
	text := t.m.BackInCourseUnnamed
	if course, err := t.o.catalog.CourseByID(t.ctx, t.state.CourseID); err == nil && course != nil {
		text = fmt.Sprintf(t.m.BackInCourse, course.Name)
	}
	t.say(text, t.courseMenuKeyboard())
}

// minFuzzyQuery is the shortest message that may be fuzzy-matched to a topic.
const minFuzzyQuery = 3

// resolveTopic matches the message against the course's topics: exactly,
// then ignoring case, then by a unique closest fuzzy match. A nil topic
// means nothing matched.
func (t *turn) resolveTopic() (*store.Topic, []store.Topic, error) {
	topics, err := t.o.catalog.ListTopics(t.ctx, t.state.CourseID)
	if err != nil {
		return nil, nil, err
	}
	for i := range topics {
		if topics[i].Name == t.text {
			return &topics[i], topics, nil
		}
	}
	for i := range topics {
		if strings.EqualFold(topics[i].Name, t.text) {
			return &topics[i], topics, nil
		}
	}
	if utf8.RuneCountInString(t.text) < minFuzzyQuery {
		return nil, topics, nil
	}

	names := make([]string, len(topics))
	for i, tp := range topics {
		names[i] = tp.Name
	}
	ranks := fuzzy.RankFindNormalizedFold(t.text, names)
	if len(ranks) == 0 {
		return nil, topics, nil
	}
	sort.Sort(ranks)
	if len(ranks) > 1 && ranks[0].Distance == ranks[1].Distance {
		return nil, topics, nil
	}
	return &topics[ranks[0].OriginalIndex], topics, nil
}

func (t *turn) topicExplainWait() {
	if t.navigation() {
		t.backToCourse()
		return
	}

	topic, topics, err := t.resolveTopic()
	if err != nil {
		t.fail(err)
		return
	}
	if topic == nil {
		t.say(t.m.UnknownTopic, t.topicKeyboard(topics))
		return
	}

	t.typing()
	explanation, err := t.o.tutor.Explain(t.ctx, topic.Name, topic.Text)
	if err != nil {
		t.fail(err)
		return
	}
	if !t.update(session.To(session.TopicQA).WithTopic(topic.Name)) {
		return
	}
	t.say(explanation, nil)
	t.say(t.m.TopicQAIntro, t.exitKeyboard())
}

func (t *turn) topicQA() {
	if t.navigation() {
		t.backToCourse()
		return
	}

	material := ""
	topic, err := t.o.catalog.TopicInCourse(t.ctx, t.state.CourseID, t.state.Topic)
	if err != nil {
		t.fail(err)
		return
	}
	if topic != nil {
		material = topic.Text
	}

	t.typing()
	history := append(append([]string(nil), t.state.History...), tutor.UserTurn(t.text))
	answer, err := t.o.tutor.AnswerTopic(t.ctx, t.state.Topic, material, history)
	if err != nil {
		t.fail(err)
		return
	}
	if !t.update(session.Patch{}.Append(tutor.UserTurn(t.text), tutor.AssistantTurn(answer))) {
		return
	}
	t.say(answer+"\n\n"+t.m.TopicQAContinue, t.exitKeyboard())
}

func (t *turn) testWaitTopic() {
	if t.navigation() {
		t.backToCourse()
		return
	}

	topic, topics, err := t.resolveTopic()
	if err != nil {
		t.fail(err)
		return
	}
	if topic == nil {
		t.say(t.m.UnknownTopic, t.topicKeyboard(topics))
		return
	}
	if err := t.o.catalog.EnsureUser(t.ctx, t.in.UserID, t.username()); err != nil {
		t.fail(err)
		return
	}

	t.typing()
	ts, err := t.o.tests.Start(t.ctx, t.in.UserID, t.state.CourseID, *topic)
	if errors.Is(err, assessment.ErrTestGenerationFailed) {
		t.log.Warn("test generation failed", "topic", topic.Name, "error", err)
		if t.update(session.To(session.CourseMenu)) {
			t.say(t.m.TestFailed, t.courseMenuKeyboard())
		}
		return
	}
	if err != nil {
		t.fail(err)
		return
	}
	if !t.update(session.To(session.TestInProgress).WithTest(ts).WithTopic(topic.Name)) {
		return
	}
	t.askQuestion(ts)
}

func (t *turn) askQuestion(ts *assessment.TestSession) {
	q, ok := ts.CurrentQuestion()
	if !ok {
		return
	}
	header := fmt.Sprintf(t.m.QuestionHeader, ts.Current+1, ts.Total())
	t.say(header+"\n"+q.Prompt, t.questionKeyboard(q))
}

func (t *turn) testInProgress() {
	ts := t.state.Test
	if ts == nil {
		t.log.Error("test mode without a test")
		t.reset(t.m.InternalError)
		return
	}
	if t.navigation() {
		t.log.Info("test aborted", "test_id", ts.ID, "question", ts.Current+1)
		if t.update(session.To(session.CourseMenu)) {
			t.say(t.m.TestAborted, t.courseMenuKeyboard())
		}
		return
	}

	res, err := t.o.tests.Answer(t.ctx, ts, t.text)
	if err != nil {
		t.log.Error("test answer", "test_id", ts.ID, "error", err)
		text := t.m.InternalError
		if errors.Is(err, store.ErrStoreUnavailable) {
			text = t.m.StoreError
		}
		if t.update(session.To(session.CourseMenu)) {
			t.say(text, t.courseMenuKeyboard())
		}
		return
	}

	if !res.Done {
		if t.update(session.Patch{}.WithTest(ts)) {
			t.askQuestion(ts)
		}
		return
	}

	t.log.Info("test finished", "test_id", ts.ID, "mark", res.Mark)
	report := assessment.Report(ts, t.m.Report)
	if !t.update(session.To(session.TopicQA)) {
		return
	}
	t.say(report, nil)
	t.say(t.m.TestFinishedPrompt, t.exitKeyboard())
}
