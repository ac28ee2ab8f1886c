package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/agent"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/assessment"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/docindex"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/llm"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/locale"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/progress"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/rag"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/session"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/store"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/tutor"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/video"
)

const user = int64(42)

type fakeSearcher struct {
	hits []docindex.Hit
}

func (f *fakeSearcher) Search(context.Context, string, int) ([]docindex.Hit, error) {
	return f.hits, nil
}

type fakeAgent struct {
	output string
	err    error
	topics []string
}

func (f *fakeAgent) Run(_ context.Context, _, user string) (agent.Result, error) {
	f.topics = append(f.topics, user)
	return agent.Result{Output: f.output}, f.err
}

type fakeRenderer struct {
	graphs []progress.Graph
}

func (f *fakeRenderer) RenderBytes(g progress.Graph) ([]byte, error) {
	f.graphs = append(f.graphs, g)
	return []byte("png"), nil
}

type fixture struct {
	o        *Orchestrator
	mock     *llm.MockProvider
	store    *store.Store
	sessions *session.Manager
	course   *store.Course
	search   *fakeSearcher
	videos   *fakeAgent
	graphs   *fakeRenderer
	m        *locale.Messages
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.OpenSQLite(ctx, fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	course, err := st.CatalogRepo().SeedCourse(ctx, "Algorithms", []store.Topic{
		{Name: "BFS", Position: 1, Text: "Breadth-first search explores level by level."},
		{Name: "Dijkstra", Position: 2, Text: "Dijkstra finds shortest paths with non-negative weights."},
		{Name: "A*", Position: 3, Text: "A* adds a heuristic to Dijkstra."},
	})
	require.NoError(t, err)

	mock := llm.NewMockProvider()
	retried := llm.WithRetry(mock, llm.RetryConfig{
		MaxAttempts: 5,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	})
	gw := llm.NewGateway(retried, llm.DefaultConfig())

	catalog := st.CatalogRepo()
	sessions := session.NewManager(session.NewMemoryBackend(), nil)
	search := &fakeSearcher{}
	videos := &fakeAgent{}
	graphs := &fakeRenderer{}

	f := &fixture{
		mock:     mock,
		store:    st,
		sessions: sessions,
		course:   course,
		search:   search,
		videos:   videos,
		graphs:   graphs,
		m:        &locale.English,
	}
	f.o = New(Deps{
		Catalog:  catalog,
		Sessions: sessions,
		Tutor:    tutor.NewService(gw),
		Videos:   video.NewFinder(videos, nil),
		QA:       rag.NewAnswerer(search, gw, nil),
		Tests:    assessment.NewEngine(assessment.NewSynthesizer(gw, assessment.DefaultConfig(), nil), catalog, nil),
		Graphs:   graphs,
		Messages: &locale.English,
	})
	return f
}

func (f *fixture) send(t *testing.T, text string) []Reply {
	t.Helper()
	replies := f.o.Handle(context.Background(), Incoming{UserID: user, Username: "ada", Text: text})
	require.NotEmpty(t, replies, "no reply to %q", text)
	return replies
}

func (f *fixture) last(t *testing.T, text string) Reply {
	t.Helper()
	replies := f.send(t, text)
	return replies[len(replies)-1]
}

func (f *fixture) state(t *testing.T) session.State {
	t.Helper()
	s, err := f.sessions.Get(context.Background(), user)
	require.NoError(t, err)
	return s
}

func (f *fixture) openCourse(t *testing.T) {
	t.Helper()
	f.send(t, "/start")
	f.send(t, f.m.Courses)
	r := f.last(t, f.m.FormatCourse(f.course.Name, f.course.ID))
	require.Equal(t, f.m.ChooseCourseAction, r.Text)
	require.Equal(t, session.CourseMenu, f.state(t).Mode)
}

// testLines returns n valid question lines whose first option is correct.
func testLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("Question %d? | right %d | wrong a | wrong b | wrong c | right %d", i+1, i+1, i+1)
	}
	return strings.Join(lines, "\n")
}

func TestQuizHappyPath(t *testing.T) {
	f := newFixture(t)
	f.openCourse(t)

	r := f.last(t, f.m.TakeTest)
	assert.Equal(t, f.m.ChooseTestTopic, r.Text)
	assert.Equal(t, []string{"Dijkstra"}, r.Keyboard[1])

	f.mock.AddResponse(llm.Text(testLines(6)))
	r = f.last(t, "Dijkstra")
	assert.Equal(t, "Question 1/6:\nQuestion 1?", r.Text)
	assert.Equal(t, []string{"1. right 1"}, r.Keyboard[0])
	assert.Equal(t, []string{f.m.ExitTest}, r.Keyboard[4])
	require.Equal(t, session.TestInProgress, f.state(t).Mode)
	assert.Contains(t, f.mock.LastCall().Messages[0].Content, "non-negative weights")

	var replies []Reply
	for i := 1; i <= 6; i++ {
		answer := fmt.Sprintf("1. right %d", i)
		if i%2 == 0 {
			answer = "2. wrong a"
		}
		replies = f.send(t, answer)
	}

	report := replies[0].Text
	assert.Contains(t, report, "50%")
	assert.Equal(t, 6, strings.Count(report, f.m.Report.CorrectAnswer))
	assert.Contains(t, report, "Question 2?\n"+f.m.Report.YourAnswer+" wrong a\n"+f.m.Report.CorrectAnswer+" right 2")
	assert.Equal(t, f.m.TestFinishedPrompt, replies[1].Text)

	st := f.state(t)
	assert.Equal(t, session.TopicQA, st.Mode)
	assert.Equal(t, "Dijkstra", st.Topic)
	assert.Nil(t, st.Test)

	topics, err := f.store.CatalogRepo().Progress(context.Background(), user, f.course.ID)
	require.NoError(t, err)
	require.NotNil(t, topics[1].Mark)
	assert.Equal(t, 50, *topics[1].Mark)
	assert.Nil(t, topics[0].Mark)

	// Exit leaves topic Q&A, a second exit stays in the course menu.
	f.send(t, "exit")
	assert.Equal(t, session.CourseMenu, f.state(t).Mode)
	r = f.last(t, "exit")
	assert.Equal(t, f.m.ChooseCourseAction, r.Text)
	assert.Equal(t, session.CourseMenu, f.state(t).Mode)
	assert.Equal(t, f.course.ID, f.state(t).CourseID)
}

func TestMalformedQuizIsRegenerated(t *testing.T) {
	f := newFixture(t)
	f.openCourse(t)
	f.send(t, f.m.TakeTest)

	f.mock.AddResponse(llm.Text(testLines(3)))
	f.mock.AddResponse(llm.Text(testLines(8)))
	r := f.last(t, "Dijkstra")

	assert.True(t, strings.HasPrefix(r.Text, "Question 1/8:"), r.Text)
	assert.Equal(t, 2, f.mock.CallCount())
	st := f.state(t)
	require.NotNil(t, st.Test)
	assert.Equal(t, 8, st.Test.Total())

	topics, err := f.store.CatalogRepo().Progress(context.Background(), user, f.course.ID)
	require.NoError(t, err)
	for _, tp := range topics {
		assert.Nil(t, tp.Mark, "no mark expected for %s", tp.Name)
	}
}

func TestQuizGenerationFailureKeepsCourseMenu(t *testing.T) {
	f := newFixture(t)
	f.openCourse(t)
	f.send(t, f.m.TakeTest)

	for range 3 {
		f.mock.AddResponse(llm.Text("not a test"))
	}
	r := f.last(t, "Dijkstra")
	assert.Equal(t, f.m.TestFailed, r.Text)
	assert.Equal(t, session.CourseMenu, f.state(t).Mode)
	assert.Equal(t, 3, f.mock.CallCount())
}

func TestQuizExitDiscardsTest(t *testing.T) {
	f := newFixture(t)
	f.openCourse(t)
	f.send(t, f.m.TakeTest)
	f.mock.AddResponse(llm.Text(testLines(6)))
	f.send(t, "Dijkstra")
	f.send(t, "1. right 1")

	r := f.last(t, f.m.ExitTest)
	assert.Equal(t, f.m.TestAborted, r.Text)
	st := f.state(t)
	assert.Equal(t, session.CourseMenu, st.Mode)
	assert.Nil(t, st.Test)

	topics, err := f.store.CatalogRepo().Progress(context.Background(), user, f.course.ID)
	require.NoError(t, err)
	assert.Nil(t, topics[1].Mark)
}

func TestFreeformAnswerCountsAsWrong(t *testing.T) {
	f := newFixture(t)
	f.openCourse(t)
	f.send(t, f.m.TakeTest)
	f.mock.AddResponse(llm.Text(testLines(6)))
	f.send(t, "Dijkstra")

	r := f.last(t, "I think it is the first one")
	assert.True(t, strings.HasPrefix(r.Text, "Question 2/6:"), r.Text)
	st := f.state(t)
	assert.Equal(t, 0, st.Test.Correct)
	assert.Equal(t, "I think it is the first one", st.Test.Log[0].UserAnswer)
}

func TestRAGWithoutContext(t *testing.T) {
	f := newFixture(t)
	f.send(t, "/start")
	r := f.last(t, f.m.QA)
	assert.Equal(t, f.m.AskQuestion, r.Text)

	r = f.last(t, "quantum homotopy")
	assert.Equal(t, f.m.NotFound, r.Text)
	assert.Equal(t, 0, f.mock.CallCount())
	assert.Equal(t, session.Idle, f.state(t).Mode)
}

func TestRAGAnswer(t *testing.T) {
	f := newFixture(t)
	f.search.hits = []docindex.Hit{{Text: "Dijkstra uses a priority queue."}}
	f.mock.AddResponse(llm.Text("It uses a priority queue."))

	f.send(t, "/start")
	f.send(t, f.m.QA)
	r := f.last(t, "what does dijkstra use?")
	assert.Equal(t, "It uses a priority queue.", r.Text)
	assert.Contains(t, f.mock.LastCall().Messages[0].Content, "Dijkstra uses a priority queue.")
}

func TestVideoDiscovery(t *testing.T) {
	f := newFixture(t)
	f.videos.output = `Here you go:
https://www.youtube.com/watch?v=aaa
https://example.com/blog
https://www.youtube.com/watch?v=bbb
https://docs.example.org/x
https://www.youtube.com/watch?v=ccc`

	f.send(t, "/start")
	f.send(t, f.m.VideoDiscovery)
	r := f.last(t, "graph algorithms")

	want := fmt.Sprintf(f.m.VideosFound, "graph algorithms") + "\n\n" +
		"https://www.youtube.com/watch?v=aaa\nhttps://www.youtube.com/watch?v=bbb\nhttps://www.youtube.com/watch?v=ccc"
	assert.Equal(t, want, r.Text)
	assert.Equal(t, session.Idle, f.state(t).Mode)
	require.Len(t, f.videos.topics, 1)
	assert.Contains(t, f.videos.topics[0], "graph algorithms")
}

func TestVideoDiscoveryError(t *testing.T) {
	f := newFixture(t)
	f.videos.err = errors.New("search down")

	f.send(t, "/start")
	f.send(t, f.m.VideoDiscovery)
	r := f.last(t, "graphs")
	assert.Equal(t, f.m.VideoError, r.Text)
	assert.Equal(t, session.Idle, f.state(t).Mode)
}

func TestModeDecidesTopicMeaning(t *testing.T) {
	f := newFixture(t)
	f.openCourse(t)

	f.send(t, f.m.TakeTest)
	f.mock.AddResponse(llm.Text(testLines(6)))
	f.send(t, "Dijkstra")
	assert.Equal(t, session.TestInProgress, f.state(t).Mode)
	f.send(t, f.m.ExitTest)

	f.send(t, f.m.ExplainTopic)
	assert.Equal(t, session.TopicExplainWait, f.state(t).Mode)
	f.mock.AddResponse(llm.Text("Dijkstra relaxes edges greedily."))
	replies := f.send(t, "Dijkstra")

	require.Len(t, replies, 2)
	assert.Equal(t, "Dijkstra relaxes edges greedily.", replies[0].Text)
	assert.Equal(t, f.m.TopicQAIntro, replies[1].Text)
	st := f.state(t)
	assert.Equal(t, session.TopicQA, st.Mode)
	assert.Nil(t, st.Test)
	assert.Equal(t, 2, f.mock.CallCount())
	assert.Contains(t, f.mock.LastCall().Messages[0].Content, "non-negative weights")
}

func TestTopicQAKeepsHistory(t *testing.T) {
	f := newFixture(t)
	f.openCourse(t)
	f.send(t, f.m.ExplainTopic)
	f.mock.AddResponse(llm.Text("explanation"))
	f.send(t, "bfs")

	f.mock.AddResponse(llm.Text("It uses a queue."))
	r := f.last(t, "what structure does it use?")
	assert.Equal(t, "It uses a queue.\n\n"+f.m.TopicQAContinue, r.Text)

	st := f.state(t)
	assert.Equal(t, "BFS", st.Topic)
	assert.Equal(t, []string{tutor.UserTurn("what structure does it use?"), tutor.AssistantTurn("It uses a queue.")}, st.History)
	assert.Contains(t, f.mock.LastCall().System, "level by level")
}

func TestUnknownAndFuzzyTopics(t *testing.T) {
	f := newFixture(t)
	f.openCourse(t)
	f.send(t, f.m.ExplainTopic)

	r := f.last(t, "Topology")
	assert.Equal(t, f.m.UnknownTopic, r.Text)
	assert.Equal(t, session.TopicExplainWait, f.state(t).Mode)

	f.mock.AddResponse(llm.Text("ok"))
	f.send(t, "dijkst")
	assert.Equal(t, "Dijkstra", f.state(t).Topic)
}

func TestShortTopicQueryIsNotGuessed(t *testing.T) {
	f := newFixture(t)
	f.openCourse(t)
	f.send(t, f.m.TakeTest)

	for _, text := range []string{"a", "ds"} {
		r := f.last(t, text)
		assert.Equal(t, f.m.UnknownTopic, r.Text, text)
		assert.Equal(t, session.TestWaitTopic, f.state(t).Mode, text)
	}
	assert.Equal(t, 0, f.mock.CallCount())

	// Exact names stay selectable however short.
	f.mock.AddResponse(llm.Text(testLines(6)))
	f.send(t, "a*")
	assert.Equal(t, session.TestInProgress, f.state(t).Mode)
}

func TestProviderRateLimitIsInvisible(t *testing.T) {
	f := newFixture(t)
	f.mock.AddResponse(llm.Fail(&llm.ErrRateLimit{}))
	f.mock.AddResponse(llm.Fail(&llm.ErrRateLimit{}))
	f.mock.AddResponse(llm.Text("Short summary."))

	f.send(t, "/start")
	f.send(t, f.m.LectureSummary)
	r := f.last(t, "A long lecture about graphs.")

	assert.Equal(t, f.m.SummaryHeader+"\n\nShort summary.", r.Text)
	assert.Equal(t, 3, f.mock.CallCount())
	assert.Equal(t, session.Idle, f.state(t).Mode)
}

func TestProviderOutageKeepsState(t *testing.T) {
	f := newFixture(t)
	for range 5 {
		f.mock.AddResponse(llm.Fail(&llm.ErrRateLimit{}))
	}

	f.send(t, "/start")
	f.send(t, f.m.LectureSummary)
	r := f.last(t, "lecture")
	assert.Equal(t, f.m.TryAgainLater, r.Text)
	assert.Equal(t, session.LectureSummaryWait, f.state(t).Mode)
}

func TestFatalProviderErrorResetsToIdle(t *testing.T) {
	f := newFixture(t)
	f.mock.AddResponse(llm.Fail(&llm.ErrProviderFatal{StatusCode: 401}))

	f.send(t, "/start")
	f.send(t, f.m.ProblemSolving)
	r := f.last(t, "help me")
	assert.Equal(t, f.m.ProviderError, r.Text)
	assert.Equal(t, session.Idle, f.state(t).Mode)
	assert.Equal(t, 1, f.mock.CallCount())
}

func TestProblemSolving(t *testing.T) {
	f := newFixture(t)
	f.send(t, "/start")
	r := f.last(t, f.m.ProblemSolving)
	assert.Equal(t, f.m.ProblemIntro, r.Text)

	f.mock.AddResponse(llm.Text("What do you know already?"))
	r = f.last(t, "How do I reverse a list?")
	assert.Equal(t, "What do you know already?\n\n"+f.m.ProblemContinue, r.Text)
	assert.Len(t, f.state(t).History, 2)

	f.mock.AddResponse(llm.Text("Good, go on."))
	f.send(t, "I can iterate")
	assert.Contains(t, f.mock.LastCall().Messages[0].Content, "User: How do I reverse a list?")

	r = f.last(t, "finish")
	assert.Equal(t, f.m.ProblemFinished, r.Text)
	st := f.state(t)
	assert.Equal(t, session.Idle, st.Mode)
	assert.Empty(t, st.History)
}

func TestCodeReview(t *testing.T) {
	f := newFixture(t)
	f.send(t, "/start")
	f.send(t, f.m.CodeReview)
	r := f.last(t, "Sum two integers")
	assert.Equal(t, f.m.AskCode, r.Text)
	assert.Equal(t, "Sum two integers", f.state(t).CodeReviewTask)

	f.mock.AddResponse(llm.Text("Subtraction instead of addition."))
	r = f.last(t, "func add(a, b int) int { return a - b }")
	assert.Equal(t, f.m.ReviewHeader+"\n\nSubtraction instead of addition.", r.Text)
	assert.Contains(t, f.mock.LastCall().Messages[0].Content, "Assignment: Sum two integers")
	assert.Equal(t, session.Idle, f.state(t).Mode)
}

func TestTruncatedCodeReviewIsDelivered(t *testing.T) {
	f := newFixture(t)
	f.send(t, "/start")
	f.send(t, f.m.CodeReview)
	f.send(t, "Sum two integers")

	f.mock.AddResponse(llm.Fail(&llm.ErrMaxTokensExceeded{Content: []byte("The function subtracts instead of")}))
	r := f.last(t, "func add(a, b int) int { return a - b }")
	assert.Equal(t, f.m.ReviewHeader+"\n\nThe function subtracts instead of", r.Text)
	assert.Equal(t, session.Idle, f.state(t).Mode)
	assert.Equal(t, 1, f.mock.CallCount())
}

func TestEmptyTruncationKeepsState(t *testing.T) {
	f := newFixture(t)
	f.send(t, "/start")
	f.send(t, f.m.CodeReview)
	f.send(t, "Sum two integers")

	f.mock.AddResponse(llm.Fail(&llm.ErrMaxTokensExceeded{}))
	r := f.last(t, "func add(a, b int) int { return a - b }")
	assert.Equal(t, f.m.TryAgainLater, r.Text)
	st := f.state(t)
	assert.Equal(t, session.CodeReviewWaitCode, st.Mode)
	assert.Equal(t, "Sum two integers", st.CodeReviewTask)
}

func TestBackFromOneShotMode(t *testing.T) {
	f := newFixture(t)
	f.send(t, "/start")
	f.send(t, f.m.CodeReview)
	r := f.last(t, f.m.BackToMain)
	assert.Equal(t, f.m.ChooseAction, r.Text)
	assert.Equal(t, session.Idle, f.state(t).Mode)
	assert.Equal(t, 0, f.mock.CallCount())
}

func TestIdleInput(t *testing.T) {
	f := newFixture(t)
	f.send(t, "/start")

	r := f.last(t, "back")
	assert.Equal(t, f.m.ChooseAction, r.Text)

	r = f.last(t, "hello there")
	assert.Equal(t, f.m.UnknownCommand, r.Text)
	assert.Equal(t, session.Idle, f.state(t).Mode)
}

func TestCourseGraph(t *testing.T) {
	f := newFixture(t)
	f.openCourse(t)
	require.NoError(t, f.store.CatalogRepo().EnsureUser(context.Background(), user, "ada"))
	require.NoError(t, f.store.CatalogRepo().UpsertMark(context.Background(), user, 1, 90))

	r := f.last(t, f.m.CourseGraph)
	assert.Equal(t, []byte("png"), r.Photo)
	assert.Equal(t, fmt.Sprintf(f.m.GraphCaption, "Algorithms"), r.Text)
	require.Len(t, f.graphs.graphs, 1)
	assert.Len(t, f.graphs.graphs[0].Nodes, 3)
	assert.Equal(t, session.CourseMenu, f.state(t).Mode)
}

func TestCourseNavigation(t *testing.T) {
	f := newFixture(t)
	f.openCourse(t)

	f.send(t, f.m.ExplainTopic)
	r := f.last(t, f.m.BackToCourse)
	assert.Equal(t, fmt.Sprintf(f.m.BackInCourse, "Algorithms"), r.Text)
	assert.Equal(t, session.CourseMenu, f.state(t).Mode)

	r = f.last(t, f.m.BackToCourses)
	assert.Equal(t, f.m.ChooseCourse, r.Text)
	st := f.state(t)
	assert.Equal(t, session.CourseMenu, st.Mode)
	assert.Zero(t, st.CourseID)

	r = f.last(t, "Course: Algorithms (ID: 999)")
	assert.Equal(t, f.m.NoCourse, r.Text)
	assert.Equal(t, session.Idle, f.state(t).Mode)

	f.send(t, f.m.FormatCourse(f.course.Name, f.course.ID))
	r = f.last(t, f.m.BackToMain)
	assert.Equal(t, f.m.ChooseAction, r.Text)
	assert.Equal(t, session.Idle, f.state(t).Mode)
}

func TestSelectCourseByNameFromList(t *testing.T) {
	f := newFixture(t)
	f.send(t, "/start")

	r := f.last(t, f.m.Courses)
	assert.Equal(t, f.m.ChooseCourse, r.Text)
	assert.Equal(t, [][]string{{f.m.FormatCourse("Algorithms", f.course.ID)}, {f.m.BackToMain}}, r.Keyboard)
	st := f.state(t)
	assert.Equal(t, session.CourseMenu, st.Mode)
	assert.Zero(t, st.CourseID)

	r = f.last(t, "Algorithms")
	assert.Equal(t, f.m.ChooseCourseAction, r.Text)
	st = f.state(t)
	assert.Equal(t, session.CourseMenu, st.Mode)
	assert.Equal(t, f.course.ID, st.CourseID)
}

func TestCourseListInput(t *testing.T) {
	f := newFixture(t)
	f.send(t, "/start")
	f.send(t, f.m.Courses)

	r := f.last(t, "Geometry")
	assert.Equal(t, f.m.UnknownCommand, r.Text)
	assert.Equal(t, [][]string{{f.m.FormatCourse("Algorithms", f.course.ID)}, {f.m.BackToMain}}, r.Keyboard)
	assert.Equal(t, session.CourseMenu, f.state(t).Mode)

	// Topic actions need a course first.
	r = f.last(t, f.m.TakeTest)
	assert.Equal(t, f.m.UnknownCommand, r.Text)
	assert.Equal(t, session.CourseMenu, f.state(t).Mode)

	r = f.last(t, f.m.QA)
	assert.Equal(t, f.m.AskQuestion, r.Text)
	assert.Equal(t, session.QAWait, f.state(t).Mode)

	f.send(t, f.m.BackToMain)
	f.send(t, f.m.Courses)
	r = f.last(t, f.m.BackToMain)
	assert.Equal(t, f.m.ChooseAction, r.Text)
	assert.Equal(t, session.Idle, f.state(t).Mode)
	assert.Equal(t, 0, f.mock.CallCount())
}

func TestParseCourseID(t *testing.T) {
	tests := []struct {
		in   string
		id   int64
		want bool
	}{
		{"Course: Algorithms (ID: 1)", 1, true},
		{"Курс: Алгоритмы (ID: 12)", 12, true},
		{"Algorithms", 0, false},
		{"(ID: 0)", 0, false},
		{"(ID: 3) trailing", 0, false},
	}
	for _, tt := range tests {
		id, ok := parseCourseID(tt.in)
		if id != tt.id || ok != tt.want {
			t.Errorf("parseCourseID(%q) = %d, %v; want %d, %v", tt.in, id, ok, tt.id, tt.want)
		}
	}
}

func TestUsersDoNotShareState(t *testing.T) {
	f := newFixture(t)
	f.send(t, "/start")
	f.send(t, f.m.ProblemSolving)

	other := f.o.Handle(context.Background(), Incoming{UserID: 7, Text: f.m.QA})
	require.Len(t, other, 1)
	assert.Equal(t, f.m.AskQuestion, other[0].Text)
	assert.Equal(t, session.ProblemSolving, f.state(t).Mode)
}
