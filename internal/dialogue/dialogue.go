// Package dialogue routes each incoming chat message to the handler for
// the user's current mode and composes the replies.
package dialogue

import (
	"context"
	"strconv"
	"strings"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/assessment"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/llm"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/locale"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/progress"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/session"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/store"
)

// Incoming is one chat message.
type Incoming struct {
	UserID   int64
	Username string
	Text     string

	// Typing, when set, is called before slow handlers so the client can
	// show a typing indicator.
	Typing func()
}

// Reply is one outgoing message.
type Reply struct {
	Text string

	// Keyboard replaces the reply keyboard; nil leaves it unchanged.
	Keyboard [][]string

	// RemoveKeyboard hides the reply keyboard.
	RemoveKeyboard bool

	// Photo is a PNG sent with Text as its caption.
	Photo []byte
}

// Tutor runs the single-completion teaching tasks.
type Tutor interface {
	Summarize(ctx context.Context, lecture string) (string, error)
	ReviewCode(ctx context.Context, task, code string) (string, error)
	Explain(ctx context.Context, topic, material string) (string, error)
	AnswerTopic(ctx context.Context, topic, material string, history []string) (string, error)
	GuideProblem(ctx context.Context, history []string) (string, error)
}

// VideoFinder returns YouTube links for a topic.
type VideoFinder interface {
	Find(ctx context.Context, topic string) (string, error)
}

// Answerer answers questions from the document corpus.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// TestEngine administers tests.
type TestEngine interface {
	Start(ctx context.Context, userID, courseID int64, topic store.Topic) (*assessment.TestSession, error)
	Answer(ctx context.Context, ts *assessment.TestSession, reply string) (assessment.AdvanceResult, error)
}

// GraphRenderer rasterizes progress graphs.
type GraphRenderer interface {
	RenderBytes(g progress.Graph) ([]byte, error)
}

// Deps are the Orchestrator's collaborators. Videos and Graphs may be nil.
type Deps struct {
	Catalog  store.CatalogRepo
	Sessions *session.Manager
	Tutor    Tutor
	Videos   VideoFinder
	QA       Answerer
	Tests    TestEngine
	Graphs   GraphRenderer
	Messages *locale.Messages
	Log      *logger.Logger
}

// Orchestrator is the top-level message router.
type Orchestrator struct {
	catalog  store.CatalogRepo
	sessions *session.Manager
	tutor    Tutor
	videos   VideoFinder
	qa       Answerer
	tests    TestEngine
	graphs   GraphRenderer
	msg      *locale.Messages
	log      *logger.Logger
}

func New(d Deps) *Orchestrator {
	msg := d.Messages
	if msg == nil {
		msg = &locale.English
	}
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		catalog:  d.Catalog,
		sessions: d.Sessions,
		tutor:    d.Tutor,
		videos:   d.Videos,
		qa:       d.QA,
		tests:    d.Tests,
		graphs:   d.Graphs,
		msg:      msg,
		log:      log,
	}
}

// Messages returns the wording in use.
func (o *Orchestrator) Messages() *locale.Messages {
	return o.msg
}

// Handle processes one message. Messages of the same user are handled one
// at a time, in the order Handle is called.
func (o *Orchestrator) Handle(ctx context.Context, in Incoming) []Reply {
	unlock := o.sessions.Lock(in.UserID)
	defer unlock()

	t := &turn{
		o:    o,
		m:    o.msg,
		ctx:  llm.WithUser(ctx, in.UserID),
		in:   in,
		text: strings.TrimSpace(in.Text),
		log:  o.log.With("user_id", in.UserID),
	}
	t.run()
	return t.replies
}

// turn is the handling of one message.
type turn struct {
	o       *Orchestrator
	m       *locale.Messages
	ctx     context.Context
	in      Incoming
	text    string
	state   session.State
	log     *logger.Logger
	replies []Reply
}

func (t *turn) run() {
	switch t.text {
	case "/start", "/menu":
		t.start()
		return
	}

	st, err := t.o.sessions.Get(t.ctx, t.in.UserID)
	if err != nil {
		t.log.Error("load session", "error", err)
		t.say(t.m.TryAgainLater, nil)
		return
	}
	t.state = st
	t.log = t.log.With("mode", st.Mode)

	switch st.Mode {
	case session.Idle:
		t.idle()
	case session.ProblemSolving:
		t.problemSolving()
	case session.LectureSummaryWait:
		t.lectureSummary()
	case session.CodeReviewWaitTask:
		t.codeReviewTask()
	case session.CodeReviewWaitCode:
		t.codeReviewCode()
	case session.VideoWait:
		t.video()
	case session.QAWait:
		t.question()
	case session.CourseMenu:
		t.courseMenu()
	case session.TopicExplainWait:
		t.topicExplainWait()
	case session.TopicQA:
		t.topicQA()
	case session.TestWaitTopic:
		t.testWaitTopic()
	case session.TestInProgress:
		t.testInProgress()
	default:
		t.log.Error("unknown session mode")
		t.reset(t.m.InternalError)
	}
}

func (t *turn) say(text string, keyboard [][]string) {
	t.replies = append(t.replies, Reply{Text: text, Keyboard: keyboard})
}

func (t *turn) typing() {
	if t.in.Typing != nil {
		t.in.Typing()
	}
}

// update applies p, reporting failures to the user.
func (t *turn) update(p session.Patch) bool {
	st, err := t.o.sessions.Update(t.ctx, t.in.UserID, p)
	if err != nil {
		t.fail(err)
		return false
	}
	t.state = st
	return true
}

func (t *turn) clear() {
	if err := t.o.sessions.Clear(t.ctx, t.in.UserID); err != nil {
		t.log.Error("clear session", "error", err)
	}
	t.state = session.State{Mode: session.Idle}
}

// reset returns to idle with text and the main menu.
func (t *turn) reset(text string) {
	t.clear()
	t.say(text, t.mainKeyboard())
}

func (t *turn) mainMenu() {
	t.say(t.m.ChooseAction, t.mainKeyboard())
}

// start handles /start and /menu.
func (t *turn) start() {
	if err := t.o.catalog.EnsureUser(t.ctx, t.in.UserID, t.username()); err != nil {
		t.fail(err)
		return
	}
	t.clear()
	t.mainMenu()
}

func (t *turn) username() string {
	if t.in.Username != "" {
		return t.in.Username
	}
	return strconv.FormatInt(t.in.UserID, 10)
}
