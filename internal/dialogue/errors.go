package dialogue

import (
	"errors"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/llm"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/session"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/store"
)

// fail turns a handler error into a reply and leaves the session in a
// well-defined mode:
//   - illegal transitions and fatal provider errors reset to idle;
//   - unavailable store or exhausted retries keep the state so the user
//     can resend;
//   - data errors return to the course menu, or idle without a course.
func (t *turn) fail(err error) {
	var ite *session.IllegalTransitionError
	switch {
	case errors.As(err, &ite):
		t.log.Error("illegal session transition", "from", ite.From, "to", ite.To, "reason", ite.Reason)
		t.reset(t.m.InternalError)

	case llm.IsFatal(err):
		t.log.Error("provider rejected request", "error", err)
		t.reset(t.m.ProviderError)

	case errors.Is(err, store.ErrStoreUnavailable):
		t.log.Error("store unavailable", "error", err)
		t.say(t.m.StoreError, t.keyboardFor(t.state))

	case errors.Is(err, store.ErrDataError):
		t.log.Error("catalog data error", "error", err)
		if t.state.CourseID != 0 {
			if t.update(session.To(session.CourseMenu)) {
				t.say(t.m.InternalError, t.courseMenuKeyboard())
			}
			return
		}
		t.reset(t.m.InternalError)

	case llm.IsOutage(err):
		t.log.Warn("provider unavailable after retries", "error", err)
		t.say(t.m.TryAgainLater, t.keyboardFor(t.state))

	default:
		t.log.Error("handler failed", "error", err)
		t.reset(t.m.InternalError)
	}
}
