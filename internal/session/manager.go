package session

import (
	"context"
	"errors"
	"sync"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
)

// Manager owns the per-user state table. Callers serialize a user's turn
// with Lock; Get, Set, Update and Clear assume they hold it.
type Manager struct {
	backend Backend
	log     *logger.Logger

	mu    sync.Mutex
	locks map[int64]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func NewManager(backend Backend, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{backend: backend, log: log, locks: make(map[int64]*userLock)}
}

// Lock blocks until userID's turn lock is free and returns its release.
// Locks are dropped once no turn holds or waits for them.
func (m *Manager) Lock(userID int64) (unlock func()) {
	m.mu.Lock()
	l, ok := m.locks[userID]
	if !ok {
		l = &userLock{}
		m.locks[userID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, userID)
		}
		m.mu.Unlock()
	}
}

// Get returns the user's state, idle when none is stored.
func (m *Manager) Get(ctx context.Context, userID int64) (State, error) {
	s, ok, err := m.backend.Load(ctx, userID)
	if err != nil {
		return State{Mode: Idle}, err
	}
	if !ok {
		return State{Mode: Idle}, nil
	}
	return s.Normalized(), nil
}

// Set replaces the user's state.
func (m *Manager) Set(ctx context.Context, userID int64, s State) error {
	s = s.Normalized()
	if s.IsIdle() && isZero(s) {
		return m.backend.Delete(ctx, userID)
	}
	return m.backend.Save(ctx, userID, s)
}

// Update applies p to the stored state. An IllegalTransitionError leaves
// the stored state untouched.
func (m *Manager) Update(ctx context.Context, userID int64, p Patch) (State, error) {
	cur, err := m.Get(ctx, userID)
	if err != nil {
		return cur, err
	}
	next, err := p.Apply(cur)
	if err != nil {
		var ite *IllegalTransitionError
		if errors.As(err, &ite) {
			m.log.Error("rejected session update", "user_id", userID, "from", ite.From, "to", ite.To, "reason", ite.Reason)
		}
		return cur, err
	}
	if next.Mode != cur.Mode {
		m.log.Debug("session transition", "user_id", userID, "from", cur.Mode, "to", next.Mode)
	}
	if err := m.Set(ctx, userID, next); err != nil {
		return cur, err
	}
	return next, nil
}

// Clear returns the user to idle.
func (m *Manager) Clear(ctx context.Context, userID int64) error {
	return m.backend.Delete(ctx, userID)
}

func isZero(s State) bool {
	return s.CourseID == 0 && s.Topic == "" && s.CodeReviewTask == "" && len(s.History) == 0 && s.Test == nil
}
