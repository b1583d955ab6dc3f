// Package session tracks live player sessions and keeps each player name
// bound to at most one of them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/quartermaster/internal/game/command"
	"github.com/cory-johannsen/quartermaster/internal/observability"
)

// ErrNotFound is returned when no session has the given ID.
var ErrNotFound = errors.New("session not found")

// ErrTooManySessions is returned by TryOpen when the session limit is reached.
var ErrTooManySessions = errors.New("too many open sessions")

// ErrNameInUse is returned when a player name is bound to another live session.
var ErrNameInUse = errors.New("player name already in use")

// ProcessorFactory builds a fresh Processor with the given options.
type ProcessorFactory func(opts ...command.Option) *command.Processor

// Session is one player's connection to the game. Handle serializes input
// so a Session may be shared by concurrent request handlers.
type Session struct {
	// ID is the opaque session identifier.
	ID string
	// Opened is when the session started.
	Opened time.Time

	mu       sync.Mutex
	proc     *command.Processor
	lastSeen time.Time
	closed   bool
}

// Greeting returns the prompt for a newly opened session.
func (s *Session) Greeting() *command.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proc.Greeting()
}

// Handle runs one input line through the session's Processor.
//
// Postcondition: Returns a non-nil Response, or ErrNotFound after Close.
func (s *Session) Handle(ctx context.Context, line string) (*command.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrNotFound
	}
	s.lastSeen = time.Now()
	return s.proc.Handle(ctx, line), nil
}

// PlayerName returns the logged-in player's name, or "" before login.
func (s *Session) PlayerName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p := s.proc.Player(); p != nil {
		return p.Name()
	}
	return ""
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.proc.Close()
}

// Manager tracks all open sessions and player name bindings.
// All methods are safe for concurrent use.
type Manager struct {
	newProcessor ProcessorFactory
	logger       *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session // id → session
	names    map[string]string   // player name → session id
}

// NewManager creates an empty session Manager.
//
// Precondition: factory and logger must be non-nil.
func NewManager(factory ProcessorFactory, logger *zap.Logger) *Manager {
	return &Manager{
		newProcessor: factory,
		logger:       logger,
		sessions:     make(map[string]*Session),
		names:        make(map[string]string),
	}
}

// Open starts a session in the awaiting-name state.
//
// Postcondition: Returns a registered Session with a unique ID.
func (m *Manager) Open() *Session {
	sess, _ := m.TryOpen(0)
	return sess
}

// TryOpen is Open bounded by limit open sessions; zero means unlimited.
//
// Postcondition: Returns ErrTooManySessions and registers nothing when
// limit sessions are already open.
func (m *Manager) TryOpen(limit int) (*Session, error) {
	id := uuid.NewString()
	now := time.Now()
	sess := &Session{ID: id, Opened: now, lastSeen: now}
	// A rejected session's processor is dropped unused; it holds no claim.
	sess.proc = m.newProcessor(command.WithClaim(func(name string) (func(), error) {
		return m.claim(id, name)
	}))

	m.mu.Lock()
	if limit > 0 && len(m.sessions) >= limit {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	m.sessions[id] = sess
	m.mu.Unlock()

	observability.SessionsActive.Inc()
	m.logger.Debug("session opened", zap.String("session", id))
	return sess, nil
}

func (m *Manager) claim(id, name string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if holder, ok := m.names[name]; ok && holder != id {
		return nil, fmt.Errorf("%w: %q", ErrNameInUse, name)
	}
	m.names[name] = id
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.names[name] == id {
			delete(m.names, name)
		}
	}, nil
}

// Get returns the session with the given ID.
//
// Postcondition: Returns (session, true) if found, or (nil, false) otherwise.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Close ends the session and releases its player name.
//
// Postcondition: Returns ErrNotFound if id is not open.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	sess.close()
	observability.SessionsActive.Dec()
	m.logger.Debug("session closed", zap.String("session", id))
	return nil
}

// CloseIdle closes every session whose last input is older than maxIdle.
//
// Postcondition: Returns the number of sessions closed.
func (m *Manager) CloseIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	var stale []string
	for _, sess := range m.snapshot() {
		// Session locks are never taken while m.mu is held.
		if sess.idleSince().Before(cutoff) {
			stale = append(stale, sess.ID)
		}
	}

	closed := 0
	for _, id := range stale {
		if m.Close(id) == nil {
			closed++
		}
	}
	if closed > 0 {
		m.logger.Info("closed idle sessions", zap.Int("count", closed))
	}
	return closed
}

// CloseAll ends every open session.
func (m *Manager) CloseAll() {
	for _, sess := range m.snapshot() {
		_ = m.Close(sess.ID)
	}
}

func (m *Manager) snapshot() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
