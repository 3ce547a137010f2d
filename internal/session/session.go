// Package session tracks conversations and wires their lifecycle to the vector index.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/docqa/internal/models"
	"github.com/hyperjump/docqa/internal/rag"
)

// Clearer discards the shared index.
type Clearer interface {
	Clear() error
}

// Session is one conversation. Lock it while processing a message so messages
// within a session are handled one at a time.
type Session struct {
	sync.Mutex
	ID        string
	History   *rag.History
	CreatedAt time.Time
}

// Manager creates and ends sessions. Starting and ending a session both clear
// the shared index.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	index    Clearer
	onClear  func()
	logger   *zap.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClearHook registers fn to run after every successful index clear.
func WithClearHook(fn func()) ManagerOption {
	return func(m *Manager) { m.onClear = fn }
}

// NewManager returns a manager whose lifecycle hooks clear index.
func NewManager(index Clearer, logger *zap.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		sessions: make(map[string]*Session),
		index:    index,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) clear() error {
	if err := m.index.Clear(); err != nil {
		return err
	}
	if m.onClear != nil {
		m.onClear()
	}
	return nil
}

// Start clears the index and opens a new session. A failure to delete the
// persisted index is logged and returned alongside the session, which is
// usable either way.
func (m *Manager) Start() (*Session, error) {
	err := m.clear()
	if err != nil {
		m.logger.Warn("session start: clear index failed", zap.Error(err))
	}
	s := &Session{
		ID:        uuid.New().String(),
		History:   rag.NewHistory(),
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	m.logger.Info("session started", zap.String("session", s.ID))
	return s, err
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return s, nil
}

// End removes the session and clears the index. Ending an unknown session
// returns models.ErrSessionNotFound without touching the index.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return models.ErrSessionNotFound
	}
	// Wait for an in-flight message to finish before clearing under it.
	s.Lock()
	defer s.Unlock()
	if err := m.clear(); err != nil {
		m.logger.Warn("session end: clear index failed", zap.String("session", id), zap.Error(err))
		return err
	}
	m.logger.Info("session ended", zap.String("session", id), zap.Int("turns", s.History.Len()))
	return nil
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
