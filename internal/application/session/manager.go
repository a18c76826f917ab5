package session

import (
	"sync"
	"time"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/pkg/logger"
	"github.com/doeshing/qrshield/internal/ports"
)

// Manager tracks the sessions of the HTTP surface. Idle sessions are ended lazily on access.
type Manager struct {
	NewLedger   ports.LedgerFactory
	IdleTimeout time.Duration
	Clock       func() time.Time
	Logger      ports.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager builds a manager with the wall clock.
func NewManager(factory ports.LedgerFactory, idle time.Duration, log ports.Logger) *Manager {
	if log == nil {
		log = logger.Nop{}
	}
	return &Manager{
		NewLedger:   factory,
		IdleTimeout: idle,
		Clock:       time.Now,
		Logger:      log,
		sessions:    make(map[string]*Session),
	}
}

// Start opens and registers a new session.
func (m *Manager) Start() (*Session, error) {
	s, err := Open(m.NewLedger, m.now())
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	expired := m.sweepLocked()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.endExpired(expired)
	m.Logger.Debug("session started", map[string]interface{}{"session": s.ID})
	return s, nil
}

// Get returns a live session and marks it active.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	expired := m.sweepLocked()
	s, ok := m.sessions[id]
	if ok {
		s.Touch(m.now())
	}
	m.mu.Unlock()

	m.endExpired(expired)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// End removes the session and discards its ledger.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return domain.ErrSessionNotFound
	}
	m.Logger.Debug("session ended", map[string]interface{}{"session": id, "records": s.Len()})
	return s.End()
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	expired := m.sweepLocked()
	n := len(m.sessions)
	m.mu.Unlock()

	m.endExpired(expired)
	return n
}

// Close ends every session.
func (m *Manager) Close() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var firstErr error
	for _, s := range sessions {
		if err := s.End(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// sweepLocked unregisters idle sessions and returns them. Callers hold mu and end the
// returned sessions after releasing it, since End waits for any in-flight Process.
func (m *Manager) sweepLocked() []*Session {
	if m.IdleTimeout <= 0 {
		return nil
	}
	cutoff := m.now().Add(-m.IdleTimeout)
	var expired []*Session
	for id, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, s)
		}
	}
	return expired
}

func (m *Manager) endExpired(expired []*Session) {
	for _, s := range expired {
		if err := s.End(); err != nil {
			m.Logger.Warn("closing idle session failed", map[string]interface{}{"session": s.ID, "error": err.Error()})
		}
	}
}

func (m *Manager) now() time.Time {
	if m.Clock == nil {
		return time.Now()
	}
	return m.Clock()
}
