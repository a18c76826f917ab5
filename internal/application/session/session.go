package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/ports"
)

// Session owns one ledger for the lifetime of an interactive session.
type Session struct {
	ID        string
	StartedAt time.Time

	mu     sync.Mutex
	ledger ports.Ledger
	closed bool

	seenMu   sync.Mutex
	lastSeen time.Time
}

// Open starts a session with a fresh ledger from factory.
func Open(factory ports.LedgerFactory, now time.Time) (*Session, error) {
	ledger, err := factory()
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return New(ledger, now), nil
}

// New wraps an existing ledger.
func New(ledger ports.Ledger, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		StartedAt: now,
		ledger:    ledger,
		lastSeen:  now,
	}
}

// Do runs fn with exclusive access to the ledger. Scans within a session are serialised
// here so a payload is never classified twice.
func (s *Session) Do(fn func(ports.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}
	return fn(s.ledger)
}

// Snapshot returns the ledger contents in insertion order.
func (s *Session) Snapshot() ([]domain.ScanRecord, error) {
	var records []domain.ScanRecord
	err := s.Do(func(l ports.Ledger) error {
		var err error
		records, err = l.Snapshot()
		return err
	})
	return records, err
}

// Len returns the number of recorded payloads, zero once closed.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0
	}
	return s.ledger.Len()
}

// Touch records activity at now.
func (s *Session) Touch(now time.Time) {
	s.seenMu.Lock()
	s.lastSeen = now
	s.seenMu.Unlock()
}

// LastSeen returns the time of the last recorded activity.
func (s *Session) LastSeen() time.Time {
	s.seenMu.Lock()
	defer s.seenMu.Unlock()
	return s.lastSeen
}

// Closed reports whether End has run.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// End discards the ledger. Later calls are no-ops.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.ledger.Close()
}
