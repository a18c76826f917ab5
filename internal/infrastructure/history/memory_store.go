package history

import (
	"sync"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/ports"
)

// MemoryStore keeps one session's scans in insertion order, unique by payload.
type MemoryStore struct {
	mu      sync.RWMutex
	seen    map[string]struct{}
	records []domain.ScanRecord
	closed  bool
}

// NewMemoryStore returns an empty ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

// Record appends rec unless its payload is already present.
func (s *MemoryStore) Record(rec domain.ScanRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, domain.ErrSessionClosed
	}
	if _, ok := s.seen[rec.Payload]; ok {
		return false, nil
	}
	s.seen[rec.Payload] = struct{}{}
	s.records = append(s.records, rec)
	return true, nil
}

func (s *MemoryStore) Contains(payload string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, domain.ErrSessionClosed
	}
	_, ok := s.seen[payload]
	return ok, nil
}

// Snapshot copies the records so callers can export while scans continue.
func (s *MemoryStore) Snapshot() ([]domain.ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, domain.ErrSessionClosed
	}
	out := make([]domain.ScanRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close discards the records.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.seen = nil
	s.records = nil
	return nil
}

var _ ports.Ledger = (*MemoryStore)(nil)
