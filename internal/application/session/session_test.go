package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/infrastructure/history"
	"github.com/doeshing/qrshield/internal/ports"
)

func memoryFactory() (ports.Ledger, error) {
	return history.NewMemoryStore(), nil
}

func TestSessionEndClosesLedger(t *testing.T) {
	s, err := Open(memoryFactory, time.Now())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	err = s.Do(func(l ports.Ledger) error {
		_, err := l.Record(domain.NewScanRecord("a", domain.VerdictSafe, time.Now(), domain.FlowUpload))
		return err
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	if err := s.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := s.End(); err != nil {
		t.Fatalf("second End: %v", err)
	}
	if _, err := s.Snapshot(); !errors.Is(err, domain.ErrSessionClosed) {
		t.Fatalf("Snapshot after end err = %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("Len after end = %d", s.Len())
	}
}

func TestSessionsHaveIndependentLedgers(t *testing.T) {
	m := NewManager(memoryFactory, time.Hour, nil)
	a, err := m.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	b, err := m.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if a.ID == b.ID {
		t.Fatal("session ids collide")
	}
	_ = a.Do(func(l ports.Ledger) error {
		_, err := l.Record(domain.NewScanRecord("only-a", domain.VerdictSafe, time.Now(), domain.FlowUpload))
		return err
	})
	if b.Len() != 0 {
		t.Fatalf("session b sees %d records", b.Len())
	}
}

func TestManagerGetAndEnd(t *testing.T) {
	m := NewManager(memoryFactory, time.Hour, nil)
	s, err := m.Start()
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	got, err := m.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if err := m.End(s.ID); err != nil {
		t.Fatalf("End: %v", err)
	}
	if !s.Closed() {
		t.Fatal("session not closed")
	}
	if _, err := m.Get(s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("Get after end err = %v", err)
	}
	if err := m.End(s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("End twice err = %v", err)
	}
}

func TestManagerExpiresIdleSessions(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(memoryFactory, 30*time.Minute, nil)
	m.Clock = func() time.Time { return now }

	idle, _ := m.Start()
	now = now.Add(20 * time.Minute)
	active, _ := m.Start()
	now = now.Add(15 * time.Minute)

	if m.Len() != 1 {
		t.Fatalf("Len = %d, want 1", m.Len())
	}
	if !idle.Closed() {
		t.Fatal("idle session should be closed")
	}
	if _, err := m.Get(active.ID); err != nil {
		t.Fatalf("active session lost: %v", err)
	}
}

func TestManagerClose(t *testing.T) {
	m := NewManager(memoryFactory, time.Hour, nil)
	a, _ := m.Start()
	b, _ := m.Start()
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !a.Closed() || !b.Closed() || m.Len() != 0 {
		t.Fatal("sessions survive Close")
	}
}

func TestManagerExpiryDoesNotBlockOtherSessions(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var clockMu sync.Mutex
	m := NewManager(memoryFactory, 30*time.Minute, nil)
	m.Clock = func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		clockMu.Lock()
		now = now.Add(d)
		clockMu.Unlock()
	}

	busy, _ := m.Start()
	advance(20 * time.Minute)
	other, _ := m.Start()
	advance(15 * time.Minute)

	// busy is idle by the clock but still inside a slow lookup
	entered := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = busy.Do(func(ports.Ledger) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	swept := make(chan struct{})
	go func() {
		m.Len()
		close(swept)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		m.mu.Lock()
		_, registered := m.sessions[busy.ID]
		m.mu.Unlock()
		if !registered {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("idle session was never swept")
		}
		time.Sleep(5 * time.Millisecond)
	}

	got := make(chan error, 1)
	go func() {
		_, err := m.Get(other.ID)
		got <- err
	}()
	select {
	case err := <-got:
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Get blocked behind an expiring session")
	}

	close(release)
	<-swept
	if !busy.Closed() {
		t.Fatal("expired session should be closed once its lookup finishes")
	}
}
