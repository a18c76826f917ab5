package history

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/ports"
)

func backends(t *testing.T) map[string]ports.Ledger {
	t.Helper()
	out := map[string]ports.Ledger{}
	for _, name := range []string{domain.LedgerMemory, domain.LedgerSQLite} {
		factory, err := NewFactory(name)
		if err != nil {
			t.Fatalf("NewFactory(%s): %v", name, err)
		}
		ledger, err := factory()
		if err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		t.Cleanup(func() { _ = ledger.Close() })
		out[name] = ledger
	}
	return out
}

func record(payload string, verdict domain.Verdict, at time.Time) domain.ScanRecord {
	return domain.NewScanRecord(payload, verdict, at, domain.FlowUpload)
}

func TestLedgerDeduplicatesAndKeepsOrder(t *testing.T) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)
	for name, ledger := range backends(t) {
		t.Run(name, func(t *testing.T) {
			first := record("https://b.example", domain.VerdictSafe, base)
			second := record("free gift", domain.VerdictSuspicious, base.Add(time.Second))
			again := record("https://b.example", domain.VerdictKnownFraud, base.Add(2*time.Second))

			for i, rec := range []domain.ScanRecord{first, second} {
				ok, err := ledger.Record(rec)
				if err != nil || !ok {
					t.Fatalf("Record #%d = %v, %v; want inserted", i, ok, err)
				}
			}
			ok, err := ledger.Record(again)
			if err != nil {
				t.Fatalf("Record duplicate: %v", err)
			}
			if ok {
				t.Fatal("duplicate payload inserted")
			}

			got, err := ledger.Snapshot()
			if err != nil {
				t.Fatalf("Snapshot: %v", err)
			}
			if diff := cmp.Diff([]domain.ScanRecord{first, second}, got); diff != "" {
				t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
			}
			if ledger.Len() != 2 {
				t.Fatalf("Len = %d, want 2", ledger.Len())
			}
			present, err := ledger.Contains("free gift")
			if err != nil || !present {
				t.Fatalf("Contains = %v, %v", present, err)
			}
			present, err = ledger.Contains("FREE GIFT")
			if err != nil || present {
				t.Fatalf("Contains is case sensitive, got %v, %v", present, err)
			}
		})
	}
}

func TestLedgerSnapshotIsACopy(t *testing.T) {
	ledger := NewMemoryStore()
	if _, err := ledger.Record(record("a", domain.VerdictSafe, time.Now())); err != nil {
		t.Fatalf("Record: %v", err)
	}
	snap, _ := ledger.Snapshot()
	snap[0].Payload = "mutated"
	again, _ := ledger.Snapshot()
	if again[0].Payload != "a" {
		t.Fatalf("snapshot aliases ledger state: %q", again[0].Payload)
	}
}

func TestLedgerConcurrentInsertsOfSamePayload(t *testing.T) {
	for name, ledger := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			var mu sync.Mutex
			inserted := 0
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					ok, err := ledger.Record(record("same", domain.VerdictSafe, time.Now()))
					if err != nil {
						t.Errorf("Record: %v", err)
						return
					}
					if ok {
						mu.Lock()
						inserted++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			if inserted != 1 || ledger.Len() != 1 {
				t.Fatalf("inserted=%d len=%d, want 1/1", inserted, ledger.Len())
			}
		})
	}
}

func TestLedgerClosedRejectsUse(t *testing.T) {
	for name, ledger := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				if _, err := ledger.Record(record(fmt.Sprintf("p%d", i), domain.VerdictSafe, time.Now())); err != nil {
					t.Fatalf("Record: %v", err)
				}
			}
			if err := ledger.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if _, err := ledger.Record(record("late", domain.VerdictSafe, time.Now())); !errors.Is(err, domain.ErrSessionClosed) {
				t.Fatalf("Record after close err = %v", err)
			}
			if _, err := ledger.Snapshot(); !errors.Is(err, domain.ErrSessionClosed) {
				t.Fatalf("Snapshot after close err = %v", err)
			}
			if ledger.Len() != 0 {
				t.Fatalf("Len after close = %d", ledger.Len())
			}
		})
	}
}

func TestNewFactoryRejectsUnknownBackend(t *testing.T) {
	if _, err := NewFactory("redis"); err == nil {
		t.Fatal("expected error")
	}
}
