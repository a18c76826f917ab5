package history

import (
	"fmt"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/ports"
)

// NewFactory returns a constructor for per-session ledgers of the given backend.
func NewFactory(backend string) (ports.LedgerFactory, error) {
	switch backend {
	case "", domain.LedgerMemory:
		return func() (ports.Ledger, error) { return NewMemoryStore(), nil }, nil
	case domain.LedgerSQLite:
		return func() (ports.Ledger, error) { return NewSQLiteStore() }, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}
