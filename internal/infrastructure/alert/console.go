package alert

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/ports"
)

// Console prints non-safe verdicts as coloured one-line warnings.
type Console struct {
	out io.Writer
	mu  sync.Mutex
}

// NewConsole writes alerts to w, or stderr when w is nil.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		w = os.Stderr
	}
	return &Console{out: w}
}

func (c *Console) Alert(_ context.Context, rec domain.ScanRecord) {
	if !rec.Verdict.Alerting() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = VerdictColor(rec.Verdict).Fprintln(c.out, domain.AlertMessage(rec))
}

// VerdictColor maps a verdict to its display colour: green safe, yellow suspicious, red otherwise.
func VerdictColor(v domain.Verdict) *color.Color {
	switch v {
	case domain.VerdictSafe:
		return color.New(color.FgGreen)
	case domain.VerdictSuspicious:
		return color.New(color.FgYellow, color.Bold)
	case domain.VerdictLookupError:
		return color.New(color.FgMagenta)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

// Label renders the verdict label in its colour.
func Label(v domain.Verdict) string {
	return VerdictColor(v).Sprint(v.Label())
}

var _ ports.Alerter = (*Console)(nil)
