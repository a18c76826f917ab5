package classify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/infrastructure/security"
)

type stubOracle struct {
	mu      sync.Mutex
	calls   []string
	matched bool
	err     error
}

func (s *stubOracle) Name() string { return "stub" }

func (s *stubOracle) Lookup(_ context.Context, target string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, target)
	return s.matched, s.err
}

func newClassifier(t *testing.T, oracle *stubOracle) *Classifier {
	t.Helper()
	rules, err := security.DefaultBlacklist()
	if err != nil {
		t.Fatalf("DefaultBlacklist: %v", err)
	}
	return &Classifier{
		Rules:   rules,
		Oracle:  oracle,
		URLGate: domain.URLGateSettings{Upload: false, Live: true, Capture: true},
	}
}

func TestBlacklistShortCircuitsOracle(t *testing.T) {
	oracle := &stubOracle{matched: true}
	c := newClassifier(t, oracle)

	for _, text := range []string{"https://LOGIN.example.com", "https://bit.ly/abc", "Free money"} {
		if got := c.Classify(context.Background(), text, domain.FlowUpload); got != domain.VerdictSuspicious {
			t.Fatalf("Classify(%q) = %s, want suspicious", text, got)
		}
	}
	if len(oracle.calls) != 0 {
		t.Fatalf("oracle called %d times, want 0", len(oracle.calls))
	}
}

func TestOracleMapping(t *testing.T) {
	tests := []struct {
		name   string
		oracle *stubOracle
		want   domain.Verdict
	}{
		{name: "match", oracle: &stubOracle{matched: true}, want: domain.VerdictKnownFraud},
		{name: "no match", oracle: &stubOracle{}, want: domain.VerdictSafe},
		{name: "transport failure", oracle: &stubOracle{err: domain.ErrOracleTransport}, want: domain.VerdictLookupError},
		{name: "missing credential", oracle: &stubOracle{err: errors.Join(domain.ErrMissingCredential, domain.ErrOracleTransport)}, want: domain.VerdictLookupError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClassifier(t, tt.oracle)
			if got := c.Classify(context.Background(), "https://example.com/menu", domain.FlowUpload); got != tt.want {
				t.Fatalf("Classify = %s, want %s", got, tt.want)
			}
			if len(tt.oracle.calls) != 1 {
				t.Fatalf("oracle calls = %d, want exactly 1", len(tt.oracle.calls))
			}
		})
	}
}

func TestURLGatePerFlow(t *testing.T) {
	tests := []struct {
		flow        domain.Flow
		want        domain.Verdict
		oracleCalls int
	}{
		{flow: domain.FlowUpload, want: domain.VerdictSafe, oracleCalls: 1},
		{flow: domain.FlowLive, want: domain.VerdictSuspicious, oracleCalls: 0},
		{flow: domain.FlowCapture, want: domain.VerdictSuspicious, oracleCalls: 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.flow), func(t *testing.T) {
			oracle := &stubOracle{}
			c := newClassifier(t, oracle)
			if got := c.Classify(context.Background(), "hello world", tt.flow); got != tt.want {
				t.Fatalf("Classify = %s, want %s", got, tt.want)
			}
			if len(oracle.calls) != tt.oracleCalls {
				t.Fatalf("oracle calls = %d, want %d", len(oracle.calls), tt.oracleCalls)
			}
		})
	}
}

func TestURLGateRunsBeforeBlacklist(t *testing.T) {
	oracle := &stubOracle{}
	c := newClassifier(t, oracle)
	if got := c.Classify(context.Background(), "https://shop.example/cart", domain.FlowLive); got != domain.VerdictSafe {
		t.Fatalf("well-formed clean url = %s, want safe", got)
	}
	if got := c.Classify(context.Background(), "https://bank.example", domain.FlowLive); got != domain.VerdictSuspicious {
		t.Fatalf("well-formed blacklisted url = %s, want suspicious", got)
	}
	if len(oracle.calls) != 1 {
		t.Fatalf("oracle calls = %d, want 1", len(oracle.calls))
	}
}

func TestLookupIgnoresBlacklist(t *testing.T) {
	oracle := &stubOracle{}
	c := newClassifier(t, oracle)
	if got := c.Lookup(context.Background(), "https://login.example.com"); got != domain.VerdictSafe {
		t.Fatalf("Lookup = %s, want safe", got)
	}
	if len(oracle.calls) != 1 {
		t.Fatalf("oracle calls = %d, want 1", len(oracle.calls))
	}
}

func TestWellFormedURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "https://example.com", want: true},
		{in: "http://example.com/path?q=1", want: true},
		{in: "mailto:someone@example.com", want: true},
		{in: "WIFI:S:home;T:WPA;P:secret;;", want: true},
		{in: "http://", want: false},
		{in: "example.com", want: false},
		{in: "hello world", want: false},
		{in: "", want: false},
		{in: "://missing-scheme", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := WellFormedURL(tt.in); got != tt.want {
				t.Fatalf("WellFormedURL(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
