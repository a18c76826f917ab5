package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestStdLoggerQuietUnlessVerbose(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, false)
	log.Debug("hidden", nil)
	log.Info("hidden", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}

	log.Warn("shown", map[string]interface{}{"b": 2, "a": 1})
	if !strings.Contains(buf.String(), "[WARN] shown a=1 b=2") {
		t.Fatalf("unexpected warn line: %q", buf.String())
	}
}

func TestStdLoggerErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	NewWriter(&buf, true).Error("lookup failed", errors.New("boom"), map[string]interface{}{"url": "http://x"})
	line := buf.String()
	if !strings.Contains(line, "[ERROR] lookup failed boom url=http://x") {
		t.Fatalf("unexpected error line: %q", line)
	}
}
