package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/doeshing/qrshield/internal/domain"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected default config written: %v", err)
	}
	if cfg.Oracle.AuthEnvVar != domain.DefaultOracleAuthEnvVar {
		t.Fatalf("auth env var = %q", cfg.Oracle.AuthEnvVar)
	}
	if cfg.Decoder.Backend != domain.DecoderMulti {
		t.Fatalf("decoder backend = %q", cfg.Decoder.Backend)
	}
	if cfg.Classifier.URLGate.Upload || !cfg.Classifier.URLGate.Live || !cfg.Classifier.URLGate.Capture {
		t.Fatalf("unexpected url gate: %+v", cfg.Classifier.URLGate)
	}
	if cfg.Oracle.CacheTTL() != 0 {
		t.Fatalf("oracle cache should be off by default, ttl = %v", cfg.Oracle.CacheTTL())
	}
}

func TestLoadFillsCacheEntriesWhenCacheEnabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("oracle:\n  cache_ttl: 600\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Oracle.CacheEntries != domain.DefaultOracleCacheEntries {
		t.Fatalf("cache entries = %d, want %d", cfg.Oracle.CacheEntries, domain.DefaultOracleCacheEntries)
	}
}

func TestLoadHydratesMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("history:\n  backend: sqlite\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.History.Backend != domain.LedgerSQLite {
		t.Fatalf("backend = %q, want sqlite", cfg.History.Backend)
	}
	if cfg.History.Layout != domain.LayoutHistory {
		t.Fatalf("layout = %q", cfg.History.Layout)
	}
	if cfg.Oracle.Timeout().Seconds() != domain.DefaultOracleTimeout {
		t.Fatalf("timeout = %v", cfg.Oracle.Timeout())
	}
	if cfg.Server.Addr != domain.DefaultServerAddr {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("oracle: [broken"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFileLoader(path).Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestPathHonoursEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(EnvConfigPath, path)
	if got := NewFileLoader("").Path(); got != path {
		t.Fatalf("Path = %q, want %q", got, path)
	}
}

func TestInitKeepsExistingUnlessForced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("custom: true\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	loader := NewFileLoader(path)
	if err := loader.Init(false); err != nil {
		t.Fatalf("Init: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "custom: true\n" {
		t.Fatalf("file overwritten without force: %q", data)
	}
	if err := loader.Init(true); err != nil {
		t.Fatalf("Init force: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) == "custom: true\n" {
		t.Fatal("expected forced overwrite")
	}
}
