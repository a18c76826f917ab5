package config

import (
	"fmt"
	"net/url"

	"github.com/doeshing/qrshield/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := validateOracle(cfg.Oracle); err != nil {
		return err
	}
	if err := validateDecoder(cfg.Decoder); err != nil {
		return err
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	if cfg.Live.FrameTimeoutSeconds <= 0 {
		return fmt.Errorf("live.frame_timeout must be > 0")
	}
	return validateServer(cfg.Server)
}

func validateOracle(oracle domain.OracleSettings) error {
	if oracle.Endpoint == "" {
		return fmt.Errorf("oracle.endpoint must be set")
	}
	if u, err := url.Parse(oracle.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("oracle.endpoint invalid: %s", oracle.Endpoint)
	}
	if oracle.AuthEnvVar == "" {
		return fmt.Errorf("oracle.auth_env_var must be set")
	}
	if oracle.TimeoutSeconds <= 0 {
		return fmt.Errorf("oracle.timeout must be > 0")
	}
	if oracle.CacheTTLSeconds < 0 || oracle.CacheEntries < 0 {
		return fmt.Errorf("oracle.cache_ttl and oracle.cache_entries must be >= 0")
	}
	return nil
}

func validateDecoder(decoder domain.DecoderSettings) error {
	switch decoder.Backend {
	case domain.DecoderMulti, domain.DecoderSingle:
		return nil
	default:
		return fmt.Errorf("decoder.backend must be %s|%s, got %s", domain.DecoderMulti, domain.DecoderSingle, decoder.Backend)
	}
}

func validateHistory(history domain.HistorySettings) error {
	switch history.Backend {
	case domain.LedgerMemory, domain.LedgerSQLite:
	default:
		return fmt.Errorf("history.backend must be %s|%s, got %s", domain.LedgerMemory, domain.LedgerSQLite, history.Backend)
	}
	switch history.Layout {
	case domain.LayoutHistory, domain.LayoutCapture:
	default:
		return fmt.Errorf("history.layout must be %s|%s, got %s", domain.LayoutHistory, domain.LayoutCapture, history.Layout)
	}
	return nil
}

func validateServer(server domain.ServerSettings) error {
	if server.Addr == "" {
		return fmt.Errorf("server.addr must be set")
	}
	if server.SessionIdleMinutes <= 0 {
		return fmt.Errorf("server.session_idle_timeout must be > 0")
	}
	if server.MaxUploadMB <= 0 {
		return fmt.Errorf("server.max_upload_mb must be > 0")
	}
	return nil
}
