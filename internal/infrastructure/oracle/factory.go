package oracle

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/ports"
)

// New returns the configured oracle. Without an API key it returns an oracle that
// fails every lookup, so those scans end as LookupError instead of a false Safe.
// With cache_ttl set, successful lookups are reused across sessions.
func New(settings domain.OracleSettings) ports.ThreatOracle {
	key := APIKey(settings)
	if key == "" {
		return unconfigured{envVar: defaultString(settings.AuthEnvVar, domain.DefaultOracleAuthEnvVar)}
	}
	timeout := settings.Timeout()
	if timeout <= 0 {
		timeout = domain.DefaultOracleTimeout * time.Second
	}
	var oracle ports.ThreatOracle = NewSafeBrowsing(settings, key, &http.Client{Timeout: timeout})
	if ttl := settings.CacheTTL(); ttl > 0 {
		oracle = NewCache(oracle, ttl, settings.CacheEntries)
	}
	return oracle
}

// APIKey reads the credential from the environment variable named in settings.
func APIKey(settings domain.OracleSettings) string {
	return os.Getenv(defaultString(settings.AuthEnvVar, domain.DefaultOracleAuthEnvVar))
}

type unconfigured struct {
	envVar string
}

func (u unconfigured) Name() string {
	return "unconfigured"
}

func (u unconfigured) Lookup(context.Context, string) (bool, error) {
	return false, &CredentialError{EnvVar: u.envVar}
}

// CredentialError reports which environment variable was expected to hold the key.
type CredentialError struct {
	EnvVar string
}

func (e *CredentialError) Error() string {
	return "missing API key: set " + e.EnvVar
}

// Is lets errors.Is match both the missing-credential and the transport sentinels.
func (e *CredentialError) Is(target error) bool {
	return target == domain.ErrMissingCredential || target == domain.ErrOracleTransport
}
