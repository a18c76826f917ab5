package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/qrshield/assets"
	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/pkg/filesystem"
	"github.com/doeshing/qrshield/internal/ports"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "QRSHIELD_CONFIG"

// FileLoader loads YAML configuration from ~/.qrshield/config.yaml (overridable via QRSHIELD_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider. A missing file is created from the embedded defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := l.Init(false); err != nil {
				return domain.Config{}, err
			}
			return Defaults()
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return hydrateDefaults(cfg), nil
}

// Path returns the file the loader reads.
func (l *FileLoader) Path() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filesystem.AppPath("config.yaml")
}

// Init writes the embedded default config. Existing files are kept unless force is set.
func (l *FileLoader) Init(force bool) error {
	path := l.Path()
	if !force {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return err
	}
	return os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions)
}

// Defaults parses the embedded default config.
func Defaults() (domain.Config, error) {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		return domain.Config{}, err
	}
	return hydrateDefaults(cfg), nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg domain.Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Oracle.Endpoint == "" {
		cfg.Oracle.Endpoint = domain.DefaultOracleEndpoint
	}
	if cfg.Oracle.AuthEnvVar == "" {
		cfg.Oracle.AuthEnvVar = domain.DefaultOracleAuthEnvVar
	}
	if cfg.Oracle.ClientID == "" {
		cfg.Oracle.ClientID = domain.DefaultOracleClientID
	}
	if cfg.Oracle.ClientVersion == "" {
		cfg.Oracle.ClientVersion = domain.DefaultOracleClientVer
	}
	if cfg.Oracle.TimeoutSeconds == 0 {
		cfg.Oracle.TimeoutSeconds = domain.DefaultOracleTimeout
	}
	if cfg.Oracle.CacheTTLSeconds > 0 && cfg.Oracle.CacheEntries == 0 {
		cfg.Oracle.CacheEntries = domain.DefaultOracleCacheEntries
	}
	if cfg.Classifier.RulesFile == "" {
		cfg.Classifier.RulesFile = filesystem.AppPath("blacklist.yaml")
	}
	if cfg.Decoder.Backend == "" {
		cfg.Decoder.Backend = domain.DecoderMulti
	}
	if cfg.Live.FrameTimeoutSeconds == 0 {
		cfg.Live.FrameTimeoutSeconds = domain.DefaultFrameTimeout
	}
	if cfg.History.Backend == "" {
		cfg.History.Backend = domain.LedgerMemory
	}
	if cfg.History.Layout == "" {
		cfg.History.Layout = domain.LayoutHistory
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = domain.DefaultServerAddr
	}
	if cfg.Server.SessionIdleMinutes == 0 {
		cfg.Server.SessionIdleMinutes = domain.DefaultSessionIdleMinutes
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = domain.DefaultMaxUploadMB
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
