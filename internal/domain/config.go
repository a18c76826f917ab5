package domain

import "time"

// Config mirrors ~/.qrshield/config.yaml.
type Config struct {
	ConfigFormatVersion string             `yaml:"config_format_version"`
	Oracle              OracleSettings     `yaml:"oracle"`
	Classifier          ClassifierSettings `yaml:"classifier"`
	Decoder             DecoderSettings    `yaml:"decoder"`
	Live                LiveSettings       `yaml:"live"`
	History             HistorySettings    `yaml:"history"`
	Server              ServerSettings     `yaml:"server"`
}

// OracleSettings configures the Safe Browsing lookup.
type OracleSettings struct {
	Endpoint         string   `yaml:"endpoint"`
	AuthEnvVar       string   `yaml:"auth_env_var"`
	ClientID         string   `yaml:"client_id"`
	ClientVersion    string   `yaml:"client_version"`
	TimeoutSeconds   int      `yaml:"timeout"`
	ThreatTypes      []string `yaml:"threat_types"`
	PlatformTypes    []string `yaml:"platform_types"`
	ThreatEntryTypes []string `yaml:"threat_entry_types"`
	CacheTTLSeconds  int      `yaml:"cache_ttl"`
	CacheEntries     int      `yaml:"cache_entries"`
}

// Timeout returns the per-request deadline.
func (o OracleSettings) Timeout() time.Duration {
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long a successful lookup is reused. Zero disables caching.
func (o OracleSettings) CacheTTL() time.Duration {
	return time.Duration(o.CacheTTLSeconds) * time.Second
}

// ClassifierSettings configures the keyword rules and the per-flow URL gate.
type ClassifierSettings struct {
	RulesFile string         `yaml:"rules_file"`
	URLGate   URLGateSettings `yaml:"url_gate"`
}

// URLGateSettings toggles the well-formed URL check per flow.
type URLGateSettings struct {
	Upload  bool `yaml:"upload"`
	Live    bool `yaml:"live"`
	Capture bool `yaml:"capture"`
}

// Enabled reports whether the gate applies to flow.
func (g URLGateSettings) Enabled(flow Flow) bool {
	switch flow {
	case FlowUpload:
		return g.Upload
	case FlowLive:
		return g.Live
	case FlowCapture:
		return g.Capture
	default:
		return false
	}
}

// DecoderSettings picks the QR decoding backend.
type DecoderSettings struct {
	Backend   string `yaml:"backend"`
	TryHarder bool   `yaml:"try_harder"`
}

// LiveSettings controls the frame loop.
type LiveSettings struct {
	Source              string `yaml:"source"`
	FrameTimeoutSeconds int    `yaml:"frame_timeout"`
}

// FrameTimeout returns the per-frame read deadline.
func (l LiveSettings) FrameTimeout() time.Duration {
	return time.Duration(l.FrameTimeoutSeconds) * time.Second
}

// HistorySettings controls the session ledger and exports.
type HistorySettings struct {
	Backend string `yaml:"backend"`
	Layout  string `yaml:"layout"`
}

// ServerSettings configures the HTTP surface.
type ServerSettings struct {
	Addr               string `yaml:"addr"`
	SessionIdleMinutes int    `yaml:"session_idle_timeout"`
	MaxUploadMB        int    `yaml:"max_upload_mb"`
}

// SessionIdleTimeout returns how long an untouched session survives.
func (s ServerSettings) SessionIdleTimeout() time.Duration {
	return time.Duration(s.SessionIdleMinutes) * time.Minute
}

// MaxUploadBytes returns the request body cap for image uploads.
func (s ServerSettings) MaxUploadBytes() int64 {
	return int64(s.MaxUploadMB) << 20
}
