package domain

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Oracle defaults, matching the Safe Browsing v4 lookup API.
const (
	DefaultOracleEndpoint   = "https://safebrowsing.googleapis.com/v4/threatMatches:find"
	DefaultOracleAuthEnvVar = "SAFE_BROWSING_API_KEY"
	DefaultOracleClientID   = "qr-scanner"
	DefaultOracleClientVer  = "1.0"
	DefaultOracleTimeout    = 5

	DefaultOracleCacheEntries = 1000
)

// Decoder backends
const (
	DecoderMulti  = "multi"
	DecoderSingle = "single"
)

// Ledger backends
const (
	LedgerMemory = "memory"
	LedgerSQLite = "sqlite"
)

// Export layouts
const (
	LayoutHistory = "history"
	LayoutCapture = "capture"
)

// Live feed and server defaults
const (
	DefaultFrameTimeout       = 5
	DefaultServerAddr         = ":8501"
	DefaultSessionIdleMinutes = 30
	DefaultMaxUploadMB        = 10
)

// Time formats
const (
	// TimestampFormat is how scan times are rendered in exports and listings.
	TimestampFormat = "2006-01-02 15:04:05"
)
