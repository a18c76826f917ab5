// Package ports defines the interfaces (ports) between the scanning core and its adapters.
//
// The application layer (classifier, scan service, live orchestrator, doctor) depends only
// on these interfaces. Concrete adapters live under internal/infrastructure: the QR decoder
// backends, the Safe Browsing client, the session ledgers, frame sources and the CLI/HTTP
// surfaces.
package ports

import (
	"context"
	"image"
	"io"

	"github.com/doeshing/qrshield/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.qrshield/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Decoder turns an image into zero or more decoded QR payloads.
// An image without a readable symbol yields an empty slice and no error.
type Decoder interface {
	Name() string
	Decode(img image.Image) ([]string, error)
}

// ThreatOracle asks a remote reputation service whether a URL is known bad.
// Any transport, timeout or parse failure is returned as an error.
type ThreatOracle interface {
	Name() string
	Lookup(ctx context.Context, url string) (matched bool, err error)
}

// KeywordMatcher evaluates payloads against the blacklist.
type KeywordMatcher interface {
	Match(text string) []domain.KeywordMatch
	Keywords() []string
}

// Ledger is the per-session, payload-deduplicated scan history.
type Ledger interface {
	Record(rec domain.ScanRecord) (bool, error)
	Contains(payload string) (bool, error)
	Snapshot() ([]domain.ScanRecord, error)
	Len() int
	Close() error
}

// LedgerFactory creates a fresh, empty ledger for a new session.
type LedgerFactory func() (Ledger, error)

// Alerter surfaces non-safe verdicts to the user immediately.
type Alerter interface {
	Alert(ctx context.Context, rec domain.ScanRecord)
}

// FrameSource yields frames from a camera-like device until exhausted.
// Next returns io.EOF when no more frames are available.
type FrameSource interface {
	Next(ctx context.Context) (image.Image, error)
	io.Closer
}

// FrameSourceOpener acquires a frame source.
type FrameSourceOpener interface {
	Describe() string
	Open(ctx context.Context) (FrameSource, error)
}

// FrameViewer displays frames as they are processed. Optional.
type FrameViewer interface {
	Show(frame image.Image) error
}

// Exporter serialises ledger records.
type Exporter interface {
	Export(w io.Writer, records []domain.ScanRecord, layout string) error
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
