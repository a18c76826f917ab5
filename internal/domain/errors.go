package domain

import "errors"

var (
	// ErrDecodeEmpty means no QR payload was found. It is a normal outcome, not a failure.
	ErrDecodeEmpty = errors.New("no QR code detected")
	// ErrUnsupportedImage is returned when an upload cannot be opened as an image.
	ErrUnsupportedImage = errors.New("unsupported image format")
	// ErrCameraUnavailable is returned when the live frame source cannot be acquired.
	ErrCameraUnavailable = errors.New("camera unavailable")
	// ErrOracleTransport covers network, timeout and malformed-response failures of the threat oracle.
	ErrOracleTransport = errors.New("threat oracle unavailable")
	// ErrMissingCredential is reported when no oracle API key is configured.
	ErrMissingCredential = errors.New("threat oracle credential missing")
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed is returned when a session is used after it ended.
	ErrSessionClosed = errors.New("session closed")
	// ErrAlreadyRunning is returned when the live feed is started twice.
	ErrAlreadyRunning = errors.New("live feed already running")
)
