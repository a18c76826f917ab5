package commands

// Annotation keys
const (
	// AnnotationNoContainer marks commands that run without loading the full container.
	AnnotationNoContainer = "qrshield/no-container"
)

// Error messages
const (
	ErrScanServiceUnavailable   = "scan service unavailable"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
)

// Output messages
const (
	MsgNoCodeFound        = "未偵測到 QR Code"
	MsgConfigurationValid = "Configuration valid"
	MsgConfigInitialized  = "Wrote default configuration to"
	MsgConfigExists       = "Configuration already exists at"
)
