package domain

import "time"

// ScanRecord is one ledger entry.
type ScanRecord struct {
	Payload   string    `json:"payload"`
	Verdict   Verdict   `json:"verdict"`
	Label     string    `json:"label"`
	ScannedAt time.Time `json:"scanned_at"`
	Source    Flow      `json:"source,omitempty"`
}

// NewScanRecord stamps a record at second resolution in local time.
func NewScanRecord(payload string, verdict Verdict, at time.Time, source Flow) ScanRecord {
	return ScanRecord{
		Payload:   payload,
		Verdict:   verdict,
		Label:     verdict.Label(),
		ScannedAt: at.Truncate(time.Second).Local(),
		Source:    source,
	}
}

// FormattedTime renders ScannedAt the way exports and listings show it.
func (r ScanRecord) FormattedTime() string {
	return r.ScannedAt.Format(TimestampFormat)
}

// ScanOutcome reports what happened to a single decoded payload.
type ScanOutcome struct {
	Record    ScanRecord `json:"record"`
	Inserted  bool       `json:"inserted"`
	Duplicate bool       `json:"duplicate"`
	Alert     string     `json:"alert,omitempty"`
}

// ScanResult aggregates the outcomes for one image or frame.
type ScanResult struct {
	Payloads []string      `json:"payloads"`
	Outcomes []ScanOutcome `json:"outcomes"`
}

// AlertMessage formats the interrupting notification for a non-safe verdict.
func AlertMessage(rec ScanRecord) string {
	return "⚠️ 掃描到" + rec.Verdict.Label() + " QR Code: " + rec.Payload
}
