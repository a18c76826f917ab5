package domain

import "strings"

// Verdict is the classification assigned to a decoded payload.
type Verdict string

const (
	VerdictSafe        Verdict = "safe"
	VerdictSuspicious  Verdict = "suspicious"
	VerdictKnownFraud  Verdict = "known_fraud"
	VerdictLookupError Verdict = "lookup_error"
)

var verdictLabels = map[Verdict]string{
	VerdictSafe:        "安全",
	VerdictSuspicious:  "疑似詐騙",
	VerdictKnownFraud:  "已知詐騙",
	VerdictLookupError: "API 錯誤",
}

// Label returns the user-facing label used in alerts, CSV exports and the query surface.
func (v Verdict) Label() string {
	if label, ok := verdictLabels[v]; ok {
		return label
	}
	return string(v)
}

// Valid reports whether v is one of the known verdicts.
func (v Verdict) Valid() bool {
	_, ok := verdictLabels[v]
	return ok
}

// Alerting reports whether the verdict should interrupt the user.
func (v Verdict) Alerting() bool {
	return v != VerdictSafe
}

// ParseVerdict accepts either the key ("known_fraud") or the display label ("已知詐騙").
func ParseVerdict(value string) (Verdict, bool) {
	value = strings.TrimSpace(value)
	if v := Verdict(strings.ToLower(value)); v.Valid() {
		return v, true
	}
	for v, label := range verdictLabels {
		if label == value {
			return v, true
		}
	}
	return "", false
}

// Flow names the path a payload entered the system through.
type Flow string

const (
	FlowUpload  Flow = "upload"
	FlowLive    Flow = "live"
	FlowCapture Flow = "capture"
)
