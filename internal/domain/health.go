package domain

import "fmt"

// HealthStatus is the outcome of one doctor check, ordered ok < warn < error.
type HealthStatus string

const (
	HealthOK    HealthStatus = "ok"
	HealthWarn  HealthStatus = "warn"
	HealthError HealthStatus = "error"
)

func (s HealthStatus) rank() int {
	switch s {
	case HealthOK:
		return 0
	case HealthWarn:
		return 1
	default:
		return 2
	}
}

// HealthCheck is a single diagnostic line such as "API key" or "QR decoder".
type HealthCheck struct {
	Name    string
	Status  HealthStatus
	Details string
}

// HealthReport collects the checks of one doctor run in execution order.
type HealthReport struct {
	Checks []HealthCheck
}

// Worst returns the most severe status in the report, HealthOK when empty.
func (r HealthReport) Worst() HealthStatus {
	worst := HealthOK
	for _, c := range r.Checks {
		if c.Status.rank() > worst.rank() {
			worst = c.Status
		}
	}
	return worst
}

// Failed reports whether any check ended in error. Warnings do not fail a run.
func (r HealthReport) Failed() bool {
	return r.Worst() == HealthError
}

// Summary renders counts per status, e.g. "5 ok, 2 warn, 0 error".
func (r HealthReport) Summary() string {
	counts := map[HealthStatus]int{}
	for _, c := range r.Checks {
		counts[c.Status]++
	}
	return fmt.Sprintf("%d ok, %d warn, %d error", counts[HealthOK], counts[HealthWarn], counts[HealthError])
}
