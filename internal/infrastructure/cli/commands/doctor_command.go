package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/doeshing/qrshield/internal/app"
	"github.com/doeshing/qrshield/internal/domain"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctorDiagnostics(cmd, cmd.OutOrStdout(), container)
		},
	}
}

// runDoctorDiagnostics runs environment diagnostics
func runDoctorDiagnostics(cmd *cobra.Command, out io.Writer, container *app.Container) error {
	if container.DoctorService == nil {
		return errors.New(ErrDoctorServiceUnavailable)
	}

	report, err := container.DoctorService.Run(cmd.Context())

	// Display report even if there were errors
	displayDoctorReport(out, report)

	if err != nil {
		return fmt.Errorf("diagnostics completed with errors: %w", err)
	}
	if report.Failed() {
		return errors.New("diagnostics reported failures")
	}
	return nil
}

// displayDoctorReport displays the health check report
func displayDoctorReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		status := statusColor(check.Status).Sprintf("[%s]", strings.ToUpper(string(check.Status)))
		fmt.Fprintf(out, "%s %s - %s\n", status, check.Name, check.Details)
	}
	fmt.Fprintf(out, "%s %s\n", statusColor(report.Worst()).Sprint("Summary:"), report.Summary())
}

func statusColor(status domain.HealthStatus) *color.Color {
	switch status {
	case domain.HealthOK:
		return color.New(color.FgGreen)
	case domain.HealthWarn:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
