package helpers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/infrastructure/alert"
	"github.com/doeshing/qrshield/internal/infrastructure/export"
	"github.com/doeshing/qrshield/internal/ports"
)

const msgNoHistory = "No scans recorded in this session."

// PrintBanner prints the ASCII-art title followed by a subtitle line.
func PrintBanner(out io.Writer, subtitle string) {
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	_, _ = green.Fprint(out, figure.NewFigure("QRSHIELD", "doom", true).String())
	_, _ = cyan.Fprintln(out, strings.Repeat("═", 48))
	_, _ = fmt.Fprintf(out, "    %s\n", subtitle)
	_, _ = cyan.Fprintln(out, strings.Repeat("═", 48))
}

// PrintOutcome prints one scanned payload with its coloured verdict.
func PrintOutcome(out io.Writer, outcome domain.ScanOutcome) {
	rec := outcome.Record
	switch {
	case outcome.Duplicate:
		fmt.Fprintf(out, "  %s  %s (already scanned)\n", alert.Label(rec.Verdict), rec.Payload)
	default:
		fmt.Fprintf(out, "  %s  %s\n", alert.Label(rec.Verdict), rec.Payload)
	}
}

// PrintHistory lists the session ledger, newest last, with relative times.
func PrintHistory(out io.Writer, records []domain.ScanRecord, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(out, msgNoHistory)
		return
	}
	fmt.Fprintf(out, "\nSession history (%d):\n", len(records))
	for i, rec := range records {
		fmt.Fprintf(out, "%3d. %-40s %s  %s (%s)\n",
			i+1,
			truncate(rec.Payload, 40),
			alert.Label(rec.Verdict),
			rec.FormattedTime(),
			humanize.RelTime(rec.ScannedAt, now, "ago", "from now"),
		)
	}
}

// SummarizeVerdicts counts records per verdict in display order.
func SummarizeVerdicts(records []domain.ScanRecord) string {
	counts := map[domain.Verdict]int{}
	for _, rec := range records {
		counts[rec.Verdict]++
	}
	order := []domain.Verdict{domain.VerdictSafe, domain.VerdictSuspicious, domain.VerdictKnownFraud, domain.VerdictLookupError}
	parts := make([]string, 0, len(order))
	for _, v := range order {
		if counts[v] > 0 {
			parts = append(parts, fmt.Sprintf("%s %s", v.Label(), humanize.Comma(int64(counts[v]))))
		}
	}
	return strings.Join(parts, ", ")
}

// ExportRecords writes records to path. A directory path gets the layout's default file name.
func ExportRecords(exporter ports.Exporter, path string, records []domain.ScanRecord, layout string) (string, error) {
	if !export.ValidLayout(layout) {
		return "", fmt.Errorf("layout must be %s or %s", domain.LayoutHistory, domain.LayoutCapture)
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, export.FileName(layout))
	}
	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := exporter.Export(file, records, layout); err != nil {
		file.Close()
		return "", err
	}
	return path, file.Close()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
