package export

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/doeshing/qrshield/internal/domain"
	"github.com/doeshing/qrshield/internal/ports"
)

const bom = "\ufeff"

var headers = map[string][]string{
	domain.LayoutHistory: {"qr", "status", "time"},
	domain.LayoutCapture: {"序號", "掃描結果", "判定", "掃描時間"},
}

var fileNames = map[string]string{
	domain.LayoutHistory: "qr_history.csv",
	domain.LayoutCapture: "qr_scan_history.csv",
}

// CSV writes ledger snapshots as spreadsheet-friendly UTF-8 CSV.
type CSV struct{}

// Export writes records in layout. Identical input produces identical bytes. Rows end
// in \n and payload bytes, \r included, are written unchanged inside quotes.
func (CSV) Export(w io.Writer, records []domain.ScanRecord, layout string) error {
	header, ok := headers[layout]
	if !ok {
		return fmt.Errorf("unknown export layout %q", layout)
	}
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, rec := range records {
		var row []string
		if layout == domain.LayoutCapture {
			row = []string{strconv.Itoa(i + 1), rec.Payload, rec.Verdict.Label(), rec.FormattedTime()}
		} else {
			row = []string{rec.Payload, rec.Verdict.Label(), rec.FormattedTime()}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileName returns the download name for layout.
func FileName(layout string) string {
	if name, ok := fileNames[layout]; ok {
		return name
	}
	return fileNames[domain.LayoutHistory]
}

// ValidLayout reports whether layout is known.
func ValidLayout(layout string) bool {
	_, ok := headers[layout]
	return ok
}

// ParseCSV reads an export back into records. Source is not part of the file and stays empty.
func ParseCSV(r io.Reader, layout string) ([]domain.ScanRecord, error) {
	header, ok := headers[layout]
	if !ok {
		return nil, fmt.Errorf("unknown export layout %q", layout)
	}

	br := bufio.NewReader(r)
	if lead, err := br.Peek(len(bom)); err == nil && string(lead) == bom {
		_, _ = br.Discard(len(bom))
	}
	cr := newRowReader(br)

	got, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty export")
		}
		return nil, err
	}
	if len(got) != len(header) {
		return nil, fmt.Errorf("unexpected header %v", got)
	}
	for i := range header {
		if got[i] != header[i] {
			return nil, fmt.Errorf("unexpected header %v", got)
		}
	}

	var records []domain.ScanRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", cr.line, err)
		}
		if len(row) != len(header) {
			return nil, fmt.Errorf("line %d: got %d fields, want %d", cr.line, len(row), len(header))
		}
		if layout == domain.LayoutCapture {
			row = row[1:]
		}
		verdict, ok := domain.ParseVerdict(row[1])
		if !ok {
			return nil, fmt.Errorf("unknown verdict %q", row[1])
		}
		at, err := time.ParseInLocation(domain.TimestampFormat, row[2], time.Local)
		if err != nil {
			return nil, fmt.Errorf("bad time %q: %w", row[2], err)
		}
		records = append(records, domain.NewScanRecord(row[0], verdict, at, ""))
	}
	return records, nil
}

var _ ports.Exporter = CSV{}
