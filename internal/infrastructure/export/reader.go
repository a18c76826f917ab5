package export

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var errUnterminatedQuote = errors.New("unterminated quoted field")

// rowReader splits CSV rows like csv.Reader but keeps quoted fields byte for byte.
// csv.Reader folds \r\n inside quotes into \n, which breaks vCard and Wi-Fi payloads.
type rowReader struct {
	br   *bufio.Reader
	line int
}

func newRowReader(br *bufio.Reader) *rowReader {
	return &rowReader{br: br}
}

// Read returns the next non-blank row or io.EOF.
func (r *rowReader) Read() ([]string, error) {
	for {
		row, err := r.readRow()
		if err != nil {
			return nil, err
		}
		if len(row) == 1 && row[0] == "" {
			continue
		}
		return row, nil
	}
}

func (r *rowReader) readRow() ([]string, error) {
	var (
		fields   []string
		field    strings.Builder
		quoted   bool
		inQuotes bool
		started  bool
	)
	r.line++
	for {
		c, _, err := r.br.ReadRune()
		if errors.Is(err, io.EOF) {
			if inQuotes {
				return nil, errUnterminatedQuote
			}
			if !started {
				return nil, io.EOF
			}
			return append(fields, field.String()), nil
		}
		if err != nil {
			return nil, err
		}
		started = true

		if inQuotes {
			if c != '"' {
				if c == '\n' {
					r.line++
				}
				field.WriteRune(c)
				continue
			}
			next, _, err := r.br.ReadRune()
			if err == nil && next == '"' {
				field.WriteByte('"')
				continue
			}
			if err == nil {
				_ = r.br.UnreadRune()
			}
			inQuotes = false
			continue
		}

		switch c {
		case '"':
			if field.Len() == 0 && !quoted {
				inQuotes, quoted = true, true
				continue
			}
			field.WriteRune(c)
		case ',':
			fields = append(fields, field.String())
			field.Reset()
			quoted = false
		case '\r':
			if next, _, err := r.br.ReadRune(); err == nil {
				if next == '\n' {
					return append(fields, field.String()), nil
				}
				_ = r.br.UnreadRune()
			}
			field.WriteRune(c)
		case '\n':
			return append(fields, field.String()), nil
		default:
			field.WriteRune(c)
		}
	}
}
