package csvparser

import (
	"fmt"
	"regexp"
	"strings"
)

// Row maps a header to the cleaned cell value in that column.
type Row map[string]string

// SkippedRow is a data line dropped because its field count did not match
// the header.
type SkippedRow struct {
	Line     int    `json:"line"`
	Expected int    `json:"expected"`
	Got      int    `json:"got"`
	Content  string `json:"content"`
}

// Table is the parsed file: headers in column order and rows in file order.
type Table struct {
	Headers []string
	Rows    []Row
	Skipped []SkippedRow
}

type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return "csv: " + e.Msg
}

var (
	ErrNoHeaders  = &ParseError{Msg: "no column headers found, the file needs a header row"}
	ErrNoDataRows = &ParseError{Msg: "no data rows found"}
)

var lineBreak = regexp.MustCompile(`\r\n?|\n`)

// Parse reads lead CSV text. The header line is split on plain commas;
// data lines honour double-quoted fields with "" escapes. Lines whose field
// count differs from the header are skipped and reported in Table.Skipped.
func Parse(text string) (*Table, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoHeaders
	}

	lines := lineBreak.Split(text, -1)

	headers, err := parseHeader(lines[0])
	if err != nil {
		return nil, err
	}

	table := &Table{Headers: headers}

	for i, raw := range lines[1:] {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		values := splitQuoted(line)
		if len(values) != len(headers) {
			table.Skipped = append(table.Skipped, SkippedRow{
				Line:     i + 2,
				Expected: len(headers),
				Got:      len(values),
				Content:  line,
			})
			continue
		}

		row := make(Row, len(headers))
		for idx, h := range headers {
			row[h] = cleanField(values[idx])
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return table, ErrNoDataRows
	}

	return table, nil
}

func parseHeader(line string) ([]string, error) {
	if strings.TrimSpace(line) == "" {
		return nil, ErrNoHeaders
	}

	parts := strings.Split(line, ",")
	headers := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for _, p := range parts {
		h := stripHeaderQuotes(strings.TrimSpace(p))
		if _, dup := seen[h]; dup {
			return nil, &ParseError{Msg: fmt.Sprintf("duplicate column header %q", h)}
		}
		seen[h] = struct{}{}
		headers = append(headers, h)
	}

	return headers, nil
}

// stripHeaderQuotes removes at most one leading and one trailing quote
// character, single or double.
func stripHeaderQuotes(h string) string {
	if h != "" && (h[0] == '"' || h[0] == '\'') {
		h = h[1:]
	}
	if h != "" && (h[len(h)-1] == '"' || h[len(h)-1] == '\'') {
		h = h[:len(h)-1]
	}
	return h
}

// splitQuoted splits on commas that sit outside a double-quoted span.
// Quote characters are kept; cleanField removes them.
func splitQuoted(line string) []string {
	var (
		fields   []string
		start    int
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				fields = append(fields, line[start:i])
				start = i + 1
			}
		}
	}

	return append(fields, line[start:])
}

func cleanField(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	return strings.ReplaceAll(v, `""`, `"`)
}
