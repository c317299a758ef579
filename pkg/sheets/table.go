package sheets

import "strings"

// Format is a spreadsheet export format.
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// ParseFormat validates a format name. Empty means CSV.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", CSV:
		return CSV, true
	case XLSX:
		return XLSX, true
	}
	return "", false
}

// Table is a decoded sheet: the header row and every following row.
// Row cells are raw strings; rows may be shorter than the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// Cell returns row[col], or "" when the row is short.
func (t *Table) Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// Column returns the index of the header matching name (case-insensitive,
// surrounding whitespace ignored), or -1.
func (t *Table) Column(name string) int {
	name = strings.TrimSpace(name)
	for i, h := range t.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

func newTable(records [][]string) *Table {
	t := &Table{}
	for i, rec := range records {
		if IsBlankRow(rec) {
			continue
		}
		t.Header = make([]string, len(rec))
		for j, h := range rec {
			t.Header[j] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		}
		t.Rows = records[i+1:]
		break
	}
	return t
}

// IsBlankRow reports whether every cell of row is empty or whitespace.
func IsBlankRow(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
