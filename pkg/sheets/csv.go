package sheets

import (
	"encoding/csv"
	"io"

	"github.com/matzehuels/nutrilabel/pkg/errors"
)

// ParseCSV decodes a CSV body. Ragged rows are allowed; leading blank rows
// are skipped and the first non-blank row is the header.
func ParseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "malformed CSV")
	}
	t := newTable(records)
	if len(t.Header) == 0 {
		return nil, errors.New(errors.ErrCodeFetch, "sheet is empty")
	}
	return t, nil
}
