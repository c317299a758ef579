package sheets

import (
	"bytes"

	"github.com/unidoc/unioffice/spreadsheet"
	"github.com/unidoc/unioffice/spreadsheet/reference"

	"github.com/matzehuels/nutrilabel/pkg/errors"
)

// ParseXLSX decodes the first worksheet of an XLSX workbook. Cells are
// placed by their column reference, so sparse rows keep their alignment.
func ParseXLSX(data []byte) (*Table, error) {
	wb, err := spreadsheet.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "malformed XLSX")
	}
	sheets := wb.Sheets()
	if len(sheets) == 0 {
		return nil, errors.New(errors.ErrCodeFetch, "workbook has no sheets")
	}

	var records [][]string
	for _, row := range sheets[0].Rows() {
		var rec []string
		for _, cell := range row.Cells() {
			col, err := cell.Column()
			if err != nil {
				continue
			}
			idx := int(reference.ColumnToIndex(col))
			for len(rec) <= idx {
				rec = append(rec, "")
			}
			rec[idx] = cell.GetString()
		}
		records = append(records, rec)
	}

	t := newTable(records)
	if len(t.Header) == 0 {
		return nil, errors.New(errors.ErrCodeFetch, "sheet is empty")
	}
	return t, nil
}
