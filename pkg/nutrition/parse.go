package nutrition

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/sheets"
)

// RowResult is the tagged outcome of one data row: exactly one of Record
// and Err is set. Err always carries ROW_PARSE_ERROR.
type RowResult struct {
	Row     int // 1-based sheet row, header is row 1
	Product string
	Record  *Record
	Err     error
}

type columns struct {
	product   int
	serving   int
	nutrients map[Nutrient]int
	footnote  int
	footnote2 int
}

func resolveColumns(t *sheets.Table) (*columns, error) {
	c := &columns{
		product:   t.Column(ColumnProduct),
		serving:   t.Column(ColumnServingSize),
		nutrients: make(map[Nutrient]int, len(AllNutrients)),
		footnote:  t.Column(ColumnFootnote),
		footnote2: t.Column(ColumnFootnote2),
	}

	var missing []string
	if c.product < 0 {
		missing = append(missing, ColumnProduct)
	}
	if c.serving < 0 {
		missing = append(missing, ColumnServingSize)
	}
	for _, n := range AllNutrients {
		idx := -1
		for _, name := range n.Columns() {
			if idx = t.Column(name); idx >= 0 {
				break
			}
		}
		c.nutrients[n] = idx
		if idx < 0 && n.Required() {
			missing = append(missing, string(n))
		}
	}

	if len(missing) > 0 {
		return nil, errors.New(errors.ErrCodeFetch, "sheet is missing required column(s): %s", strings.Join(missing, ", "))
	}
	return c, nil
}

// ParseRows validates every non-blank data row of t. It fails only when a
// required column is missing from the header.
func ParseRows(t *sheets.Table) ([]RowResult, error) {
	cols, err := resolveColumns(t)
	if err != nil {
		return nil, err
	}

	var results []RowResult
	for i, row := range t.Rows {
		if sheets.IsBlankRow(row) {
			continue
		}
		results = append(results, parseRow(t, cols, i+2, row))
	}
	return results, nil
}

func parseRow(t *sheets.Table, cols *columns, rowNum int, row []string) RowResult {
	res := RowResult{Row: rowNum, Product: strings.TrimSpace(t.Cell(row, cols.product))}
	fail := func(format string, args ...any) RowResult {
		res.Err = errors.New(errors.ErrCodeRowParse, "row %d: "+format, append([]any{rowNum}, args...)...)
		return res
	}

	if res.Product == "" {
		return fail("%s is blank", ColumnProduct)
	}
	serving := strings.TrimSpace(t.Cell(row, cols.serving))
	if serving == "" {
		return fail("%s is blank for %q", ColumnServingSize, res.Product)
	}

	amounts := make(map[Nutrient]float64, len(AllNutrients))
	for _, n := range AllNutrients {
		idx := cols.nutrients[n]
		if idx < 0 {
			continue
		}
		v, err := ParseAmount(t.Cell(row, idx), n)
		if err != nil {
			if n.Required() {
				return fail("%s for %q: %v", n, res.Product, err)
			}
			continue
		}
		amounts[n] = v
	}

	footnote := strings.TrimSpace(t.Cell(row, cols.footnote))
	if footnote == "" {
		footnote = DefaultFootnote
	}
	footnote2 := strings.TrimSpace(t.Cell(row, cols.footnote2))
	if footnote2 == "" {
		footnote2 = DefaultFootnote2
	}

	res.Record = NewRecord(res.Product, serving, amounts, footnote, footnote2)
	return res
}

type amountError string

func (e amountError) Error() string { return string(e) }

const (
	errBlank     amountError = "value is blank"
	errNotNumber amountError = "value is not a number"
	errNegative  amountError = "value is negative"
	errNotFinite amountError = "value is not finite"
)

// ParseAmount parses a numeric cell. Thousands separators and n's own
// unit suffix ("7g", "95 mg") are accepted.
func ParseAmount(cell string, n Nutrient) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, errBlank
	}
	s = strings.ReplaceAll(s, ",", "")
	for _, suffix := range unitSuffixes(n) {
		if len(s) > len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix) {
			s = strings.TrimSpace(s[:len(s)-len(suffix)])
			break
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errNotNumber
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	if v < 0 {
		return 0, errNegative
	}
	return v, nil
}

func unitSuffixes(n Nutrient) []string {
	if n == Energy {
		return []string{"kcal", "cal"}
	}
	if u := n.Unit(); u != "" {
		return []string{u}
	}
	return nil
}
