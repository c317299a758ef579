package nutrition

import (
	"strings"

	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/sheets"
)

// Catalog maps product names to records, preserving sheet order.
type Catalog struct {
	records []*Record
	index   map[string]int
}

// NewCatalog collects the successful results. A product name seen twice
// keeps the first row; later rows are returned as ROW_PARSE_ERROR results
// together with the failed rows, in sheet order.
func NewCatalog(results []RowResult) (*Catalog, []RowResult) {
	c := &Catalog{index: make(map[string]int, len(results))}
	firstRow := make(map[string]int, len(results))
	var skipped []RowResult
	for _, res := range results {
		if res.Err != nil {
			skipped = append(skipped, res)
			continue
		}
		if first, dup := firstRow[res.Record.Name]; dup {
			res.Err = errors.New(errors.ErrCodeRowParse, "row %d: duplicate product %q (first seen in row %d)",
				res.Row, res.Record.Name, first)
			res.Record = nil
			skipped = append(skipped, res)
			continue
		}
		firstRow[res.Record.Name] = res.Row
		c.index[res.Record.Name] = len(c.records)
		c.records = append(c.records, res.Record)
	}
	return c, skipped
}

// Parse validates t and assembles a catalog. The error is non-nil only for
// header problems, in which case nothing is returned.
func Parse(t *sheets.Table) (*Catalog, []RowResult, error) {
	results, err := ParseRows(t)
	if err != nil {
		return nil, nil, err
	}
	c, skipped := NewCatalog(results)
	return c, skipped, nil
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// Names returns product names in sheet order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.records))
	for i, r := range c.records {
		names[i] = r.Name
	}
	return names
}

// Records returns all records in sheet order.
func (c *Catalog) Records() []*Record {
	if c == nil {
		return nil
	}
	return append([]*Record(nil), c.records...)
}

// Get looks up a product by name. Surrounding whitespace is ignored.
func (c *Catalog) Get(name string) (*Record, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.index[strings.TrimSpace(name)]
	if !ok {
		return nil, false
	}
	return c.records[i], true
}
