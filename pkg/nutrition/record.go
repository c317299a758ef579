package nutrition

import (
	"encoding/json"
	"strings"

	"github.com/matzehuels/nutrilabel/pkg/errors"
)

// Fact is one nutrient's amount on a record.
type Fact struct {
	Amount        float64
	Unit          string
	Present       bool    // false when the cell was blank or unparseable
	DailyValue    float64 // percent of the daily value
	HasDailyValue bool
}

// AmountText formats the amount with its unit, e.g. "7g" or "0mg".
// Absent amounts print as "0".
func (f Fact) AmountText() string {
	return FormatAmount(f.Amount) + f.Unit
}

// DailyValueText formats the %DV, or returns "" when it is not computed.
func (f Fact) DailyValueText() string {
	if !f.HasDailyValue {
		return ""
	}
	return FormatPercent(f.DailyValue)
}

// Record is one product's label data. It is immutable once built.
type Record struct {
	Name        string
	ServingSize string
	facts       map[Nutrient]Fact
	footnotes   []string
}

// NewRecord builds a record from the amounts that are present. Nutrients
// missing from amounts are recorded as absent. Blank footnotes are dropped.
func NewRecord(name, servingSize string, amounts map[Nutrient]float64, footnotes ...string) *Record {
	r := &Record{
		Name:        strings.TrimSpace(name),
		ServingSize: strings.TrimSpace(servingSize),
		facts:       make(map[Nutrient]Fact, len(AllNutrients)),
	}
	for _, n := range AllNutrients {
		amount, ok := amounts[n]
		r.facts[n] = newFact(n, amount, ok)
	}
	for _, f := range footnotes {
		if f = strings.TrimSpace(f); f != "" {
			r.footnotes = append(r.footnotes, f)
		}
	}
	return r
}

func newFact(n Nutrient, amount float64, present bool) Fact {
	f := Fact{Unit: n.Unit(), Present: present}
	if !present {
		return f
	}
	f.Amount = amount
	if pct, ok := PercentDailyValue(n, amount); ok {
		f.DailyValue = pct
		f.HasDailyValue = true
	}
	return f
}

// Fact returns the fact for n. Unknown nutrients return an absent fact.
func (r *Record) Fact(n Nutrient) Fact {
	if f, ok := r.facts[n]; ok {
		return f
	}
	return Fact{Unit: n.Unit()}
}

// Calories returns the Energy amount.
func (r *Record) Calories() float64 { return r.facts[Energy].Amount }

// Footnotes returns the footnotes in print order.
func (r *Record) Footnotes() []string {
	return append([]string(nil), r.footnotes...)
}

// Validate reports the first required field the record lacks.
func (r *Record) Validate() error {
	if r == nil {
		return errors.New(errors.ErrCodeInvalidInput, "record is nil")
	}
	if r.Name == "" {
		return errors.New(errors.ErrCodeInvalidInput, "record has no product name")
	}
	if r.ServingSize == "" {
		return errors.New(errors.ErrCodeInvalidInput, "%s: missing %s", r.Name, ColumnServingSize)
	}
	for _, n := range AllNutrients {
		if n.Required() && !r.Fact(n).Present {
			return errors.New(errors.ErrCodeInvalidInput, "%s: missing %s", r.Name, n)
		}
	}
	return nil
}

type jsonFact struct {
	Name           string  `json:"name"`
	Amount         float64 `json:"amount"`
	Unit           string  `json:"unit,omitempty"`
	Present        bool    `json:"present"`
	Indent         int     `json:"indent,omitempty"`
	DailyValue     float64 `json:"daily_value,omitempty"`
	DailyValueText string  `json:"daily_value_text,omitempty"`
}

type jsonRecord struct {
	Name        string     `json:"name"`
	ServingSize string     `json:"serving_size"`
	Calories    float64    `json:"calories"`
	Nutrients   []jsonFact `json:"nutrients"`
	Footnotes   []string   `json:"footnotes,omitempty"`
}

// MarshalJSON emits nutrients in label order.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := jsonRecord{
		Name:        r.Name,
		ServingSize: r.ServingSize,
		Calories:    r.Calories(),
		Footnotes:   r.footnotes,
	}
	for _, n := range LabelOrder {
		f := r.Fact(n)
		out.Nutrients = append(out.Nutrients, jsonFact{
			Name:           string(n),
			Amount:         f.Amount,
			Unit:           f.Unit,
			Present:        f.Present,
			Indent:         n.Indent(),
			DailyValue:     f.DailyValue,
			DailyValueText: f.DailyValueText(),
		})
	}
	return json.Marshal(out)
}
