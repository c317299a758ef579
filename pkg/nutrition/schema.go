package nutrition

// Nutrient names a spreadsheet column holding a numeric amount.
type Nutrient string

const (
	Energy            Nutrient = "Energy"
	TotalFat          Nutrient = "Total Fat"
	SaturatedFat      Nutrient = "Saturated Fat"
	TransFat          Nutrient = "Trans Fat"
	Cholesterol       Nutrient = "Cholesterol"
	Sodium            Nutrient = "Sodium"
	TotalCarbohydrate Nutrient = "Total Carbohydrate"
	DietaryFiber      Nutrient = "Dietary Fiber"
	TotalSugars       Nutrient = "Total Sugars"
	AddedSugars       Nutrient = "Added Sugars"
	Protein           Nutrient = "Protein"
	VitaminD          Nutrient = "Vitamin D"
	Calcium           Nutrient = "Calcium"
	Iron              Nutrient = "Iron"
	Potassium         Nutrient = "Potassium"
)

// Text columns.
const (
	ColumnProduct     = "Product"
	ColumnServingSize = "Serving Size"
	ColumnFootnote    = "Footnote"
	ColumnFootnote2   = "Footnote2"
)

// Default footnotes printed when the sheet leaves them blank.
const (
	DefaultFootnote  = "* The % Daily Value (DV) tells you how much a nutrient in a serving of food contributes to a daily diet. 2,000 calories a day is used for general nutrition advice."
	DefaultFootnote2 = "* Values are approximate and based on standard food composition tables. Actual values may vary."
)

type nutrientInfo struct {
	unit       string
	indent     int
	dailyValue float64
	required   bool
	aliases    []string
}

var schema = map[Nutrient]nutrientInfo{
	Energy:            {unit: "", required: true},
	TotalFat:          {unit: "g", dailyValue: 78, required: true},
	SaturatedFat:      {unit: "g", indent: 1, dailyValue: 20, required: true},
	TransFat:          {unit: "g", indent: 1, required: true},
	Cholesterol:       {unit: "mg", dailyValue: 300, required: true},
	Sodium:            {unit: "mg", dailyValue: 2300, required: true, aliases: []string{"Sodium(mg)", "Sodium (mg)"}},
	TotalCarbohydrate: {unit: "g", dailyValue: 275, required: true},
	DietaryFiber:      {unit: "g", indent: 1, dailyValue: 28, required: true},
	TotalSugars:       {unit: "g", indent: 1, required: true},
	AddedSugars:       {unit: "g", indent: 2, dailyValue: 50, required: true},
	Protein:           {unit: "g", dailyValue: 50, required: true},
	VitaminD:          {unit: "mcg", dailyValue: 20},
	Calcium:           {unit: "mg", dailyValue: 1300},
	Iron:              {unit: "mg", dailyValue: 18},
	Potassium:         {unit: "mg", dailyValue: 4700},
}

// LabelOrder is the fixed top-to-bottom order of nutrient rows on the label.
var LabelOrder = []Nutrient{
	TotalFat, SaturatedFat, TransFat, Cholesterol, Sodium,
	TotalCarbohydrate, DietaryFiber, TotalSugars, AddedSugars, Protein,
	VitaminD, Calcium, Iron, Potassium,
}

// AllNutrients is Energy followed by LabelOrder.
var AllNutrients = append([]Nutrient{Energy}, LabelOrder...)

// Unit returns the display unit ("g", "mg", "mcg"; empty for Energy).
func (n Nutrient) Unit() string { return schema[n].unit }

// Indent returns the nesting level on the label (0, 1 or 2).
func (n Nutrient) Indent() int { return schema[n].indent }

// Required reports whether a malformed cell for n drops the whole row.
func (n Nutrient) Required() bool { return schema[n].required }

// DailyValue returns the FDA reference amount in n's unit.
func (n Nutrient) DailyValue() (float64, bool) {
	dv := schema[n].dailyValue
	return dv, dv > 0
}

// Columns returns the header names accepted for n.
func (n Nutrient) Columns() []string {
	return append([]string{string(n)}, schema[n].aliases...)
}

// RequiredColumns lists every column a sheet must have, in sheet order.
func RequiredColumns() []string {
	cols := []string{ColumnProduct, ColumnServingSize}
	for _, n := range AllNutrients {
		if n.Required() {
			cols = append(cols, string(n))
		}
	}
	return cols
}
