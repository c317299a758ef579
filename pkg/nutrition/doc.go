// Package nutrition maps spreadsheet rows onto typed nutrition records.
//
// The schema is fixed: every column the label needs is a [Nutrient] with a
// unit, an indent level, an optional FDA daily value and a required flag.
// [Parse] validates each row once and tags it as either a [*Record] or a
// ROW_PARSE_ERROR; the label renderer never looks columns up by name.
//
// Daily values follow the FDA 2016 Nutrition Facts final rule
// (21 CFR 101.9(c)) for adults and children four years and older.
package nutrition
