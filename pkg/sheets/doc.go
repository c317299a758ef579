// Package sheets fetches a published spreadsheet and decodes it into a
// [Table] of trimmed header names and raw cell strings.
//
// # Sources
//
// Any URL that serves CSV (or XLSX) works. Google Sheets sharing links are
// rewritten to their export endpoint by [ExportURL]:
//
//	https://docs.google.com/spreadsheets/d/<id>/edit#gid=42
//	→ https://docs.google.com/spreadsheets/d/<id>/export?format=csv&gid=42
//
// # Errors
//
// Every failure returned by [Client.Fetch] carries the FETCH_ERROR code. A
// sheet that is not shared publicly answers with a Google sign-in page
// instead of CSV; that HTML body is detected and reported as such rather
// than parsed as a one-column table.
package sheets
