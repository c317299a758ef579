// Package pkg provides the core libraries for nutrilabel, which renders
// FDA-style Nutrition Facts labels from a shared spreadsheet.
//
// # Overview
//
// The data flow through nutrilabel:
//
//	Spreadsheet (CSV or XLSX export)
//	         ↓
//	    [sheets] package (download + decode into a Table)
//	         ↓
//	    [nutrition] package (rows → validated Records → Catalog)
//	         ↓
//	    [catalog] package (TTL cache, single-flight fetch, stale fallback)
//	         ↓
//	    [render] package (layout canvas → PDF / PNG / SVG / JSON)
//	         ↓
//	    [batch] package (ZIP of many labels)
//
// # Quick Start
//
// Load the catalog and render one label:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/nutrilabel/pkg/catalog"
//	    "github.com/matzehuels/nutrilabel/pkg/fonts"
//	    "github.com/matzehuels/nutrilabel/pkg/render"
//	    "github.com/matzehuels/nutrilabel/pkg/render/style"
//	    "github.com/matzehuels/nutrilabel/pkg/sheets"
//	)
//
//	loader := catalog.NewLoader(catalog.Options{
//	    URL:     "https://docs.google.com/spreadsheets/d/<id>/edit",
//	    Fetcher: sheets.NewClient(sheets.Options{}),
//	})
//	entry, _ := loader.Load(ctx)
//
//	rec, _ := entry.Catalog.Get("Granola Bar")
//	r := render.NewRenderer(fonts.Load(fonts.Paths{}, nil), nil)
//	pdf, _ := r.RenderFormat(ctx, rec, style.Default(), render.FormatPDF)
//
// # Main Packages
//
// [sheets] - Spreadsheet download (Google Sheets sharing URLs are rewritten
// to their export endpoint) and CSV/XLSX decoding.
//
// [nutrition] - Label data model: nutrient schema, daily value reference,
// row parsing and the product catalog.
//
// [catalog] - The loader behind every request. Caches one entry per sheet
// for a configurable duration and falls back to the last good data.
//
// [render] - Two-stage pipeline. [render/layout] draws a label onto a
// device-independent canvas and [render/sink] writes that canvas as PDF,
// PNG, SVG or JSON. [render/style] holds the tunable geometry.
//
// [batch] - Concurrent rendering of many records into one ZIP archive.
//
// [admin] - Password gate, sessions and the runtime settings the admin
// panel edits.
//
// ## Infrastructure
//
// [cache] - Snapshot stores (null, file, Redis) for last-known-good sheets.
//
// [httputil] - HTTP client with retries and response size limits.
//
// [fonts] - TrueType font loading with embedded fallbacks.
//
// [config] - TOML configuration file.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hook registry for fetch, cache, render and HTTP events.
//
// [sheets]: https://pkg.go.dev/github.com/matzehuels/nutrilabel/pkg/sheets
// [nutrition]: https://pkg.go.dev/github.com/matzehuels/nutrilabel/pkg/nutrition
// [catalog]: https://pkg.go.dev/github.com/matzehuels/nutrilabel/pkg/catalog
// [render]: https://pkg.go.dev/github.com/matzehuels/nutrilabel/pkg/render
// [render/layout]: https://pkg.go.dev/github.com/matzehuels/nutrilabel/pkg/render/layout
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/nutrilabel/pkg/render/sink
// [render/style]: https://pkg.go.dev/github.com/matzehuels/nutrilabel/pkg/render/style
// [batch]: https://pkg.go.dev/github.com/matzehuels/nutrilabel/pkg/batch
// [admin]: https://pkg.go.dev/github.com/matzehuels/nutrilabel/pkg/admin
// [cache]: https://pkg.go.dev/github.com/matzehuels/nutrilabel/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/nutrilabel/pkg/httputil
// [fonts]: https://pkg.go.dev/github.com/matzehuels/nutrilabel/pkg/fonts
// [config]: https://pkg.go.dev/github.com/matzehuels/nutrilabel/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/nutrilabel/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/nutrilabel/pkg/observability
package pkg
