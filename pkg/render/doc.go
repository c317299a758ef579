// Package render turns a nutrition record into label files.
//
// # Overview
//
// Rendering runs in two stages. [layout.Build] resolves the record and a
// [style.Style] to a [layout.Canvas] of absolute drawing operations. The
// [sink] package then encodes that one canvas:
//
//   - PDF via go-pdf/fpdf, with the label fonts embedded
//   - PNG via fogleman/gg at a fixed DPI
//   - SVG for in-browser previews
//   - JSON for debugging and external tooling
//
// Because every encoding draws the same canvas with the same TTF bytes, the
// PDF and PNG of a record always agree on geometry.
//
// # Usage
//
//	r := render.NewRenderer(fonts.Load(paths, logger), logger)
//	art, err := r.Render(ctx, rec, style.Default())
//	if errors.Is(err, errors.ErrCodeRender) {
//	    // show inline, skip in batches
//	}
//	os.WriteFile("label.pdf", art.PDF, 0o644)
//
// Rendering is pure: the same record and style produce the same canvas and
// byte-identical PNG output. PDF output differs only in its creation date
// unless [sink.WithCreationDate] is passed through [WithPDFOptions].
package render
