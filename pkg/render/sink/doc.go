// Package sink encodes a laid out [layout.Canvas].
//
// # Formats
//
//   - [RenderPDF]: one page the size of the canvas, fonts embedded (go-pdf/fpdf)
//   - [RenderPNG]: raster at a fixed DPI (fogleman/gg)
//   - [RenderSVG]: browser preview with the fonts inlined as data URLs
//   - [RenderJSON]: the canvas itself, for debugging and external tools
//   - [Thumbnail]: a downscaled PNG for the product picker (imaging)
//
// All sinks draw the same operations with the same TTF bytes, so the label
// geometry is identical across formats. PNG and JSON output is byte-for-byte
// deterministic. PDF output embeds a creation date; pin it with
// [WithCreationDate] when comparing documents.
//
// [layout.Canvas]: github.com/matzehuels/nutrilabel/pkg/render/layout.Canvas
package sink
