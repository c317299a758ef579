package render

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/fonts"
	"github.com/matzehuels/nutrilabel/pkg/nutrition"
	"github.com/matzehuels/nutrilabel/pkg/observability"
	"github.com/matzehuels/nutrilabel/pkg/render/layout"
	"github.com/matzehuels/nutrilabel/pkg/render/sink"
	"github.com/matzehuels/nutrilabel/pkg/render/style"
)

// Output formats accepted by [Renderer.RenderFormat].
const (
	FormatPDF  = "pdf"
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats lists the formats [Renderer.RenderFormat] accepts.
var ValidFormats = map[string]bool{
	FormatPDF:  true,
	FormatPNG:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// ContentTypes maps formats to their MIME types.
var ContentTypes = map[string]string{
	FormatPDF:  "application/pdf",
	FormatPNG:  "image/png",
	FormatSVG:  "image/svg+xml",
	FormatJSON: "application/json",
}

// Artifacts holds both encodings of one label.
type Artifacts struct {
	PDF    []byte
	PNG    []byte
	Canvas *layout.Canvas
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithPDFOptions passes options to every PDF render.
func WithPDFOptions(opts ...sink.PDFOption) Option {
	return func(r *Renderer) { r.pdfOpts = append(r.pdfOpts, opts...) }
}

// Renderer draws records with a fixed font set. It is safe for concurrent use.
type Renderer struct {
	fonts   *fonts.Set
	logger  *log.Logger
	pdfOpts []sink.PDFOption
}

// NewRenderer returns a renderer. A nil set uses the embedded fonts and a
// nil logger uses the default logger.
func NewRenderer(set *fonts.Set, logger *log.Logger, opts ...Option) *Renderer {
	if set == nil {
		set = fonts.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	r := &Renderer{fonts: set, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fonts returns the renderer's font set.
func (r *Renderer) Fonts() *fonts.Set { return r.fonts }

// Layout validates rec and st and builds the label canvas.
// A record missing a required field fails with RENDER_ERROR and an invalid
// style with INVALID_STYLE.
func (r *Renderer) Layout(rec *nutrition.Record, st style.Style) (*layout.Canvas, error) {
	if rec == nil {
		return nil, errors.New(errors.ErrCodeRender, "no record to render")
	}
	if err := rec.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "cannot render %q", rec.Name)
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	return layout.Build(rec, st, r.fonts), nil
}

// Render draws rec with st as PDF and PNG.
func (r *Renderer) Render(ctx context.Context, rec *nutrition.Record, st style.Style) (*Artifacts, error) {
	formats := []string{FormatPDF, FormatPNG}
	hooks := observability.Render()
	name := recordName(rec)
	hooks.OnRenderStart(ctx, name, formats)
	start := time.Now()

	art, err := r.render(rec, st)
	hooks.OnRenderComplete(ctx, name, formats, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("rendered label", "product", name, "pdf_bytes", len(art.PDF), "png_bytes", len(art.PNG))
	return art, nil
}

func (r *Renderer) render(rec *nutrition.Record, st style.Style) (*Artifacts, error) {
	c, err := r.Layout(rec, st)
	if err != nil {
		return nil, err
	}
	pdf, err := sink.RenderPDF(c, r.fonts, r.pdfOptions(rec)...)
	if err != nil {
		return nil, err
	}
	png, err := sink.RenderPNG(c, r.fonts, sink.WithDPI(st.DPI))
	if err != nil {
		return nil, err
	}
	return &Artifacts{PDF: pdf, PNG: png, Canvas: c}, nil
}

// RenderFormat draws rec with st in a single format.
func (r *Renderer) RenderFormat(ctx context.Context, rec *nutrition.Record, st style.Style, format string) ([]byte, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if !ValidFormats[format] {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want pdf, png, svg or json)", format)
	}

	formats := []string{format}
	hooks := observability.Render()
	name := recordName(rec)
	hooks.OnRenderStart(ctx, name, formats)
	start := time.Now()

	data, err := r.renderFormat(rec, st, format)
	hooks.OnRenderComplete(ctx, name, formats, time.Since(start), err)
	return data, err
}

func (r *Renderer) renderFormat(rec *nutrition.Record, st style.Style, format string) ([]byte, error) {
	c, err := r.Layout(rec, st)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPDF:
		return sink.RenderPDF(c, r.fonts, r.pdfOptions(rec)...)
	case FormatPNG:
		return sink.RenderPNG(c, r.fonts, sink.WithDPI(st.DPI))
	case FormatSVG:
		return sink.RenderSVG(c, r.fonts), nil
	default:
		data, err := sink.RenderJSON(c)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRender, err, "encode canvas")
		}
		return data, nil
	}
}

func (r *Renderer) pdfOptions(rec *nutrition.Record) []sink.PDFOption {
	opts := []sink.PDFOption{sink.WithTitle(rec.Name + " Nutrition Facts")}
	return append(opts, r.pdfOpts...)
}

func recordName(rec *nutrition.Record) string {
	if rec == nil {
		return ""
	}
	return rec.Name
}
