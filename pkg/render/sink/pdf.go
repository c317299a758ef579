package sink

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/fonts"
	"github.com/matzehuels/nutrilabel/pkg/render/layout"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	created time.Time
	title   string
}

// WithCreationDate pins the document's creation and modification dates.
func WithCreationDate(t time.Time) PDFOption {
	return func(r *pdfRenderer) { r.created = t }
}

// WithTitle sets the document title metadata.
func WithTitle(title string) PDFOption {
	return func(r *pdfRenderer) { r.title = title }
}

// RenderPDF renders the canvas as a single-page PDF sized to the canvas.
func RenderPDF(c *layout.Canvas, set *fonts.Set, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if set == nil {
		set = fonts.Default()
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: c.Width, Ht: c.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	if !r.created.IsZero() {
		pdf.SetCreationDate(r.created)
		pdf.SetModificationDate(r.created)
	}
	if r.title != "" {
		pdf.SetTitle(r.title, true)
	}
	pdf.SetCreator("nutrilabel", true)

	for _, role := range fonts.Roles {
		pdf.AddUTF8FontFromBytes(string(role), "", set.Face(role).Data)
	}
	pdf.AddPage()

	paper := parseColor(c.Paper, white)
	pr, pg, pb := paper.RGB255()
	pdf.SetFillColor(int(pr), int(pg), int(pb))
	pdf.Rect(0, 0, c.Width, c.Height, "F")

	ink := parseColor(c.Ink, black)
	ir, ig, ib := ink.RGB255()
	pdf.SetDrawColor(int(ir), int(ig), int(ib))
	pdf.SetTextColor(int(ir), int(ig), int(ib))

	for _, op := range c.Ops {
		switch op.Kind {
		case layout.KindRect:
			pdf.SetLineWidth(op.LineWidth)
			pdf.Rect(op.X, op.Y, op.W, op.H, "D")
		case layout.KindLine:
			pdf.SetLineWidth(op.LineWidth)
			pdf.Line(op.X, op.Y, op.X2, op.Y2)
		case layout.KindText:
			pdf.SetFont(string(op.Role), "", op.Size)
			pdf.Text(op.X, op.Y, op.Text)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "build PDF")
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "write PDF")
	}
	return buf.Bytes(), nil
}
