package sink

import (
	"bytes"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/fonts"
	"github.com/matzehuels/nutrilabel/pkg/render/layout"
	"github.com/matzehuels/nutrilabel/pkg/render/style"
)

// DefaultDPI is the PNG resolution used when none is given.
const DefaultDPI = 300

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	dpi float64
}

// WithDPI sets the raster resolution. The image is width×dpi/72 pixels wide.
func WithDPI(dpi float64) PNGOption {
	return func(r *pngRenderer) {
		if dpi > 0 {
			r.dpi = dpi
		}
	}
}

// RenderPNG rasterizes the canvas.
func RenderPNG(c *layout.Canvas, set *fonts.Set, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{dpi: DefaultDPI}
	for _, opt := range opts {
		opt(&r)
	}
	if set == nil {
		set = fonts.Default()
	}

	scale := r.dpi / 72
	fw, fh := math.Round(c.Width*scale), math.Round(c.Height*scale)
	if !(fw*fh <= style.MaxPixels) {
		return nil, errors.New(errors.ErrCodeRender, "canvas %vx%v is too large at %v dpi", c.Width, c.Height, r.dpi)
	}
	w, h := int(fw), int(fh)
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeRender, "canvas %vx%v is empty at %v dpi", c.Width, c.Height, r.dpi)
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(parseColor(c.Paper, white))
	dc.Clear()
	dc.SetColor(parseColor(c.Ink, black))

	faces := newFaceCache(set, r.dpi)
	defer faces.close()

	for _, op := range c.Ops {
		switch op.Kind {
		case layout.KindRect:
			dc.SetLineWidth(strokeWidth(op.LineWidth, scale))
			dc.DrawRectangle(op.X*scale, op.Y*scale, op.W*scale, op.H*scale)
			dc.Stroke()
		case layout.KindLine:
			dc.SetLineWidth(strokeWidth(op.LineWidth, scale))
			dc.DrawLine(op.X*scale, op.Y*scale, op.X2*scale, op.Y2*scale)
			dc.Stroke()
		case layout.KindText:
			dc.SetFontFace(faces.get(op.Role, op.Size))
			dc.DrawString(op.Text, op.X*scale, op.Y*scale)
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "encode PNG")
	}
	return buf.Bytes(), nil
}

// strokeWidth scales a line width to pixels. Zero-width lines, like PDF
// hairlines, are drawn one pixel wide.
func strokeWidth(pt, scale float64) float64 {
	return max(pt*scale, 1)
}

type faceKey struct {
	role fonts.Role
	size float64
}

type faceCache struct {
	set   *fonts.Set
	dpi   float64
	faces map[faceKey]font.Face
}

func newFaceCache(set *fonts.Set, dpi float64) *faceCache {
	return &faceCache{set: set, dpi: dpi, faces: make(map[faceKey]font.Face)}
}

func (c *faceCache) get(role fonts.Role, size float64) font.Face {
	k := faceKey{role, size}
	if f, ok := c.faces[k]; ok {
		return f
	}
	f := truetype.NewFace(c.set.Face(role).Font, &truetype.Options{
		Size:    size,
		DPI:     c.dpi,
		Hinting: font.HintingNone,
	})
	c.faces[k] = f
	return f
}

func (c *faceCache) close() {
	for _, f := range c.faces {
		f.Close()
	}
}
