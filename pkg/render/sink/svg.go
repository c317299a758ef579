package sink

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/nutrilabel/pkg/fonts"
	"github.com/matzehuels/nutrilabel/pkg/render/layout"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	embedFonts bool
	width      float64 // display width, 0 means the canvas width
}

// WithoutFonts skips the inline @font-face rules. Browsers then fall back
// to generic sans-serif faces and text metrics will differ slightly.
func WithoutFonts() SVGOption { return func(r *svgRenderer) { r.embedFonts = false } }

// WithDisplayWidth sets the width attribute; the viewBox stays in points.
func WithDisplayWidth(w float64) SVGOption { return func(r *svgRenderer) { r.width = w } }

// RenderSVG renders the canvas as a standalone SVG document.
func RenderSVG(c *layout.Canvas, set *fonts.Set, opts ...SVGOption) []byte {
	r := svgRenderer{embedFonts: true}
	for _, opt := range opts {
		opt(&r)
	}
	if set == nil {
		set = fonts.Default()
	}

	w := c.Width
	if r.width > 0 {
		w = r.width
	}
	h := w * c.Height / c.Width
	ink := parseColor(c.Ink, black).Hex()
	paper := parseColor(c.Paper, white).Hex()

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`+"\n",
		c.Width, c.Height, w, h)

	buf.WriteString("  <style>\n")
	for _, role := range fonts.Roles {
		if r.embedFonts {
			fmt.Fprintf(&buf, "    @font-face { font-family: 'nl-%s'; src: url(data:font/ttf;base64,%s) format('truetype'); }\n",
				role, base64.StdEncoding.EncodeToString(set.Face(role).Data))
		}
		fmt.Fprintf(&buf, "    .%s { font-family: 'nl-%s', %s; }\n", role, role, fallbackFamily(role))
	}
	buf.WriteString("  </style>\n")

	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.2f" height="%.2f" fill="%s"/>`+"\n", c.Width, c.Height, paper)
	for _, op := range c.Ops {
		switch op.Kind {
		case layout.KindRect:
			fmt.Fprintf(&buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="%s" stroke-width="%.2f"/>`+"\n",
				op.X, op.Y, op.W, op.H, ink, svgStroke(op.LineWidth))
		case layout.KindLine:
			fmt.Fprintf(&buf, `  <line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"/>`+"\n",
				op.X, op.Y, op.X2, op.Y2, ink, svgStroke(op.LineWidth))
		case layout.KindText:
			fmt.Fprintf(&buf, `  <text class="%s" x="%.2f" y="%.2f" font-size="%.2f" fill="%s" xml:space="preserve">%s</text>`+"\n",
				op.Role, op.X, op.Y, op.Size, ink, escapeXML(op.Text))
		}
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func svgStroke(w float64) float64 {
	if w <= 0 {
		return 0.25
	}
	return w
}

func fallbackFamily(role fonts.Role) string {
	switch role {
	case fonts.Title:
		return `'Helvetica Neue', 'Arial Black', sans-serif; font-weight: 900`
	case fonts.Bold:
		return `Helvetica, Arial, sans-serif; font-weight: 700`
	default:
		return `Helvetica, Arial, sans-serif`
	}
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
