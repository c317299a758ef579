// Package layout places a nutrition record on a fixed-size label canvas.
//
// [Build] resolves every element to absolute coordinates: points, origin at
// the top-left corner, y growing downward, text positioned by its left
// baseline. Alignment, wrapping and letter spacing are done here with the
// same font metrics the sinks draw with, so every sink reproduces the same
// geometry.
package layout

import "github.com/matzehuels/nutrilabel/pkg/fonts"

// Kind is the type of a drawing operation.
type Kind string

const (
	KindRect Kind = "rect"
	KindLine Kind = "line"
	KindText Kind = "text"
)

// Op is one drawing operation.
//
//   - rect: outline at (X, Y) of size W×H
//   - line: from (X, Y) to (X2, Y2)
//   - text: Text drawn with Role at Size, left baseline at (X, Y)
type Op struct {
	Kind      Kind       `json:"kind"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	X2        float64    `json:"x2,omitempty"`
	Y2        float64    `json:"y2,omitempty"`
	W         float64    `json:"w,omitempty"`
	H         float64    `json:"h,omitempty"`
	LineWidth float64    `json:"line_width,omitempty"`
	Text      string     `json:"text,omitempty"`
	Role      fonts.Role `json:"role,omitempty"`
	Size      float64    `json:"size,omitempty"`
}

// Canvas is a fully laid out label.
type Canvas struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Ink    string  `json:"ink"`
	Paper  string  `json:"paper"`
	Ops    []Op    `json:"ops"`
}

// Texts returns the text of every text op in drawing order.
func (c *Canvas) Texts() []string {
	var out []string
	for _, op := range c.Ops {
		if op.Kind == KindText {
			out = append(out, op.Text)
		}
	}
	return out
}

func (c *Canvas) rect(x, y, w, h, lw float64) {
	c.Ops = append(c.Ops, Op{Kind: KindRect, X: x, Y: y, W: w, H: h, LineWidth: lw})
}

func (c *Canvas) line(x1, y, x2, lw float64) {
	c.Ops = append(c.Ops, Op{Kind: KindLine, X: x1, Y: y, X2: x2, Y2: y, LineWidth: lw})
}

func (c *Canvas) text(x, y float64, s string, role fonts.Role, size float64) {
	if s == "" {
		return
	}
	c.Ops = append(c.Ops, Op{Kind: KindText, X: x, Y: y, Text: s, Role: role, Size: size})
}
