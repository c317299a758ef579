package sink

import (
	"github.com/lucasb-eyer/go-colorful"
)

// parseColor returns the color for hex, or def when hex does not parse.
func parseColor(hex string, def colorful.Color) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return def
	}
	return c
}

var (
	black = colorful.Color{R: 0, G: 0, B: 0}
	white = colorful.Color{R: 1, G: 1, B: 1}
)
