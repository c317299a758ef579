package sink

import (
	"encoding/json"

	"github.com/matzehuels/nutrilabel/pkg/render/layout"
)

// RenderJSON exports the canvas: size, colors and every drawing op in order.
func RenderJSON(c *layout.Canvas) ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
