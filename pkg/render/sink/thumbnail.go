package sink

import (
	"bytes"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/nutrilabel/pkg/errors"
)

// Thumbnail downscales a PNG to the given width, keeping the aspect ratio.
// Images already narrower than width are re-encoded unchanged.
func Thumbnail(png []byte, width int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(png))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "decode PNG")
	}
	if width > 0 && img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "encode thumbnail")
	}
	return buf.Bytes(), nil
}
