// Package fonts resolves the TrueType faces used to draw nutrition labels.
//
// Every role always resolves to a usable face: a configured file, then a
// system font with the same file name (via go-findfont), then the Go fonts
// embedded in golang.org/x/image. The PDF and PNG sinks both draw from the
// same TTF bytes, and layout measures text with the same metrics, so both
// encodings share one geometry.
package fonts

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/flopp/go-findfont"
	"github.com/go-pdf/fpdf"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/nutrilabel/pkg/errors"
)

// DefaultTitlePath is the bundled heavy face used for the "Nutrition Facts" title.
const DefaultTitlePath = "fonts/Helvetica-Black.ttf"

// Role identifies the text role a face is used for.
type Role string

const (
	Title   Role = "title"
	Bold    Role = "bold"
	Regular Role = "regular"
)

// Roles lists every role in registration order.
var Roles = []Role{Title, Bold, Regular}

// Face is a parsed TrueType font plus the raw bytes it was parsed from.
type Face struct {
	Role     Role
	Source   string // file path, or "embedded:<name>"
	Data     []byte
	Font     *truetype.Font
	Fallback bool // a configured font could not be used
}

// Width returns the advance width of text at size points.
// Kerning is ignored.
func (f *Face) Width(text string, size float64) float64 {
	scale := fixed.Int26_6(size * 64)
	var w fixed.Int26_6
	for _, r := range text {
		w += f.Font.HMetric(scale, f.Font.Index(r)).AdvanceWidth
	}
	return float64(w) / 64
}

// Paths configures where faces are loaded from. Empty paths use the
// embedded defaults directly.
type Paths struct {
	Title   string `toml:"title"`
	Bold    string `toml:"bold"`
	Regular string `toml:"regular"`
}

// Set holds one face per role.
type Set struct {
	Title   *Face
	Bold    *Face
	Regular *Face
}

// Face returns the face for r. Unknown roles get the regular face.
func (s *Set) Face(r Role) *Face {
	switch r {
	case Title:
		return s.Title
	case Bold:
		return s.Bold
	default:
		return s.Regular
	}
}

// Fallbacks returns the roles whose configured font was replaced.
func (s *Set) Fallbacks() []Role {
	var out []Role
	for _, r := range Roles {
		if s.Face(r).Fallback {
			out = append(out, r)
		}
	}
	return out
}

// Load resolves all three roles. It never fails: unusable files are logged
// at debug level and replaced by embedded faces.
func Load(paths Paths, logger *log.Logger) *Set {
	if logger == nil {
		logger = log.Default()
	}
	return &Set{
		Title:   resolve(Title, paths.Title, logger),
		Bold:    resolve(Bold, paths.Bold, logger),
		Regular: resolve(Regular, paths.Regular, logger),
	}
}

var (
	defaultSet     *Set
	defaultSetOnce sync.Once
)

// Default returns the embedded face set. The result is shared.
func Default() *Set {
	defaultSetOnce.Do(func() {
		defaultSet = &Set{
			Title:   embedded(Title),
			Bold:    embedded(Bold),
			Regular: embedded(Regular),
		}
	})
	return defaultSet
}

func resolve(role Role, path string, logger *log.Logger) *Face {
	if path == "" {
		return embedded(role)
	}

	face, err := fromFile(role, path)
	if err == nil {
		return face
	}
	logger.Debug("font file unavailable", "role", role, "path", path, "err", err)

	if found, ferr := findfont.Find(filepath.Base(path)); ferr == nil {
		if face, err := fromFile(role, found); err == nil {
			logger.Debug("using system font", "role", role, "path", found)
			return face
		}
	}

	fb := embedded(role)
	fb.Fallback = true
	logger.Debug("using embedded font", "role", role, "source", fb.Source)
	return fb
}

func fromFile(role Role, path string) (*Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontLoad, err, "read %s", path)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontLoad, err, "parse %s", path)
	}
	if err := checkPDF(data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFontLoad, err, "embed %s", path)
	}
	return &Face{Role: role, Source: path, Data: data, Font: f}, nil
}

// checkPDF embeds data into a throwaway document. Some files parse as
// TrueType but cannot be subset by the PDF writer.
var checkPDF = func(data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeFontLoad, "pdf writer: %v", r)
		}
	}()
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.AddUTF8FontFromBytes("check", "", data)
	pdf.AddPage()
	pdf.SetFont("check", "", 10)
	pdf.Cell(0, 10, "Nutrition Facts 0123456789%")
	return pdf.Output(io.Discard)
}

// embedded returns a fresh Face over the Go fonts. Parsing the embedded
// bytes cannot fail.
func embedded(role Role) *Face {
	data, name := gobold.TTF, "embedded:gobold"
	if role == Regular {
		data, name = goregular.TTF, "embedded:goregular"
	}
	f, err := truetype.Parse(data)
	if err != nil {
		panic("fonts: embedded font is corrupt: " + err.Error())
	}
	return &Face{Role: role, Source: name, Data: data, Font: f}
}
