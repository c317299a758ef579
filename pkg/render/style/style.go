// Package style holds the label geometry and typography.
package style

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/nutrilabel/pkg/errors"
)

// Style is the full set of label parameters. All lengths are in points.
type Style struct {
	Width   float64 `toml:"width" json:"width"`
	Height  float64 `toml:"height" json:"height"`
	Margin  float64 `toml:"margin" json:"margin"`
	Padding float64 `toml:"padding" json:"padding"`

	TitleSize       float64 `toml:"title_size" json:"title_size"`
	TitleSpacing    float64 `toml:"title_spacing" json:"title_spacing"`
	SubheaderSize   float64 `toml:"subheader_size" json:"subheader_size"`
	CalorieSize     float64 `toml:"calorie_size" json:"calorie_size"`
	NutrientSize    float64 `toml:"nutrient_size" json:"nutrient_size"`
	ServingNoteSize float64 `toml:"serving_note_size" json:"serving_note_size"`
	FootnoteSize    float64 `toml:"footnote_size" json:"footnote_size"`

	LineThick float64 `toml:"line_thick" json:"line_thick"`
	LineThin  float64 `toml:"line_thin" json:"line_thin"` // 0 draws a hairline

	NutrientLeading float64 `toml:"nutrient_leading" json:"nutrient_leading"`
	ThickSpacing    float64 `toml:"thick_spacing" json:"thick_spacing"`
	ThinOffset      float64 `toml:"thin_offset" json:"thin_offset"`
	NutrientsGap    float64 `toml:"nutrients_gap" json:"nutrients_gap"`
	FootnoteStart   float64 `toml:"footnote_start" json:"footnote_start"` // baseline of the first footnote's last line, from the bottom edge
	FootnoteSpacing float64 `toml:"footnote_spacing" json:"footnote_spacing"`
	IndentStep      float64 `toml:"indent_step" json:"indent_step"`
	DVColumnWidth   float64 `toml:"dv_column_width" json:"dv_column_width"`

	Ink   string  `toml:"ink" json:"ink"`
	Paper string  `toml:"paper" json:"paper"`
	DPI   float64 `toml:"dpi" json:"dpi"`
}

// Default returns the standard label style.
func Default() Style {
	return Style{
		Width:   270,
		Height:  440,
		Margin:  10,
		Padding: 2,

		TitleSize:       27,
		TitleSpacing:    2,
		SubheaderSize:   13,
		CalorieSize:     20,
		NutrientSize:    10,
		ServingNoteSize: 8,
		FootnoteSize:    7,

		LineThick: 3,
		LineThin:  0,

		NutrientLeading: 17,
		ThickSpacing:    8,
		ThinOffset:      5,
		NutrientsGap:    33,
		FootnoteStart:   35,
		FootnoteSpacing: 8,
		IndentStep:      8,
		DVColumnWidth:   40,

		Ink:   "#000000",
		Paper: "#ffffff",
		DPI:   300,
	}
}

// MaxPixels bounds the raster area of a PNG label.
const MaxPixels = 32_000_000

// Validate checks that sizes are positive, spacings are non-negative and
// colors parse. The error carries INVALID_STYLE and names every bad field.
func (s Style) Validate() error {
	var bad []string
	positive := map[string]float64{
		"width": s.Width, "height": s.Height,
		"title_size": s.TitleSize, "subheader_size": s.SubheaderSize,
		"calorie_size": s.CalorieSize, "nutrient_size": s.NutrientSize,
		"serving_note_size": s.ServingNoteSize, "footnote_size": s.FootnoteSize,
		"nutrient_leading": s.NutrientLeading, "footnote_spacing": s.FootnoteSpacing,
		"dpi": s.DPI,
	}
	nonNegative := map[string]float64{
		"margin": s.Margin, "padding": s.Padding, "title_spacing": s.TitleSpacing,
		"line_thick": s.LineThick, "line_thin": s.LineThin,
		"thick_spacing": s.ThickSpacing, "thin_offset": s.ThinOffset,
		"nutrients_gap": s.NutrientsGap, "footnote_start": s.FootnoteStart,
		"indent_step": s.IndentStep, "dv_column_width": s.DVColumnWidth,
	}
	for _, name := range slices.Sorted(maps.Keys(positive)) {
		if isInf(positive[name]) {
			bad = append(bad, fmt.Sprintf("%s must be finite", name))
		} else if !(positive[name] > 0) {
			bad = append(bad, fmt.Sprintf("%s must be positive", name))
		}
	}
	for _, name := range slices.Sorted(maps.Keys(nonNegative)) {
		if isInf(nonNegative[name]) {
			bad = append(bad, fmt.Sprintf("%s must be finite", name))
		} else if !(nonNegative[name] >= 0) {
			bad = append(bad, fmt.Sprintf("%s must not be negative", name))
		}
	}
	if _, err := colorful.Hex(s.Ink); err != nil {
		bad = append(bad, fmt.Sprintf("ink %q is not a hex color", s.Ink))
	}
	if _, err := colorful.Hex(s.Paper); err != nil {
		bad = append(bad, fmt.Sprintf("paper %q is not a hex color", s.Paper))
	}
	if s.Width > 0 && s.Margin*2 >= s.Width {
		bad = append(bad, "margin leaves no room for content")
	}
	if px := s.pixelArea(); px > MaxPixels {
		bad = append(bad, fmt.Sprintf("%.0fx%.0f pt at %.0f dpi exceeds %d pixels", s.Width, s.Height, s.DPI, MaxPixels))
	}
	if len(bad) > 0 {
		return errors.New(errors.ErrCodeInvalidStyle, "%s", strings.Join(bad, "; "))
	}
	return nil
}

func isInf(v float64) bool { return math.IsInf(v, 0) }

// pixelArea is the raster area at the style's DPI. NaN and non-positive
// sizes are reported by the field checks.
func (s Style) pixelArea() float64 {
	scale := s.DPI / 72
	if !(s.Width > 0 && s.Height > 0 && scale > 0) {
		return 0
	}
	return (s.Width * scale) * (s.Height * scale)
}

// PixelSize returns the PNG dimensions at the style's DPI.
func (s Style) PixelSize() (int, int) {
	return PointsToPixels(s.Width, s.DPI), PointsToPixels(s.Height, s.DPI)
}

// PointsToPixels converts a length in points to whole pixels at dpi.
func PointsToPixels(pt, dpi float64) int {
	return int(pt*dpi/72 + 0.5)
}
