package layout

import (
	"strings"

	"github.com/matzehuels/nutrilabel/pkg/fonts"
	"github.com/matzehuels/nutrilabel/pkg/nutrition"
	"github.com/matzehuels/nutrilabel/pkg/render/style"
)

// Fixed label text.
const (
	Title           = "Nutrition Facts"
	ServingLabel    = "Serving size"
	ServingNote     = "Number of servings may vary based on pack size and intended use."
	CaloriesLabel   = "Calories"
	DailyValueLabel = "% Daily Value *"
)

// Fixed vertical steps of the serving block, in points.
const (
	servingGap     = 20
	servingNoteGap = 12
	servingSepGap  = 6
	caloriesGap    = 20
)

type builder struct {
	c     *Canvas
	st    style.Style
	fonts *fonts.Set
	left  float64
	right float64
}

// Build lays out rec with st. The record and style are assumed valid.
func Build(rec *nutrition.Record, st style.Style, set *fonts.Set) *Canvas {
	if set == nil {
		set = fonts.Default()
	}
	b := &builder{
		c:     &Canvas{Width: st.Width, Height: st.Height, Ink: st.Ink, Paper: st.Paper},
		st:    st,
		fonts: set,
		left:  st.Margin,
		right: st.Width - st.Margin,
	}

	b.c.rect(0, 0, st.Width, st.Height, st.LineThick)
	y := b.header()
	y = b.serving(rec, y)
	y = b.calories(rec, y)
	b.nutrients(rec, y+st.NutrientsGap)
	b.footnotes(rec)
	return b.c
}

func (b *builder) width(role fonts.Role, s string, size float64) float64 {
	return b.fonts.Face(role).Width(s, size)
}

// textRight draws s so that it ends at x.
func (b *builder) textRight(x, y float64, s string, role fonts.Role, size float64) {
	b.c.text(x-b.width(role, s, size), y, s, role, size)
}

// header draws the letter-spaced title and returns the y of the rule below it.
func (b *builder) header() float64 {
	st := b.st
	y := st.Margin + st.TitleSize
	x := b.left
	for _, r := range Title {
		ch := string(r)
		b.c.text(x, y, ch, fonts.Title, st.TitleSize)
		x += b.width(fonts.Title, ch, st.TitleSize) + st.TitleSpacing
	}
	y += st.ThickSpacing
	b.c.line(b.left, y, b.right, st.LineThin)
	return y
}

func (b *builder) serving(rec *nutrition.Record, y float64) float64 {
	st := b.st
	y += servingGap
	b.c.text(b.left+st.Padding, y, ServingLabel, fonts.Bold, st.SubheaderSize)
	b.textRight(b.right-st.Padding, y, rec.ServingSize, fonts.Bold, st.SubheaderSize)

	y += servingNoteGap
	b.c.text(b.left+st.Padding, y, ServingNote, fonts.Regular, st.ServingNoteSize)

	y += servingSepGap
	b.c.line(b.left, y, b.right, st.LineThick)
	return y
}

func (b *builder) calories(rec *nutrition.Record, y float64) float64 {
	st := b.st
	y += caloriesGap
	b.c.text(b.left+st.Padding, y, CaloriesLabel, fonts.Bold, st.SubheaderSize)
	b.textRight(b.right-st.Padding, y, nutrition.FormatAmount(rec.Calories()), fonts.Bold, st.CalorieSize)

	y += st.ThickSpacing
	b.c.line(b.left, y, b.right, st.LineThick)
	return y
}

// nutrients draws the %DV header and one row per nutrient in label order,
// starting with the first row's baseline at y.
func (b *builder) nutrients(rec *nutrition.Record, y float64) {
	st := b.st
	headerY := y - st.NutrientLeading
	b.textRight(b.right-st.Padding, headerY, DailyValueLabel, fonts.Bold, st.NutrientSize)
	b.c.line(b.left, headerY+st.ThinOffset, b.right, st.LineThin)

	amountRight := b.right - st.Padding - st.DVColumnWidth
	last := len(nutrition.LabelOrder) - 1
	for i, n := range nutrition.LabelOrder {
		f := rec.Fact(n)
		role := fonts.Bold
		if n.Indent() > 0 {
			role = fonts.Regular
		}

		b.c.text(b.left+st.Padding+float64(n.Indent())*st.IndentStep, y, string(n), role, st.NutrientSize)
		b.textRight(amountRight, y, f.AmountText(), fonts.Regular, st.NutrientSize)
		b.textRight(b.right-st.Padding, y, f.DailyValueText(), fonts.Bold, st.NutrientSize)

		rule := st.LineThin
		if n == nutrition.Protein || i == last {
			rule = st.LineThick
		}
		b.c.line(b.left, y+st.ThinOffset, b.right, rule)
		y += st.NutrientLeading
	}
}

// footnotes draws the wrapped footnotes. The first footnote's last line sits
// FootnoteStart above the bottom edge; later footnotes follow below it after
// a blank line.
func (b *builder) footnotes(rec *nutrition.Record) {
	st := b.st
	notes := rec.Footnotes()
	if len(notes) == 0 {
		notes = []string{nutrition.DefaultFootnote}
	}
	maxWidth := st.Width - 2*st.Margin

	first := b.wrap(notes[0], maxWidth)
	y := st.Height - st.FootnoteStart - float64(len(first)-1)*st.FootnoteSpacing
	for _, line := range first {
		b.c.text(b.left+st.Padding, y, line, fonts.Regular, st.FootnoteSize)
		y += st.FootnoteSpacing
	}
	for _, note := range notes[1:] {
		y += st.FootnoteSpacing
		for _, line := range b.wrap(note, maxWidth) {
			b.c.text(b.left+st.Padding, y, line, fonts.Regular, st.FootnoteSize)
			y += st.FootnoteSpacing
		}
	}
}

// wrap breaks text into lines no wider than maxWidth. A single word wider
// than maxWidth gets a line of its own.
func (b *builder) wrap(text string, maxWidth float64) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if b.width(fonts.Regular, candidate, b.st.FootnoteSize) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
