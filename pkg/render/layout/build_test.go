package layout

import (
	"encoding/json"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/nutrilabel/pkg/fonts"
	"github.com/matzehuels/nutrilabel/pkg/nutrition"
	"github.com/matzehuels/nutrilabel/pkg/render/style"
)

func granola() *nutrition.Record {
	return nutrition.NewRecord("Granola Bar", "40g", map[nutrition.Nutrient]float64{
		nutrition.Energy: 180, nutrition.TotalFat: 7, nutrition.SaturatedFat: 1,
		nutrition.TransFat: 0, nutrition.Cholesterol: 0, nutrition.Sodium: 95,
		nutrition.TotalCarbohydrate: 27, nutrition.DietaryFiber: 3, nutrition.TotalSugars: 10,
		nutrition.AddedSugars: 6, nutrition.Protein: 3,
	}, nutrition.DefaultFootnote, nutrition.DefaultFootnote2)
}

func findText(c *Canvas, text string) (Op, bool) {
	for _, op := range c.Ops {
		if op.Kind == KindText && op.Text == text {
			return op, true
		}
	}
	return Op{}, false
}

func TestBuildDeterministic(t *testing.T) {
	a, _ := json.Marshal(Build(granola(), style.Default(), nil))
	b, _ := json.Marshal(Build(granola(), style.Default(), nil))
	if string(a) != string(b) {
		t.Error("identical inputs should produce identical canvases")
	}
}

func TestBuildCalorieLine(t *testing.T) {
	c := Build(granola(), style.Default(), nil)

	label, ok := findText(c, CaloriesLabel)
	if !ok {
		t.Fatal("no Calories label")
	}
	value, ok := findText(c, "180")
	if !ok {
		t.Fatal("calorie line should read 180")
	}
	if value.Y != label.Y {
		t.Errorf("calorie value baseline %v differs from label %v", value.Y, label.Y)
	}
	if value.Size != style.Default().CalorieSize || value.Role != fonts.Bold {
		t.Errorf("calorie value op = %+v", value)
	}
	for _, op := range c.Ops {
		if op.Kind == KindText && op.Role != fonts.Title && op.Size > value.Size {
			t.Errorf("%q (%v pt) is larger than the calorie amount", op.Text, op.Size)
		}
	}
}

func TestBuildNutrientOrder(t *testing.T) {
	c := Build(granola(), style.Default(), nil)

	var ys []float64
	for _, n := range nutrition.LabelOrder {
		op, ok := findText(c, string(n))
		if !ok {
			t.Fatalf("row %s missing", n)
		}
		ys = append(ys, op.Y)
	}
	if !slices.IsSorted(ys) {
		t.Errorf("rows are not in label order: %v", ys)
	}
}

func TestBuildMissingOptionalRendersZero(t *testing.T) {
	c := Build(granola(), style.Default(), nil)

	name, ok := findText(c, "Potassium")
	if !ok {
		t.Fatal("Potassium row must be drawn even when absent")
	}
	var amount *Op
	for i, op := range c.Ops {
		if op.Kind == KindText && op.Y == name.Y && op.Text == "0mg" {
			amount = &c.Ops[i]
		}
	}
	if amount == nil {
		t.Error(`absent Potassium should read "0mg"`)
	}
}

func TestBuildIndentation(t *testing.T) {
	st := style.Default()
	c := Build(granola(), st, nil)

	top, _ := findText(c, "Total Fat")
	sat, _ := findText(c, "Saturated Fat")
	added, _ := findText(c, "Added Sugars")

	if sat.X-top.X != st.IndentStep {
		t.Errorf("Saturated Fat indent = %v, want %v", sat.X-top.X, st.IndentStep)
	}
	if added.X-top.X != 2*st.IndentStep {
		t.Errorf("Added Sugars indent = %v, want %v", added.X-top.X, 2*st.IndentStep)
	}
	if top.Role != fonts.Bold || sat.Role != fonts.Regular {
		t.Errorf("roles: top %s, indented %s", top.Role, sat.Role)
	}
}

func TestBuildRightAlignment(t *testing.T) {
	st := style.Default()
	set := fonts.Default()
	c := Build(granola(), st, set)

	dv, ok := findText(c, "9%")
	if !ok {
		t.Fatal("Total Fat %DV missing")
	}
	end := dv.X + set.Bold.Width(dv.Text, dv.Size)
	if diff := end - (st.Width - st.Margin - st.Padding); diff > 1e-9 || diff < -1e-9 {
		t.Errorf("%%DV ends at %v, want %v", end, st.Width-st.Margin-st.Padding)
	}

	amount, _ := findText(c, "7g")
	end = amount.X + set.Regular.Width(amount.Text, amount.Size)
	want := st.Width - st.Margin - st.Padding - st.DVColumnWidth
	if diff := end - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("amount ends at %v, want %v", end, want)
	}
}

func TestBuildTitleLetterSpacing(t *testing.T) {
	st := style.Default()
	set := fonts.Default()
	c := Build(granola(), st, set)

	var glyphs []Op
	for _, op := range c.Ops {
		if op.Role == fonts.Title {
			glyphs = append(glyphs, op)
		}
	}
	if len(glyphs) != len([]rune(Title)) {
		t.Fatalf("title glyphs = %d, want %d", len(glyphs), len([]rune(Title)))
	}
	gap := glyphs[1].X - glyphs[0].X - set.Title.Width(glyphs[0].Text, st.TitleSize)
	if gap < st.TitleSpacing-1e-9 || gap > st.TitleSpacing+1e-9 {
		t.Errorf("letter spacing = %v, want %v", gap, st.TitleSpacing)
	}
}

func TestBuildWidthScaling(t *testing.T) {
	narrow := style.Default()
	wide := style.Default()
	wide.Width = 400

	a := Build(granola(), narrow, nil)
	b := Build(granola(), wide, nil)

	if b.Width != 400 || a.Width != narrow.Width {
		t.Errorf("canvas widths = %v, %v", a.Width, b.Width)
	}
	if !reflect.DeepEqual(a.Texts(), b.Texts()) {
		t.Error("changing only the width must not change text content or order")
	}
}

func TestBuildThickRules(t *testing.T) {
	st := style.Default()
	c := Build(granola(), st, nil)

	protein, _ := findText(c, "Protein")
	potassium, _ := findText(c, "Potassium")
	fat, _ := findText(c, "Total Fat")

	ruleWidth := func(y float64) float64 {
		for _, op := range c.Ops {
			if op.Kind == KindLine && op.Y == y+st.ThinOffset {
				return op.LineWidth
			}
		}
		return -1
	}
	if w := ruleWidth(protein.Y); w != st.LineThick {
		t.Errorf("rule after Protein = %v, want thick", w)
	}
	if w := ruleWidth(potassium.Y); w != st.LineThick {
		t.Errorf("rule after last row = %v, want thick", w)
	}
	if w := ruleWidth(fat.Y); w != st.LineThin {
		t.Errorf("rule after Total Fat = %v, want thin", w)
	}
}

func TestBuildFootnotes(t *testing.T) {
	st := style.Default()
	c := Build(granola(), st, nil)

	var lines []Op
	for _, op := range c.Ops {
		if op.Kind == KindText && op.Size == st.FootnoteSize && op.Y > st.Height/2 {
			lines = append(lines, op)
		}
	}
	if len(lines) < 3 {
		t.Fatalf("footnote lines = %d, want wrapped footnotes", len(lines))
	}
	joined := make([]string, len(lines))
	for i, l := range lines {
		joined[i] = l.Text
		if w := fonts.Default().Regular.Width(l.Text, st.FootnoteSize); w > st.Width-2*st.Margin {
			t.Errorf("line %q is %v wide, exceeds %v", l.Text, w, st.Width-2*st.Margin)
		}
		if l.Y >= st.Height {
			t.Errorf("line %q at %v is below the label", l.Text, l.Y)
		}
	}
	text := strings.Join(joined, " ")
	if !strings.HasPrefix(text, nutrition.DefaultFootnote) {
		t.Errorf("footnotes = %q", text)
	}

	// The first footnote's last line sits FootnoteStart above the bottom.
	var firstEnd Op
	for _, l := range lines {
		if strings.HasSuffix(l.Text, "advice.") {
			firstEnd = l
		}
	}
	if firstEnd.Y != st.Height-st.FootnoteStart {
		t.Errorf("first footnote ends at %v, want %v", firstEnd.Y, st.Height-st.FootnoteStart)
	}
}

func TestBuildFitsDefaultHeight(t *testing.T) {
	st := style.Default()
	c := Build(granola(), st, nil)
	potassium, _ := findText(c, "Potassium")

	firstFootnote := st.Height
	for _, op := range c.Ops {
		if op.Kind == KindText && op.Size == st.FootnoteSize && op.Y > potassium.Y && op.Y < firstFootnote {
			firstFootnote = op.Y
		}
	}
	if potassium.Y+st.ThinOffset >= firstFootnote-st.FootnoteSize {
		t.Errorf("nutrient rows (last at %v) overlap the footnotes (first at %v)", potassium.Y, firstFootnote)
	}
}
