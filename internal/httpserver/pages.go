package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/nutrilabel/pkg/buildinfo"
	"github.com/matzehuels/nutrilabel/pkg/catalog"
	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/nutrition"
	"github.com/matzehuels/nutrilabel/pkg/render/style"
)

// notices are the fixed messages a redirect may ask the index to show.
var notices = map[string]string{
	"refreshed": "Data refreshed from the spreadsheet.",
	"login":     "Admin access granted.",
	"logout":    "Logged out. Label design reset to defaults.",
	"style":     "Label design updated.",
	"source":    "Data source updated.",
	"reset":     "All settings reset to defaults.",
}

type skippedRow struct {
	Row     int
	Product string
	Message string
}

type pageData struct {
	Version string

	Products    []string
	Selected    string
	Source      string
	FetchedAt   string
	Stale       bool
	FetchError  string
	Skipped     []skippedRow
	RenderError string

	Notice  string
	Problem string

	Admin        bool
	StyleFields  []fieldView
	Ink          string
	Paper        string
	SheetURL     string
	CacheSeconds int
}

// styleField is one numeric input on the label design form.
type styleField struct {
	Key   string
	Label string
	Min   float64
	Max   float64
	Step  float64
	ptr   func(*style.Style) *float64
}

type fieldView struct {
	Key   string
	Label string
	Min   float64
	Max   float64
	Step  float64
	Value float64
}

var styleFields = []styleField{
	{"width", "Label width", 200, 400, 10, func(s *style.Style) *float64 { return &s.Width }},
	{"height", "Label height", 300, 800, 10, func(s *style.Style) *float64 { return &s.Height }},
	{"title_size", "Header font size", 16, 36, 1, func(s *style.Style) *float64 { return &s.TitleSize }},
	{"subheader_size", "Subheader font size", 8, 20, 1, func(s *style.Style) *float64 { return &s.SubheaderSize }},
	{"calorie_size", "Calorie font size", 12, 32, 1, func(s *style.Style) *float64 { return &s.CalorieSize }},
	{"nutrient_size", "Nutrient font size", 6, 18, 1, func(s *style.Style) *float64 { return &s.NutrientSize }},
	{"footnote_size", "Footnote font size", 4, 10, 1, func(s *style.Style) *float64 { return &s.FootnoteSize }},
	{"title_spacing", "Header letter spacing", 0, 5, 0.5, func(s *style.Style) *float64 { return &s.TitleSpacing }},
	{"line_thick", "Thick line width", 1, 5, 0.5, func(s *style.Style) *float64 { return &s.LineThick }},
	{"line_thin", "Thin line width", 0, 2, 0.25, func(s *style.Style) *float64 { return &s.LineThin }},
	{"nutrient_leading", "Line spacing", 10, 30, 1, func(s *style.Style) *float64 { return &s.NutrientLeading }},
	{"thick_spacing", "Thick line padding", 0, 15, 1, func(s *style.Style) *float64 { return &s.ThickSpacing }},
	{"thin_offset", "Thin line offset", 0, 12, 1, func(s *style.Style) *float64 { return &s.ThinOffset }},
	{"nutrients_gap", "Nutrients start gap", 5, 50, 1, func(s *style.Style) *float64 { return &s.NutrientsGap }},
	{"footnote_start", "Footnote start", 20, 80, 1, func(s *style.Style) *float64 { return &s.FootnoteStart }},
	{"footnote_spacing", "Footnote line spacing", 5, 20, 1, func(s *style.Style) *float64 { return &s.FootnoteSpacing }},
	{"dpi", "PNG quality (DPI)", 150, 600, 50, func(s *style.Style) *float64 { return &s.DPI }},
}

func fieldViews(st style.Style) []fieldView {
	out := make([]fieldView, len(styleFields))
	for i, f := range styleFields {
		out[i] = fieldView{Key: f.Key, Label: f.Label, Min: f.Min, Max: f.Max, Step: f.Step, Value: *f.ptr(&st)}
	}
	return out
}

// parseStyle overlays the submitted form values on base. Missing fields keep
// their current value and every submitted one must lie within its slider range.
func parseStyle(r *http.Request, base style.Style) (style.Style, error) {
	st := base
	var bad []string
	for _, f := range styleFields {
		raw := strings.TrimSpace(r.PostFormValue(f.Key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			bad = append(bad, fmt.Sprintf("%s is not a number", f.Label))
			continue
		}
		if !(v >= f.Min && v <= f.Max) {
			bad = append(bad, fmt.Sprintf("%s must be between %g and %g", f.Label, f.Min, f.Max))
			continue
		}
		*f.ptr(&st) = v
	}
	if ink := strings.TrimSpace(r.PostFormValue("ink")); ink != "" {
		st.Ink = ink
	}
	if paper := strings.TrimSpace(r.PostFormValue("paper")); paper != "" {
		st.Paper = paper
	}
	if len(bad) > 0 {
		return base, errors.New(errors.ErrCodeInvalidStyle, "%s", strings.Join(bad, "; "))
	}
	return st, nil
}

func (s *Server) isAdmin(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	return err == nil && s.gate.Check(c.Value)
}

// page builds the index data for the current catalog. A fetch error is
// shown alongside whatever entry the loader still has.
func (s *Server) page(r *http.Request, entry *catalog.Entry, fetchErr error) pageData {
	snap := s.settings.Get()
	d := pageData{
		Version:      buildinfo.Version,
		Selected:     strings.TrimSpace(r.URL.Query().Get("product")),
		Notice:       notices[r.URL.Query().Get("notice")],
		Admin:        s.isAdmin(r),
		StyleFields:  fieldViews(snap.Style),
		Ink:          snap.Style.Ink,
		Paper:        snap.Style.Paper,
		SheetURL:     snap.SheetURL,
		CacheSeconds: int(snap.CacheTTL / time.Second),
	}
	if fetchErr != nil {
		d.FetchError = errors.UserMessage(fetchErr)
	}
	if entry == nil {
		return d
	}

	d.Products = entry.Catalog.Names()
	d.Source = entry.Source
	d.FetchedAt = entry.FetchedAt.Format("2006-01-02 15:04:05")
	d.Stale = entry.Stale
	for _, sk := range entry.Skipped {
		d.Skipped = append(d.Skipped, skippedRow{Row: sk.Row, Product: sk.Product, Message: errors.UserMessage(sk.Err)})
	}

	if _, ok := entry.Catalog.Get(d.Selected); !ok && len(d.Products) > 0 {
		d.Selected = d.Products[0]
	}
	if rec, ok := entry.Catalog.Get(d.Selected); ok {
		if _, err := s.renderer.Layout(rec, snap.Style); err != nil {
			d.RenderError = errors.UserMessage(err)
		}
	}
	return d
}

func (s *Server) render(w http.ResponseWriter, status int, d pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.ExecuteTemplate(w, "index.gohtml", d); err != nil {
		s.logger.Error("template", "err", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	entry, err := s.loader.Load(r.Context())
	s.render(w, http.StatusOK, s.page(r, entry, err))
}

// renderProblem re-renders the index with an inline error.
func (s *Server) renderProblem(w http.ResponseWriter, r *http.Request, err error) {
	entry, fetchErr := s.loader.Load(r.Context())
	d := s.page(r, entry, fetchErr)
	d.Problem = errors.UserMessage(err)
	s.render(w, statusFor(err), d)
}

// lookup finds a product in the current catalog.
func (s *Server) lookup(ctx context.Context, name string) (*nutrition.Record, error) {
	if err := errors.ValidateProductName(name); err != nil {
		return nil, err
	}
	entry, err := s.loader.Load(ctx)
	if entry == nil {
		if err == nil {
			err = errors.New(errors.ErrCodeFetch, "no data loaded")
		}
		return nil, err
	}
	rec, ok := entry.Catalog.Get(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeProductNotFound, "product %q not found", name)
	}
	return rec, nil
}

func redirect(w http.ResponseWriter, r *http.Request, notice, product string) {
	target := "/?notice=" + notice
	if product != "" {
		target += "&product=" + url.QueryEscape(product)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
