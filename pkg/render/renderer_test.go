package render

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/fonts"
	"github.com/matzehuels/nutrilabel/pkg/nutrition"
	"github.com/matzehuels/nutrilabel/pkg/observability"
	"github.com/matzehuels/nutrilabel/pkg/render/sink"
	"github.com/matzehuels/nutrilabel/pkg/render/style"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func granola() *nutrition.Record {
	return nutrition.NewRecord("Granola Bar", "40g", map[nutrition.Nutrient]float64{
		nutrition.Energy: 180, nutrition.TotalFat: 7, nutrition.SaturatedFat: 1,
		nutrition.TransFat: 0, nutrition.Cholesterol: 0, nutrition.Sodium: 95,
		nutrition.TotalCarbohydrate: 27, nutrition.DietaryFiber: 3, nutrition.TotalSugars: 10,
		nutrition.AddedSugars: 6, nutrition.Protein: 3,
	})
}

func pinned() Option {
	return WithPDFOptions(sink.WithCreationDate(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestRender(t *testing.T) {
	r := NewRenderer(nil, quietLogger(), pinned())
	st := style.Default()
	st.DPI = 72

	art, err := r.Render(context.Background(), granola(), st)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(art.PDF, []byte("%PDF-")) {
		t.Error("PDF output missing header")
	}
	if !bytes.HasPrefix(art.PNG, []byte("\x89PNG")) {
		t.Error("PNG output missing signature")
	}
	if art.Canvas == nil || art.Canvas.Width != st.Width {
		t.Errorf("canvas = %+v", art.Canvas)
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := NewRenderer(nil, quietLogger(), pinned())
	st := style.Default()
	st.DPI = 72

	a, err := r.Render(context.Background(), granola(), st)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Render(context.Background(), granola(), st)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.PDF, b.PDF) {
		t.Error("PDF bytes differ between identical renders")
	}
	if !bytes.Equal(a.PNG, b.PNG) {
		t.Error("PNG bytes differ between identical renders")
	}
	ca, _ := json.Marshal(a.Canvas)
	cb, _ := json.Marshal(b.Canvas)
	if !bytes.Equal(ca, cb) {
		t.Error("canvases differ between identical renders")
	}
}

func TestRenderErrors(t *testing.T) {
	r := NewRenderer(nil, quietLogger())

	bad := style.Default()
	bad.Width = 0

	tests := []struct {
		name string
		rec  *nutrition.Record
		st   style.Style
		code errors.Code
	}{
		{"nil record", nil, style.Default(), errors.ErrCodeRender},
		{"missing serving size", nutrition.NewRecord("Bar", "", map[nutrition.Nutrient]float64{nutrition.Energy: 1}), style.Default(), errors.ErrCodeRender},
		{"missing required nutrient", nutrition.NewRecord("Bar", "1 bar", map[nutrition.Nutrient]float64{nutrition.Energy: 1}), style.Default(), errors.ErrCodeRender},
		{"invalid style", granola(), bad, errors.ErrCodeInvalidStyle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Render(context.Background(), tt.rec, tt.st)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRenderFormat(t *testing.T) {
	r := NewRenderer(nil, quietLogger())
	st := style.Default()
	st.DPI = 72

	tests := []struct {
		format string
		prefix string
	}{
		{"pdf", "%PDF-"},
		{"PNG", "\x89PNG"},
		{"svg", "<svg"},
		{" json ", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			data, err := r.RenderFormat(context.Background(), granola(), st, tt.format)
			if err != nil {
				t.Fatalf("RenderFormat: %v", err)
			}
			if !strings.HasPrefix(string(data), tt.prefix) {
				t.Errorf("output starts with %.8q, want %q", data, tt.prefix)
			}
		})
	}

	if _, err := r.RenderFormat(context.Background(), granola(), st, "gif"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("gif: err = %v, want INVALID_FORMAT", err)
	}
}

func TestRenderWithFallbackFonts(t *testing.T) {
	set := fonts.Load(fonts.Paths{Title: filepath.Join(t.TempDir(), "missing-title-font.ttf")}, quietLogger())
	if !set.Title.Fallback {
		t.Fatal("missing title font should fall back")
	}

	r := NewRenderer(set, quietLogger())
	st := style.Default()
	st.DPI = 72
	if _, err := r.Render(context.Background(), granola(), st); err != nil {
		t.Fatalf("render with fallback fonts: %v", err)
	}
}

type recordingHooks struct {
	observability.NoopRenderHooks
	mu       sync.Mutex
	started  []string
	failures int
}

func (h *recordingHooks) OnRenderStart(_ context.Context, product string, _ []string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = append(h.started, product)
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, _ string, _ []string, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.failures++
	}
}

func TestRenderHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetRenderHooks(hooks)
	t.Cleanup(observability.Reset)

	r := NewRenderer(nil, quietLogger())
	st := style.Default()
	st.DPI = 72
	_, _ = r.Render(context.Background(), granola(), st)
	_, _ = r.RenderFormat(context.Background(), nutrition.NewRecord("Empty", "", nil), st, "svg")

	if len(hooks.started) != 2 || hooks.started[0] != "Granola Bar" {
		t.Errorf("started = %v", hooks.started)
	}
	if hooks.failures != 1 {
		t.Errorf("failures = %d, want 1", hooks.failures)
	}
}
