package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/nutrilabel/pkg/batch"
	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/nutrition"
	"github.com/matzehuels/nutrilabel/pkg/render"
	"github.com/matzehuels/nutrilabel/pkg/render/sink"
)

// handleLabel serves one label: GET /label/{format}?product=NAME.
// PDF and PNG are sent as downloads, SVG and JSON inline.
func (s *Server) handleLabel(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	if !render.ValidFormats[format] {
		writeError(w, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format))
		return
	}
	rec, err := s.lookup(r.Context(), r.URL.Query().Get("product"))
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := s.renderer.RenderFormat(r.Context(), rec, s.settings.Style(), format)
	if err != nil {
		writeError(w, err)
		return
	}
	attachment := format == render.FormatPDF || format == render.FormatPNG
	writeFile(w, data, render.ContentTypes[format], errors.SafeFilename(rec.Name)+"."+format, attachment)
}

// handlePreview serves a downscaled PNG: GET /preview.png?product=NAME&width=N.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	width := defaultPreviewWidth
	if raw := r.URL.Query().Get("width"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "width must be a positive integer"))
			return
		}
		width = min(n, maxPreviewWidth)
	}
	rec, err := s.lookup(r.Context(), r.URL.Query().Get("product"))
	if err != nil {
		writeError(w, err)
		return
	}

	png, err := s.renderer.RenderFormat(r.Context(), rec, s.settings.Style(), render.FormatPNG)
	if err != nil {
		writeError(w, err)
		return
	}
	thumb, err := sink.Thumbnail(png, width)
	if err != nil {
		writeError(w, err)
		return
	}
	writeFile(w, thumb, render.ContentTypes[render.FormatPNG], errors.SafeFilename(rec.Name)+"_preview.png", false)
}

// handleBatch renders the selected products into one ZIP archive.
// Form: product (repeated), format (pdf|png|both).
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderProblem(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid form"))
		return
	}
	format, err := batch.ParseFormat(r.PostFormValue("format"))
	if err != nil {
		s.renderProblem(w, r, err)
		return
	}
	names := r.PostForm["product"]
	if len(names) == 0 {
		s.renderProblem(w, r, errors.New(errors.ErrCodeInvalidInput, "select at least one product"))
		return
	}

	records := make([]*nutrition.Record, 0, len(names))
	for _, name := range names {
		rec, err := s.lookup(r.Context(), name)
		if err != nil {
			s.renderProblem(w, r, err)
			return
		}
		records = append(records, rec)
	}

	arch, err := batch.Build(r.Context(), s.renderer, records, batch.Options{
		Format: format,
		Style:  s.settings.Style(),
		Now:    s.now,
		Logger: s.logger,
	})
	if err != nil {
		s.renderProblem(w, r, err)
		return
	}
	w.Header().Set("X-Labels-Rendered", strconv.Itoa(len(records)-len(arch.Failed)))
	w.Header().Set("X-Labels-Skipped", strconv.Itoa(len(arch.Failed)))
	writeFile(w, arch.Data, "application/zip", arch.Name, true)
}

// handleRefresh forces a fetch. On failure the page shows the error next to
// whatever data is still held.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	product := r.PostFormValue("product")
	entry, err := s.loader.Refresh(r.Context())
	if err != nil {
		d := s.page(r, entry, err)
		s.render(w, statusFor(err), d)
		return
	}
	redirect(w, r, "refreshed", product)
}
