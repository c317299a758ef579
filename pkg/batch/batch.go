// Package batch renders many records and bundles the labels into a ZIP archive.
//
// Records are rendered concurrently (bounded by GOMAXPROCS by default) and
// written to the archive in input order. A record that fails to render is
// left out of the archive and reported in [Archive.Failed]; the rest of the
// batch continues.
package batch

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/nutrition"
	"github.com/matzehuels/nutrilabel/pkg/render"
	"github.com/matzehuels/nutrilabel/pkg/render/style"
)

// Format selects which encodings go into the archive.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
	FormatBoth Format = "both"
)

// ParseFormat parses a batch format name. "mixed" is accepted for both.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf", "":
		return FormatPDF, nil
	case "png":
		return FormatPNG, nil
	case "both", "mixed":
		return FormatBoth, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported batch format %q (want pdf, png or both)", s)
}

// label returns the format's archive name component.
func (f Format) label() string {
	if f == FormatBoth {
		return "mixed"
	}
	return string(f)
}

func (f Format) extensions() []string {
	switch f {
	case FormatPNG:
		return []string{render.FormatPNG}
	case FormatBoth:
		return []string{render.FormatPDF, render.FormatPNG}
	default:
		return []string{render.FormatPDF}
	}
}

// Renderer draws one record in one format.
type Renderer interface {
	RenderFormat(ctx context.Context, rec *nutrition.Record, st style.Style, format string) ([]byte, error)
}

// Options configures a batch run.
type Options struct {
	Format      Format
	Style       style.Style
	Concurrency int              // default GOMAXPROCS
	Now         func() time.Time // archive timestamp, default time.Now
	Logger      *log.Logger
}

// Failure is a record left out of the archive.
type Failure struct {
	Product string
	Err     error
}

// Archive is a finished batch.
type Archive struct {
	ID     string
	Name   string // NutritionLabels_{pdf|png|mixed}_{YYYYMMDD_HHMMSS}.zip
	Data   []byte
	Files  []string
	Failed []Failure
}

// ArchiveName returns the download name for a batch created at t.
func ArchiveName(f Format, t time.Time) string {
	return fmt.Sprintf("NutritionLabels_%s_%s.zip", f.label(), t.Format("20060102_150405"))
}

type rendered struct {
	files map[string][]byte // extension → bytes
	err   error
}

// Build renders records with r and zips the results. It fails only when
// ctx is cancelled, the archive cannot be written, or no record rendered.
func Build(ctx context.Context, r Renderer, records []*nutrition.Record, opts Options) (*Archive, error) {
	if opts.Format == "" {
		opts.Format = FormatPDF
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if len(records) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no products selected")
	}

	id := uuid.NewString()
	logger := opts.Logger.With("batch", id[:8])
	logger.Info("rendering batch", "products", len(records), "format", opts.Format)
	start := time.Now()

	results := make([]rendered, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, rec := range records {
		g.Go(func() error {
			files := make(map[string][]byte)
			for _, ext := range opts.Format.extensions() {
				data, err := r.RenderFormat(gctx, rec, opts.Style, ext)
				if err != nil {
					results[i].err = err
					return nil
				}
				files[ext] = data
			}
			results[i].files = files
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	arch := &Archive{ID: id, Name: ArchiveName(opts.Format, opts.Now())}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	names := newNamer()
	for i, res := range results {
		product := productName(records[i])
		if res.err != nil {
			logger.Warn("label skipped", "product", product, "err", res.err)
			arch.Failed = append(arch.Failed, Failure{Product: product, Err: res.err})
			continue
		}
		stem := names.next(errors.SafeFilename(product))
		for _, ext := range opts.Format.extensions() {
			name := stem + "." + ext
			w, err := zw.Create(name)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "add %s to archive", name)
			}
			if _, err := w.Write(res.files[ext]); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "write %s", name)
			}
			arch.Files = append(arch.Files, name)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "finish archive")
	}
	if len(arch.Files) == 0 {
		return arch, errors.New(errors.ErrCodeRender, "none of the %d selected products could be rendered", len(records))
	}
	arch.Data = buf.Bytes()

	logger.Info("batch ready", "files", len(arch.Files), "skipped", len(arch.Failed), "duration", time.Since(start).Round(time.Millisecond))
	return arch, nil
}

func productName(rec *nutrition.Record) string {
	if rec == nil {
		return ""
	}
	return rec.Name
}

// namer hands out unique file stems: "Bar", "Bar_2", "Bar_3".
type namer struct {
	seen map[string]int
}

func newNamer() *namer { return &namer{seen: make(map[string]int)} }

func (n *namer) next(stem string) string {
	key := strings.ToLower(stem)
	n.seen[key]++
	if c := n.seen[key]; c > 1 {
		candidate := fmt.Sprintf("%s_%d", stem, c)
		for n.seen[strings.ToLower(candidate)] > 0 {
			c++
			candidate = fmt.Sprintf("%s_%d", stem, c)
		}
		n.seen[key] = c
		n.seen[strings.ToLower(candidate)]++
		return candidate
	}
	return stem
}
