package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nutrilabel/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Rendered 12 labels (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// debugHooks logs every observability event at debug level.
type debugHooks struct {
	logger *log.Logger
}

// registerDebugHooks routes loader, render, cache and HTTP events to logger.
func registerDebugHooks(logger *log.Logger) {
	h := debugHooks{logger: logger.WithPrefix("hooks")}
	observability.SetLoaderHooks(h)
	observability.SetRenderHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h debugHooks) OnFetchStart(_ context.Context, url string) {
	h.logger.Debug("fetch start", "url", url)
}

func (h debugHooks) OnFetchComplete(_ context.Context, url string, products, skipped int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fetch failed", "url", url, "duration", d, "err", err)
		return
	}
	h.logger.Debug("fetch complete", "url", url, "products", products, "skipped", skipped, "duration", d)
}

func (h debugHooks) OnRowSkipped(_ context.Context, row int, err error) {
	h.logger.Debug("row skipped", "row", row, "err", err)
}

func (h debugHooks) OnRenderStart(_ context.Context, product string, formats []string) {
	h.logger.Debug("render start", "product", product, "formats", formats)
}

func (h debugHooks) OnRenderComplete(_ context.Context, product string, formats []string, d time.Duration, err error) {
	h.logger.Debug("render complete", "product", product, "formats", formats, "duration", d, "err", err)
}

func (h debugHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h debugHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h debugHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h debugHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h debugHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h debugHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "method", method, "host", host, "path", path, "err", err)
}
