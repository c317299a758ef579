package sheets

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/matzehuels/nutrilabel/pkg/buildinfo"
	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/httputil"
)

// Options configures a [Client].
type Options struct {
	Format   Format
	Timeout  time.Duration // 0 means 30s
	Retries  int           // 0 means a single attempt
	MaxBytes int64         // 0 means the httputil default
}

// Client downloads and decodes sheets.
type Client struct {
	http   *httputil.Client
	format Format
}

// NewClient creates a Client. Extra httputil options are applied after
// the ones derived from opts.
func NewClient(opts Options, extra ...httputil.Option) *Client {
	hopts := []httputil.Option{httputil.WithRetries(opts.Retries, time.Second)}
	if opts.MaxBytes > 0 {
		hopts = append(hopts, httputil.WithMaxBytes(opts.MaxBytes))
	}
	hopts = append(hopts, extra...)
	headers := map[string]string{"User-Agent": "nutrilabel/" + buildinfo.Version}

	format := opts.Format
	if format == "" {
		format = CSV
	}
	return &Client{
		http:   httputil.NewClient(opts.Timeout, headers, hopts...),
		format: format,
	}
}

// Format returns the export format the client requests.
func (c *Client) Format() Format { return c.format }

// Fetch downloads the sheet at rawURL and decodes it.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Table, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "invalid sheet URL")
	}
	target := ExportURL(rawURL, c.format)

	resp, err := c.http.Get(ctx, target)
	if err != nil {
		return nil, fetchError(err)
	}
	if looksLikeHTML(resp.ContentType, resp.Body) {
		return nil, errors.New(errors.ErrCodeFetch, "sheet is not publicly accessible (received an HTML page instead of data)")
	}

	if c.format == XLSX {
		return ParseXLSX(resp.Body)
	}
	return ParseCSV(bytes.NewReader(resp.Body))
}

func fetchError(err error) error {
	var rl *errors.RateLimitedError
	switch {
	case stderrors.Is(err, httputil.ErrNotFound):
		return errors.Wrap(errors.ErrCodeFetch, err, "sheet not found")
	case stderrors.As(err, &rl):
		return errors.Wrap(errors.ErrCodeFetch, rl, "spreadsheet host is rate limiting requests")
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeFetch, errors.Wrap(errors.ErrCodeTimeout, err, "timed out"), "sheet request timed out")
	case stderrors.Is(err, httputil.ErrTooLarge):
		return errors.Wrap(errors.ErrCodeFetch, err, "sheet is too large")
	default:
		return errors.Wrap(errors.ErrCodeFetch, errors.Wrap(errors.ErrCodeNetwork, err, "request failed"), "could not reach the sheet")
	}
}

func looksLikeHTML(contentType string, body []byte) bool {
	if strings.HasPrefix(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body[:min(len(body), 512)]))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}
