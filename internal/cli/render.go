package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nutrilabel/pkg/catalog"
	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/nutrition"
	"github.com/matzehuels/nutrilabel/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string   // output directory
	formats []string // pdf, png, svg, json
}

// renderCommand creates the render command that writes label files for
// individual products.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{}

	cmd := &cobra.Command{
		Use:   "render [product...]",
		Short: "Render nutrition labels to files",
		Long: `Render the Nutrition Facts label of one or more products.

Without arguments an interactive picker lists the products in the sheet.
The label style comes from the [style] section of the config file.`,
		Example: `  nutrilabel render "Granola Bar"
  nutrilabel render "Granola Bar" "Trail Mix" -f pdf,svg -o labels/`,
		ValidArgsFunction: c.completeProducts,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatsStr)
			if err != nil {
				return err
			}
			opts.formats = formats
			return c.runRender(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&formatsStr, "format", "f", "pdf,png", "output formats: pdf, png, svg, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", ".", "output directory")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, opts renderOpts) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	entry, err := c.loadCatalog(ctx, cfg, false)
	if err != nil {
		return err
	}

	records, err := selectRecords(entry, args, false)
	if err != nil || len(records) == 0 {
		return err
	}

	if err := os.MkdirAll(opts.output, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	r := c.newRenderer(cfg)
	prog := newProgress(c.Logger)
	written := 0
	for _, rec := range records {
		stem := filepath.Join(opts.output, errors.SafeFilename(rec.Name))
		printInfo("Rendering %s", StyleHighlight.Render(rec.Name))
		for _, format := range opts.formats {
			data, err := r.RenderFormat(ctx, rec, cfg.Style, format)
			if err != nil {
				return err
			}
			path := stem + "." + format
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			printFile(path)
			written++
		}
	}
	prog.done(fmt.Sprintf("Rendered %d files", written))
	return nil
}

// selectRecords resolves product names against the catalog, or runs the
// picker when names is empty.
func selectRecords(entry *catalog.Entry, names []string, multi bool) ([]*nutrition.Record, error) {
	if len(names) == 0 {
		if entry.Catalog.Len() == 0 {
			return nil, errors.New(errors.ErrCodeNotFound, "no products in the sheet")
		}
		picked, err := pickProducts(entry.Catalog.Records(), multi)
		if err != nil {
			return nil, err
		}
		if len(picked) == 0 {
			printDetail("No selection made")
		}
		return picked, nil
	}

	records := make([]*nutrition.Record, 0, len(names))
	for _, name := range names {
		if err := errors.ValidateProductName(name); err != nil {
			return nil, err
		}
		rec, ok := entry.Catalog.Get(name)
		if !ok {
			return nil, errors.New(errors.ErrCodeProductNotFound, "product %q not found", name)
		}
		records = append(records, rec)
	}
	return records, nil
}

// parseFormats splits a comma-separated format list, dropping duplicates.
func parseFormats(s string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		if !render.ValidFormats[f] {
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q (want pdf, png, svg or json)", f)
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "no output format given")
	}
	return out, nil
}
