package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/nutrilabel/pkg/batch"
)

// batchCommand creates the batch command that bundles labels into a ZIP.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		all       bool
		formatStr string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "batch [product...]",
		Short: "Render several labels into a ZIP archive",
		Long: `Render the labels of several products and bundle them into
NutritionLabels_{pdf|png|mixed}_{timestamp}.zip.

Products that fail to render are left out and reported. Without arguments
or --all an interactive picker lets you mark products.`,
		Example: `  nutrilabel batch --all --format both
  nutrilabel batch "Granola Bar" "Trail Mix" -o out/`,
		ValidArgsFunction: c.completeProducts,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			format, err := batch.ParseFormat(formatStr)
			if err != nil {
				return err
			}
			if all && len(args) > 0 {
				return fmt.Errorf("--all cannot be combined with product names")
			}

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			entry, err := c.loadCatalog(ctx, cfg, false)
			if err != nil {
				return err
			}

			records := entry.Catalog.Records()
			if !all {
				if records, err = selectRecords(entry, args, true); err != nil || len(records) == 0 {
					return err
				}
			}

			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d labels", len(records)))
			spinner.Start()
			archive, err := batch.Build(ctx, c.newRenderer(cfg), records, batch.Options{
				Format: format,
				Style:  cfg.Style,
				Logger: c.Logger,
			})
			if err != nil {
				spinner.StopWithError(errorMessage(err))
				return err
			}
			spinner.StopWithSuccess(fmt.Sprintf("Rendered %d files", len(archive.Files)))

			if err := os.MkdirAll(output, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			path := filepath.Join(output, archive.Name)
			if err := os.WriteFile(path, archive.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}

			printFile(path)
			for _, f := range archive.Failed {
				printWarning("%s skipped: %s", f.Product, errorMessage(f.Err))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "render every product in the sheet")
	cmd.Flags().StringVarP(&formatStr, "format", "f", "pdf", "archive contents: pdf, png or both")
	cmd.Flags().StringVarP(&output, "output", "o", ".", "output directory")
	return cmd
}
