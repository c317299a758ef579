package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// productsCommand creates the products command that lists the catalog.
func (c *CLI) productsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"ls"},
		Short:   "List the products in the sheet",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			entry, err := c.loadCatalog(cmd.Context(), cfg, asJSON)
			if err != nil {
				return err
			}
			records := entry.Catalog.Records()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}

			if len(records) == 0 {
				printWarning("No products found")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), productsTable(records))
			printStats(len(records), len(entry.Skipped), entry.Stale)
			printNextStep("Render one", appName+" render \""+records[0].Name+"\"")
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the records as JSON")
	return cmd
}
