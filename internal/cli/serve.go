package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/nutrilabel/internal/httpserver"
	"github.com/matzehuels/nutrilabel/pkg/admin"
)

// serveCommand creates the serve command that runs the web UI.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI",
		Long: `Run the web UI: product selector, label preview, PDF/PNG downloads,
batch ZIP generation and the password-protected admin panel.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			registerDebugHooks(c.Logger)

			snapshots, err := c.newSnapshots(ctx, cfg)
			if err != nil {
				return err
			}
			defer snapshots.Close()

			if cfg.Admin.PasswordHash == "" {
				c.Logger.Warn("admin password not configured, using the built-in default")
			}
			gate, err := admin.NewGate(cfg.Admin.PasswordHash, admin.WithSessionTTL(cfg.Admin.SessionTTL()))
			if err != nil {
				return err
			}

			srv, err := httpserver.New(httpserver.Config{
				Loader:   c.newLoader(cfg, snapshots),
				Renderer: c.newRenderer(cfg),
				Gate:     gate,
				Settings: admin.NewSettings(admin.Snapshot{
					Style:    cfg.Style,
					SheetURL: cfg.Sheet.URL,
					CacheTTL: cfg.Sheet.CacheTTL(),
				}),
				Logger: c.Logger,
			})
			if err != nil {
				return err
			}

			printInfo("Serving on %s", StyleHighlight.Render(cfg.Server.Addr))
			printKeyValue("Sheet", cfg.Sheet.URL)
			printKeyValue("Cache", cfg.Sheet.CacheTTL().String())
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides server.addr)")
	return cmd
}
