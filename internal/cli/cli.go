// Package cli implements the nutrilabel command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nutrilabel/pkg/buildinfo"
	"github.com/matzehuels/nutrilabel/pkg/cache"
	"github.com/matzehuels/nutrilabel/pkg/catalog"
	"github.com/matzehuels/nutrilabel/pkg/config"
	"github.com/matzehuels/nutrilabel/pkg/fonts"
	"github.com/matzehuels/nutrilabel/pkg/render"
	"github.com/matzehuels/nutrilabel/pkg/sheets"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "nutrilabel"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "nutrilabel renders FDA-style nutrition labels from a spreadsheet",
		Long: `nutrilabel reads nutrition data from a publicly shared spreadsheet and renders
Nutrition Facts panels as PDF and PNG files, from the command line or a web UI.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default ~/.config/nutrilabel/config.toml)")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.productsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.hashPasswordCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Component Factories
// =============================================================================

// loadConfig reads the configuration and warns about unknown keys.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	for _, key := range cfg.Unknown {
		c.Logger.Warn("unknown config key", "key", key)
	}
	return cfg, nil
}

// newSnapshots opens the snapshot store selected by the [cache] section.
func (c *CLI) newSnapshots(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch {
	case cfg.Cache.RedisAddr != "":
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   appName + ":",
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case cfg.Cache.Dir != "":
		fc, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	default:
		return cache.NewNullCache(), nil
	}
}

// newLoader builds a catalog loader for cfg.
func (c *CLI) newLoader(cfg *config.Config, snapshots cache.Cache) *catalog.Loader {
	format, _ := sheets.ParseFormat(cfg.Sheet.Format)
	return catalog.NewLoader(catalog.Options{
		URL: cfg.Sheet.URL,
		TTL: cfg.Sheet.CacheTTL(),
		Fetcher: sheets.NewClient(sheets.Options{
			Format:  format,
			Timeout: cfg.Sheet.Timeout(),
			Retries: cfg.Sheet.Retries,
		}),
		Snapshots: snapshots,
		Logger:    c.Logger,
	})
}

// newRenderer loads the configured fonts and builds a renderer.
func (c *CLI) newRenderer(cfg *config.Config) *render.Renderer {
	set := fonts.Load(cfg.Fonts, c.Logger)
	for _, role := range set.Fallbacks() {
		c.Logger.Debug("using embedded font", "role", role, "source", set.Face(role).Source)
	}
	return render.NewRenderer(set, c.Logger)
}

// loadCatalog fetches the catalog behind a spinner. Stale data and skipped
// rows are reported on stdout, or through the logger when quiet is set.
func (c *CLI) loadCatalog(ctx context.Context, cfg *config.Config, quiet bool) (*catalog.Entry, error) {
	snapshots, err := c.newSnapshots(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer snapshots.Close()

	spinner := newSpinnerWithContext(ctx, "Fetching "+cfg.Sheet.URL)
	spinner.Start()
	entry, err := c.newLoader(cfg, snapshots).Load(ctx)
	spinner.Stop()

	if entry == nil {
		return nil, err
	}
	if err != nil {
		fetched := entry.FetchedAt.Format("2006-01-02 15:04:05")
		if quiet {
			c.Logger.Warn("serving stale data", "err", err, "fetched_at", fetched)
		} else {
			printWarning("%s", err)
			printDetail("Using data fetched at %s", fetched)
		}
	}
	for _, sk := range entry.Skipped {
		if quiet {
			c.Logger.Warn("row skipped", "row", sk.Row, "reason", errorMessage(sk.Err))
		} else {
			printWarning("Row %d skipped: %s", sk.Row, errorMessage(sk.Err))
		}
	}
	return entry, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the snapshot directory: cache.dir from the config, or
// the XDG cache location (~/.cache/nutrilabel/).
func cacheDir(cfg *config.Config) (string, error) {
	if cfg != nil && cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
