// Package config loads nutrilabel's TOML configuration.
//
// [Load] starts from [Default] and overlays the file, so every key is
// optional. Keys the file sets that nutrilabel does not know are collected in
// [Config.Unknown] for the caller to report; they are not an error.
//
// Example file:
//
//	[sheet]
//	url = "https://docs.google.com/spreadsheets/d/<id>/edit#gid=0"
//	format = "csv"
//	cache_seconds = 300
//
//	[admin]
//	password_hash = "5e8848..."
//
//	[server]
//	addr = ":8080"
//
//	[fonts]
//	title = "fonts/Helvetica-Black.ttf"
//
//	[style]
//	title_size = 27
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/nutrilabel/pkg/admin"
	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/fonts"
	"github.com/matzehuels/nutrilabel/pkg/render/style"
	"github.com/matzehuels/nutrilabel/pkg/sheets"
)

const appName = "nutrilabel"

// Defaults.
const (
	DefaultSheetURL     = "https://docs.google.com/spreadsheets/d/1GPxWXnx6fPJEmgjpsmUvlQdcMKRrc2yPGBcwdI6y10A/edit?usp=sharing"
	DefaultCacheSeconds = 300
	DefaultTimeout      = 30
	DefaultAddr         = ":8080"
)

// Config is the full configuration.
type Config struct {
	Sheet  SheetConfig  `toml:"sheet"`
	Admin  AdminConfig  `toml:"admin"`
	Server ServerConfig `toml:"server"`
	Fonts  fonts.Paths  `toml:"fonts"`
	Cache  CacheConfig  `toml:"cache"`
	Style  style.Style  `toml:"style"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
	// Unknown lists keys present in the file that were not decoded.
	Unknown []string `toml:"-"`
}

// SheetConfig configures the spreadsheet source.
type SheetConfig struct {
	URL            string `toml:"url"`
	Format         string `toml:"format"`
	CacheSeconds   int    `toml:"cache_seconds"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Retries        int    `toml:"retries"`
}

// CacheTTL returns the in-memory cache duration.
func (s SheetConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheSeconds) * time.Second
}

// Timeout returns the fetch timeout.
func (s SheetConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// AdminConfig configures the admin gate.
type AdminConfig struct {
	PasswordHash   string `toml:"password_hash"`
	SessionMinutes int    `toml:"session_minutes"` // 0 keeps sessions until restart
}

// SessionTTL returns the admin session lifetime, zero for none.
func (a AdminConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionMinutes) * time.Minute
}

// ServerConfig configures the web server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// CacheConfig selects the last-known-good snapshot store. With RedisAddr
// set, snapshots go to Redis; with Dir set, to files; otherwise nowhere.
type CacheConfig struct {
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sheet: SheetConfig{
			URL:            DefaultSheetURL,
			Format:         string(sheets.CSV),
			CacheSeconds:   DefaultCacheSeconds,
			TimeoutSeconds: DefaultTimeout,
		},
		Admin:  AdminConfig{PasswordHash: admin.DefaultPasswordHash},
		Server: ServerConfig{Addr: DefaultAddr},
		Fonts:  fonts.Paths{Title: fonts.DefaultTitlePath},
		Style:  style.Default(),
	}
}

// DefaultPath returns the user config file location
// (~/.config/nutrilabel/config.toml, or the XDG equivalent).
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// Load reads path over the defaults and validates the result. An empty path
// tries [DefaultPath] and silently falls back to defaults when no file is
// there; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, cfg.Validate()
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		cfg.Path = path
		for _, key := range md.Undecoded() {
			cfg.Unknown = append(cfg.Unknown, key.String())
		}
	case !explicit && os.IsNotExist(err):
		// no user config
	case os.IsNotExist(err):
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config file %s not found", path)
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(err error) {
		if err != nil {
			problems = append(problems, errors.UserMessage(err))
		}
	}

	if c.Sheet.URL != "" {
		add(errors.ValidateURL(c.Sheet.URL))
	}
	if _, ok := sheets.ParseFormat(c.Sheet.Format); !ok {
		problems = append(problems, "sheet.format must be csv or xlsx")
	}
	if c.Sheet.CacheSeconds <= 0 {
		problems = append(problems, "sheet.cache_seconds must be positive")
	}
	if c.Sheet.TimeoutSeconds <= 0 {
		problems = append(problems, "sheet.timeout_seconds must be positive")
	}
	if c.Sheet.Retries < 0 {
		problems = append(problems, "sheet.retries must not be negative")
	}
	if !admin.ValidHash(strings.ToLower(strings.TrimSpace(c.Admin.PasswordHash))) {
		problems = append(problems, "admin.password_hash must be a SHA-256 hex digest (see `nutrilabel hash-password`)")
	}
	if c.Admin.SessionMinutes < 0 {
		problems = append(problems, "admin.session_minutes must not be negative")
	}
	if c.Server.Addr == "" {
		problems = append(problems, "server.addr must be set")
	}
	add(c.Style.Validate())

	if len(problems) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s", strings.Join(problems, "; "))
	}
	return nil
}
