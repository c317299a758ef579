package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/nutrilabel/pkg/admin"
	"github.com/matzehuels/nutrilabel/pkg/errors"
	"github.com/matzehuels/nutrilabel/pkg/render/style"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.Sheet.CacheTTL() != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.Sheet.CacheTTL())
	}
	if cfg.Sheet.Timeout() != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Sheet.Timeout())
	}
	if cfg.Sheet.Retries != 0 {
		t.Errorf("Retries = %d, want 0", cfg.Sheet.Retries)
	}
	if cfg.Admin.PasswordHash != admin.DefaultPasswordHash {
		t.Error("default password hash should be the hash of \"password\"")
	}
	if cfg.Admin.SessionTTL() != 0 {
		t.Error("sessions should not expire by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
[sheet]
url = "https://example.com/products.csv"
format = "xlsx"
cache_seconds = 60
retries = 2

[admin]
password_hash = "`+admin.HashPassword("s3cret")+`"
session_minutes = 90

[server]
addr = "127.0.0.1:9000"

[fonts]
title = "/opt/fonts/Title.ttf"

[cache]
dir = "/tmp/nutrilabel"

[style]
title_size = 30
ink = "#222222"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q", cfg.Path)
	}
	if cfg.Sheet.URL != "https://example.com/products.csv" || cfg.Sheet.Format != "xlsx" {
		t.Errorf("Sheet = %+v", cfg.Sheet)
	}
	if cfg.Sheet.CacheTTL() != time.Minute || cfg.Sheet.Retries != 2 {
		t.Errorf("Sheet = %+v", cfg.Sheet)
	}
	if cfg.Sheet.TimeoutSeconds != DefaultTimeout {
		t.Error("unset keys should keep their defaults")
	}
	if cfg.Admin.SessionTTL() != 90*time.Minute {
		t.Errorf("SessionTTL = %v", cfg.Admin.SessionTTL())
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Fonts.Title != "/opt/fonts/Title.ttf" || cfg.Cache.Dir != "/tmp/nutrilabel" {
		t.Errorf("cfg = %+v", cfg)
	}

	want := style.Default()
	want.TitleSize = 30
	want.Ink = "#222222"
	if cfg.Style != want {
		t.Errorf("Style = %+v, want %+v", cfg.Style, want)
	}
	if len(cfg.Unknown) != 0 {
		t.Errorf("Unknown = %v", cfg.Unknown)
	}
}

func TestLoadReportsUnknownKeys(t *testing.T) {
	path := writeConfig(t, `
[sheet]
url = "https://example.com/products.csv"
cache_minutes = 5

[theme]
dark = true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, key := range []string{"sheet.cache_minutes", "theme.dark"} {
		if !slices.Contains(cfg.Unknown, key) {
			t.Errorf("Unknown = %v, missing %s", cfg.Unknown, key)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[sheet\nurl = 1", "parse"},
		{"bad url", "[sheet]\nurl = \"ftp://example.com\"", "http or https"},
		{"bad format", "[sheet]\nformat = \"ods\"", "sheet.format"},
		{"zero cache", "[sheet]\ncache_seconds = 0", "cache_seconds"},
		{"negative retries", "[sheet]\nretries = -1", "retries"},
		{"bad hash", "[admin]\npassword_hash = \"password\"", "password_hash"},
		{"bad style", "[style]\ndpi = 0", "dpi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("err = %v, want INVALID_CONFIG", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("explicit missing file: err = %v, want INVALID_CONFIG", err)
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") without a user config: %v", err)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}
}

func TestLoadDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "nutrilabel", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9999\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":9999" || cfg.Path != path {
		t.Errorf("cfg = %+v", cfg)
	}
}
