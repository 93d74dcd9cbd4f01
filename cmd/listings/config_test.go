package main

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/wizenheimer/listings"
)

// parsedFlags returns the shared flag set parsed from args, with the working
// directory moved somewhere no listings.yaml or .env can be found.
func parsedFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	chdir(t, t.TempDir())

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return fs
}

// ═══════════════════════════════════════════════════════════════════════════════
// CONFIG TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := loadConfig(parsedFlags(t, "--file", "listings.json"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.Source.File != "listings.json" {
		t.Errorf("Source.File = %q", cfg.Source.File)
	}
	if cfg.Source.Timeout != 30*time.Second || cfg.Source.CacheSize != 256 {
		t.Errorf("Source defaults = %+v", cfg.Source)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log defaults = %+v", cfg.Log)
	}
	if cfg.PerPage != listings.DefaultPerPage {
		t.Errorf("PerPage = %d, want %d", cfg.PerPage, listings.DefaultPerPage)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	fs := parsedFlags(t)
	t.Setenv("LISTINGS_SOURCE_LIST_URL", "https://inventory.example.com/listings")
	t.Setenv("LISTINGS_SOURCE_TIMEOUT", "5s")
	t.Setenv("LISTINGS_LOG_LEVEL", "debug")
	t.Setenv("LISTINGS_PER_PAGE", "50")

	cfg, err := loadConfig(fs)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Source.ListURL != "https://inventory.example.com/listings" {
		t.Errorf("Source.ListURL = %q", cfg.Source.ListURL)
	}
	if cfg.Source.Timeout != 5*time.Second {
		t.Errorf("Source.Timeout = %v", cfg.Source.Timeout)
	}
	if cfg.Log.Level != "debug" || cfg.PerPage != 50 {
		t.Errorf("Config = %+v", cfg)
	}
}

func TestLoadConfig_FlagsBeatEnv(t *testing.T) {
	fs := parsedFlags(t, "--file", "flag.json", "--per-page", "20")
	t.Setenv("LISTINGS_SOURCE_FILE", "env.json")
	t.Setenv("LISTINGS_PER_PAGE", "100")

	cfg, err := loadConfig(fs)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Source.File != "flag.json" || cfg.PerPage != 20 {
		t.Errorf("Config = %+v, want the flag values", cfg)
	}
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	fs := parsedFlags(t)
	yaml := "source:\n  file: from-yaml.json\n  cache_size: 8\nlog:\n  format: json\nper_page: 30\n"
	if err := os.WriteFile("listings.yaml", []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Source.File != "from-yaml.json" || cfg.Source.CacheSize != 8 {
		t.Errorf("Source = %+v", cfg.Source)
	}
	if cfg.Log.Format != "json" || cfg.PerPage != 30 {
		t.Errorf("Config = %+v", cfg)
	}
}

func TestLoadConfig_ExplicitConfigMissing(t *testing.T) {
	fs := parsedFlags(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := loadConfig(fs); err == nil {
		t.Error("Expected an error for a missing --config file")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	if _, err := loadConfig(parsedFlags(t)); !errors.Is(err, errNoSource) {
		t.Errorf("No source: error = %v, want errNoSource", err)
	}

	_, err := loadConfig(parsedFlags(t, "--file", "x.json", "--per-page", "25"))
	if !errors.Is(err, listings.ErrInvalidPerPage) {
		t.Errorf("per-page 25: error = %v, want ErrInvalidPerPage", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// LOGGER & SOURCE TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", slog.Int("count", 3))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Info record passed a warn-level logger")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"count":3`) {
		t.Errorf("JSON output = %s", out)
	}

	buf.Reset()
	newLogger(LogConfig{Format: "text"}, &buf).Info("plain")
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Errorf("Text output = %s", buf.String())
	}
}

func TestNewSource(t *testing.T) {
	src, err := newSource(SourceConfig{File: "a.json", ListURL: "http://ignored"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*listings.FileSource); !ok {
		t.Errorf("File config built %T, want *FileSource", src)
	}

	src, err = newSource(SourceConfig{ListURL: "http://localhost/listings", CacheSize: 4})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*listings.HTTPSource); !ok {
		t.Errorf("URL config built %T, want *HTTPSource", src)
	}

	if _, err := newSource(SourceConfig{}); err == nil {
		t.Error("Expected an error without file or URL")
	}
}
