package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/wizenheimer/listings"
)

// Config is the CLI configuration: listings.yaml, then LISTINGS_* env vars,
// then command-line flags, each overriding the last.
type Config struct {
	Source  SourceConfig `mapstructure:"source"`
	Log     LogConfig    `mapstructure:"log"`
	PerPage int          `mapstructure:"per_page"`
}

// SourceConfig selects where listings come from. File wins over ListURL.
type SourceConfig struct {
	File      string        `mapstructure:"file"`
	ListURL   string        `mapstructure:"list_url"`
	DetailURL string        `mapstructure:"detail_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	CacheSize int           `mapstructure:"cache_size"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var errNoSource = errors.New("no listing source configured (set source.file or source.list_url)")

// commonFlags registers the flags every command shares.
func commonFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to listings.yaml")
	fs.String("file", "", "read listings from a local JSON file")
	fs.String("list-url", "", "inventory list endpoint")
	fs.String("detail-url", "", "inventory detail endpoint prefix")
	fs.Duration("timeout", 0, "HTTP request timeout")
	fs.String("log-level", "", "debug, info, warn or error")
	fs.String("log-format", "", "json or text")
	fs.Int("per-page", 0, "items per page (10, 20, 30, 50 or 100)")
}

var flagKeys = map[string]string{
	"file":       "source.file",
	"list-url":   "source.list_url",
	"detail-url": "source.detail_url",
	"timeout":    "source.timeout",
	"log-level":  "log.level",
	"log-format": "log.format",
	"per-page":   "per_page",
}

// loadConfig resolves the configuration. fs must already be parsed.
func loadConfig(fs *pflag.FlagSet) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	// every key needs a default so AutomaticEnv values reach Unmarshal
	v.SetDefault("source.file", "")
	v.SetDefault("source.list_url", "")
	v.SetDefault("source.detail_url", "")
	v.SetDefault("source.timeout", 30*time.Second)
	v.SetDefault("source.cache_size", 256)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("per_page", listings.DefaultPerPage)

	v.SetConfigType("yaml")
	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("listings")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix("LISTINGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Source.File == "" && cfg.Source.ListURL == "" {
		return errNoSource
	}
	if _, err := listings.NewPaginator(cfg.PerPage); err != nil {
		return err
	}
	return nil
}

// loadEnvFile loads the first .env found; a missing file is fine.
func loadEnvFile() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				slog.Debug("loaded .env", slog.String("path", path))
				return
			}
		}
	}
}

// newLogger builds the process logger from cfg.
func newLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newSource builds the DataSource cfg describes.
func newSource(cfg SourceConfig) (listings.DataSource, error) {
	if cfg.File != "" {
		return listings.NewFileSource(cfg.File), nil
	}
	sc := listings.DefaultSourceConfig()
	sc.ListURL = cfg.ListURL
	sc.DetailURL = cfg.DetailURL
	if cfg.Timeout > 0 {
		sc.Timeout = cfg.Timeout
	}
	if cfg.CacheSize > 0 {
		sc.CacheSize = cfg.CacheSize
	}
	src, err := listings.NewHTTPSource(sc, nil)
	if err != nil {
		return nil, err
	}
	return src, nil
}
