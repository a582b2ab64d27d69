package pdfgraph

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/tsawler/pdfgraph/reader"
)

// Config holds the settings for opening documents.
//
// A YAML file sets any subset of the fields; the rest keep their defaults:
//
//	max_depth: 200
//	eager: false
//	max_decoded_size: 268435456
//	log_level: debug
//	log_format: json
//	workers: 4
type Config struct {
	// MaxDepth bounds the nesting depth of one resolution.
	MaxDepth int `yaml:"max_depth"`

	// Eager resolves nested references while loading.
	Eager bool `yaml:"eager"`

	// MaxDecodedSize bounds the output of each stream filter. Zero means
	// no limit.
	MaxDecodedSize int64 `yaml:"max_decoded_size"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// LogFormat is text or json.
	LogFormat string `yaml:"log_format"`

	// Workers is the number of documents OpenAll loads at once.
	Workers int `yaml:"workers"`
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		MaxDepth:       100,
		MaxDecodedSize: 256 << 20,
		LogLevel:       "warn",
		LogFormat:      "text",
		Workers:        runtime.GOMAXPROCS(0),
	}
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML over the default settings. Unknown keys are
// rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.DisallowUnknownField()); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.MaxDecodedSize < 0 {
		return fmt.Errorf("max_decoded_size must not be negative, got %d", c.MaxDecodedSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log_level %q", s)
}

// Logger returns a logger writing to w with the configured level and
// format.
func (c Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ReaderOptions converts the settings to reader options. Logging is left
// to the caller, see Logger.
func (c Config) ReaderOptions() []reader.Option {
	opts := []reader.Option{
		reader.WithEager(c.Eager),
	}
	if c.MaxDepth > 0 {
		opts = append(opts, reader.WithMaxDepth(c.MaxDepth))
	}
	if c.MaxDecodedSize > 0 {
		opts = append(opts, reader.WithMaxDecodedSize(c.MaxDecodedSize))
	}
	return opts
}
