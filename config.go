package dlog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Config is the file form of the interceptor options.
//
//	api_key: sk_live_abc
//	sanitize_emails: true
//	sanitize_credit_cards: false
//	preserve_output: false
//	level: debug
//	format: text
type Config struct {
	APIKey              string `koanf:"api_key"`
	SanitizeEmails      bool   `koanf:"sanitize_emails"`
	SanitizeCreditCards bool   `koanf:"sanitize_credit_cards"`
	PreserveOutput      bool   `koanf:"preserve_output"`
	Level               string `koanf:"level"`
	Format              string `koanf:"format"`
}

// Output formats understood by Config.Format.
const (
	FormatJSON = "json"
	FormatText = "text"
)

var errUnsupportedConfig = errors.New("unsupported config format")

// LoadConfig reads a YAML or JSON file, chosen by extension, and overlays
// DLOG_API_KEY and DLOG_LEVEL from the environment when they are set.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dlog: load config: %w", err)
	}

	return ParseConfig(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// ParseConfig decodes data in the given format ("yaml", "yml" or "json") and
// applies the environment overlay.
func ParseConfig(data []byte, format string) (*Config, error) {
	var parser koanf.Parser

	switch strings.ToLower(format) {
	case "yaml", "yml":
		parser = yaml.Parser()
	case "json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("dlog: %w: %q", errUnsupportedConfig, format)
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("dlog: parse config: %w", err)
	}

	cfg := &Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("dlog: decode config: %w", err)
	}

	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}

	if v := os.Getenv(EnvLevel); v != "" {
		cfg.Level = v
	}

	return cfg, nil
}

// Options converts the config to interceptor options.
// It fails on an unknown level or format.
func (c *Config) Options() ([]Option, error) {
	var opts []Option

	if c.SanitizeEmails {
		opts = append(opts, WithSanitizeEmails())
	}

	if c.SanitizeCreditCards {
		opts = append(opts, WithSanitizeCreditCards())
	}

	opts = append(opts, WithPreserveOutput(c.PreserveOutput))

	if c.Level != "" {
		level, err := ParseSeverity(c.Level)
		if err != nil {
			return nil, fmt.Errorf("dlog: %w", err)
		}

		opts = append(opts, WithMinSeverity(level))
	}

	switch strings.ToLower(c.Format) {
	case "", FormatJSON:
	case FormatText:
		opts = append(opts, WithDriver(NewWriterDriver(os.Stderr, WithWriterFormatter(NewTextFormatter()))))
	default:
		return nil, fmt.Errorf("dlog: unknown output format %q", c.Format)
	}

	return opts, nil
}
