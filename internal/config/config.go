// Package config loads the collection configuration: which log to query,
// which fields text filters search, and how conditional operands apply.
//
// Values come from an optional YAML file, overridden by DOCLOG_* environment
// variables. Command-line flags override both and are applied by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/roach88/doclog/internal/query"
)

// EnvPrefix prefixes every environment override, e.g. DOCLOG_LOG_PATH.
const EnvPrefix = "DOCLOG"

// Config is the collection configuration.
type Config struct {
	// LogPath is the document log file.
	LogPath string `mapstructure:"log_path"`

	// TextFields are the fields searched by $text filters.
	TextFields []string `mapstructure:"text_fields"`

	// OperandMode is "present" (default) or "truthy".
	OperandMode string `mapstructure:"operand_mode"`

	// LogLevel is the diagnostic log level: debug, info, warn or error.
	LogLevel string `mapstructure:"log_level"`
}

var keys = []string{"log_path", "text_fields", "operand_mode", "log_level"}

// fileKeys mirrors the keys a config file may set. Values are checked later
// by viper; only the key set matters here.
type fileKeys struct {
	LogPath     yaml.Node `yaml:"log_path"`
	TextFields  yaml.Node `yaml:"text_fields"`
	OperandMode yaml.Node `yaml:"operand_mode"`
	LogLevel    yaml.Node `yaml:"log_level"`
}

// Load reads the config file at path, if path is non-empty, then applies
// environment overrides. Unknown keys in the file are an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("operand_mode", query.OperandPresent.String())
	v.SetDefault("log_level", "warn")
	v.SetDefault("text_fields", []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		// viper silently drops keys holding empty maps, so the key set is
		// checked on the raw file.
		if err := checkKeys(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.TextFields = splitFields(cfg.TextFields)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	if _, err := query.ParseOperandMode(c.OperandMode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// checkKeys rejects top-level keys outside the known set.
func checkKeys(data []byte) error {
	var fk fileKeys
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fk); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// EngineOptions converts the configuration into query engine options.
func (c *Config) EngineOptions() []query.Option {
	mode, _ := query.ParseOperandMode(c.OperandMode)
	return []query.Option{
		query.WithTextFields(c.TextFields...),
		query.WithOperandMode(mode),
	}
}

// ParseLevel parses a slog level name. The empty string is warn.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

// splitFields accepts both YAML lists and comma-separated env values,
// trimming blanks.
func splitFields(in []string) []string {
	out := []string{}
	for _, item := range in {
		for _, f := range strings.Split(item, ",") {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}
	}
	return out
}
