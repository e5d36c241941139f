package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "BLUEPRINT_"

// sections are the nested config groups; env names split after them.
var sections = []string{"log", "store", "history", "decode", "generator"}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"log-level":         "log.level",
	"log-format":        "log.format",
	"store":             "store.path",
	"history-depth":     "history.depth",
	"max-depth":         "decode.max_depth",
	"generator-url":     "generator.url",
	"generator-timeout": "generator.timeout",
	"lang":              "lang",
	"output":            "output",
	"project":           "project",
}

// Loaded is a resolved configuration with its source file.
type Loaded struct {
	*Config
	// File is the config file that was read, or "".
	File string
}

// Load resolves the configuration. cfgFile may be empty, in which case
// ./blueprint.yaml is used when present. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Loaded, error) {
	k := koanf.New(".")
	d := Default()

	if err := k.Load(confmap.Provider(map[string]any{
		"log.level":                d.Log.Level,
		"log.format":               d.Log.Format,
		"store.path":               d.Store.Path,
		"history.depth":            d.History.Depth,
		"decode.max_depth":         d.Decode.MaxDepth,
		"generator.url":            d.Generator.URL,
		"generator.timeout":        d.Generator.Timeout.String(),
		"generator.stream_timeout": d.Generator.StreamTimeout.String(),
		"generator.token":          "",
		"lang":                     d.Lang,
		"output":                   d.Output,
		"project":                  d.Project,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := cfgFile
	if used == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			used = DefaultConfigFile
		}
	}
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Loaded{Config: &cfg, File: used}, nil
}

// envKey maps BLUEPRINT_DECODE_MAX_DEPTH to decode.max_depth.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, sec := range sections {
		if strings.HasPrefix(s, sec+"_") {
			return sec + "." + strings.TrimPrefix(s, sec+"_")
		}
	}
	return s
}

// Validate checks enumerated and bounded settings.
func (c *Config) Validate() error {
	var errs []error
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q (want text|json)", c.Log.Format))
	}
	switch c.Output {
	case "table", "json", "plain":
	default:
		errs = append(errs, fmt.Errorf("output: unknown mode %q (want table|json|plain)", c.Output))
	}
	if c.History.Depth < 0 {
		errs = append(errs, fmt.Errorf("history.depth: must not be negative"))
	}
	if c.Decode.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("decode.max_depth: must be at least 1"))
	}
	if c.Generator.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("generator.timeout: must be positive"))
	}
	if c.Generator.StreamTimeout < 0 {
		errs = append(errs, fmt.Errorf("generator.stream_timeout: must not be negative"))
	}
	return errors.Join(errs...)
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return l, nil
}

// NewLogger builds the slog logger described by c.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelWarn
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

type (
	loggerKey struct{}
	configKey struct{}
)

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// GetLogger retrieves the logger from the context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// WithConfig stores c in ctx.
func WithConfig(ctx context.Context, c *Loaded) context.Context {
	return context.WithValue(ctx, configKey{}, c)
}

// Get retrieves the configuration from the context, or the defaults.
func Get(ctx context.Context) *Loaded {
	if c, ok := ctx.Value(configKey{}).(*Loaded); ok {
		return c
	}
	return &Loaded{Config: Default()}
}
