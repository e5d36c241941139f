// Package config loads blueprint CLI settings.
//
// Precedence (highest to lowest): flags > BLUEPRINT_* environment > config
// file > defaults.
package config

import (
	"time"
)

// Default values.
const (
	DefaultConfigFile   = "blueprint.yaml"
	DefaultStorePath    = ".blueprint/saves.db"
	DefaultProject      = "default"
	DefaultLogLevel     = "warn"
	DefaultLogFormat    = "text"
	DefaultOutput       = "table"
	DefaultLang         = "en"
	DefaultGeneratorURL = "http://localhost:8080"
	DefaultTimeout      = 30 * time.Second
	DefaultHistoryDepth = 50
	DefaultMaxDepth     = 32
)

// Config is the resolved CLI configuration.
type Config struct {
	Log       LogConfig       `koanf:"log"`
	Store     StoreConfig     `koanf:"store"`
	History   HistoryConfig   `koanf:"history"`
	Decode    DecodeConfig    `koanf:"decode"`
	Generator GeneratorConfig `koanf:"generator"`
	Lang      string          `koanf:"lang"`
	Output    string          `koanf:"output"`
	Project   string          `koanf:"project"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// StoreConfig locates the saves database.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// HistoryConfig bounds editor undo history.
type HistoryConfig struct {
	Depth int `koanf:"depth"`
}

// DecodeConfig controls document decoding.
type DecodeConfig struct {
	MaxDepth int `koanf:"max_depth"`
}

// GeneratorConfig points at the project generation service.
type GeneratorConfig struct {
	URL string `koanf:"url"`
	// Timeout bounds the submit and download requests.
	Timeout time.Duration `koanf:"timeout"`
	// StreamTimeout bounds the progress stream; 0 waits until the service
	// finishes or the command is cancelled.
	StreamTimeout time.Duration `koanf:"stream_timeout"`
	Token         string        `koanf:"token"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:       LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Store:     StoreConfig{Path: DefaultStorePath},
		History:   HistoryConfig{Depth: DefaultHistoryDepth},
		Decode:    DecodeConfig{MaxDepth: DefaultMaxDepth},
		Generator: GeneratorConfig{URL: DefaultGeneratorURL, Timeout: DefaultTimeout},
		Lang:      DefaultLang,
		Output:    DefaultOutput,
		Project:   DefaultProject,
	}
}
