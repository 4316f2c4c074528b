// Package config loads tally settings from ~/.config/tally/config.toml.
// Command-line flags override anything set here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/chriscorrea/tally/internal/chunk"
	"github.com/chriscorrea/tally/internal/pattern"
	"github.com/chriscorrea/tally/internal/preview"
)

// DefaultTextLimit is the chunk limit for in-memory text, in bytes.
const DefaultTextLimit = 100000

// Config holds user settings.
type Config struct {
	Pattern       string   `toml:"pattern"`
	ChunkSize     int      `toml:"chunk_size"`
	TextLimit     int      `toml:"text_limit"`
	PreviewLength int      `toml:"preview_length"`
	Fold          string   `toml:"fold"`
	Measures      []string `toml:"measures"`
	MatchTimeout  string   `toml:"match_timeout"` // Go duration; "0" disables
	JSON          bool     `toml:"json"`
	Readable      Readable `toml:"readable"`
}

// Readable controls HTML extraction.
type Readable struct {
	Enabled    bool   `toml:"enabled"`
	Selector   string `toml:"selector"`
	IncludeAll bool   `toml:"include_all"`
	Markdown   bool   `toml:"markdown"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Pattern:       pattern.DefaultExpr,
		ChunkSize:     chunk.DefaultChunkSize,
		TextLimit:     DefaultTextLimit,
		PreviewLength: preview.DefaultLength,
		Fold:          "lower",
		MatchTimeout:  pattern.DefaultMatchTimeout.String(),
	}
}

// DefaultPath returns the path to the user config file.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tally", "config.toml"), nil
}

// Load reads the config at path over the defaults. An empty path means DefaultPath; a missing
// file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil // no home dir: defaults only
		}
		path = p
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings that cannot be used.
func (c Config) Validate() error {
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk_size must not be negative, got %d", c.ChunkSize)
	}
	if c.TextLimit < 0 {
		return fmt.Errorf("text_limit must not be negative, got %d", c.TextLimit)
	}
	if c.PreviewLength < 0 {
		return fmt.Errorf("preview_length must not be negative, got %d", c.PreviewLength)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// Timeout parses MatchTimeout. An empty value means pattern.DefaultMatchTimeout.
func (c Config) Timeout() (time.Duration, error) {
	if c.MatchTimeout == "" {
		return pattern.DefaultMatchTimeout, nil
	}
	d, err := time.ParseDuration(c.MatchTimeout)
	if err != nil {
		return 0, fmt.Errorf("match_timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("match_timeout must not be negative, got %s", d)
	}
	return d, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create %s: %w", path, err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
