// Package config loads delimiter tables for the pair tracker from TOML or
// YAML files.
//
// A file lists the pairs to register, keyed by opening delimiter:
//
//	extend = true
//	disable = ["<"]
//	wrap_selection = true
//
//	[pairs]
//	"/*" = "*/"   # rejected: pairs are single runes
//	"|" = "|"
//
// With extend set, the pairs are merged onto the default table.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/oligo/autopair"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownFormat is returned for files whose format can not be told
	// from the extension.
	ErrUnknownFormat = errors.New("unknown config format")
	// ErrInvalidPair is returned when a delimiter is not exactly one rune.
	ErrInvalidPair = errors.New("invalid delimiter pair")
)

// Format is a config file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Config describes a delimiter table.
type Config struct {
	// Extend merges Pairs onto the default table instead of replacing it.
	Extend bool `toml:"extend" yaml:"extend"`
	// Pairs maps opening delimiters to closing ones.
	Pairs map[string]string `toml:"pairs" yaml:"pairs"`
	// Disable lists opening delimiters removed from the resulting table.
	Disable []string `toml:"disable" yaml:"disable"`
	// WrapSelection toggles wrapping selected text. Unset keeps the
	// tracker default.
	WrapSelection *bool `toml:"wrap_selection" yaml:"wrap_selection"`
}

// DefaultConfig returns a config that yields the default table.
func DefaultConfig() *Config {
	return &Config{Extend: true}
}

// FormatFromPath tells the format of a file from its extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes and validates a config in the given format.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := &Config{}

	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every delimiter is a single rune.
func (c *Config) Validate() error {
	for open, closing := range c.Pairs {
		if !singleRune(open) || !singleRune(closing) {
			return fmt.Errorf("%q -> %q: %w", open, closing, ErrInvalidPair)
		}
	}

	for _, open := range c.Disable {
		if !singleRune(open) {
			return fmt.Errorf("disable %q: %w", open, ErrInvalidPair)
		}
	}

	return nil
}

func singleRune(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && size == len(s)
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// Table builds the delimiter table described by the config.
func (c *Config) Table() (autopair.Table, error) {
	if err := c.Validate(); err != nil {
		return autopair.Table{}, err
	}

	pairs := make(map[rune]rune, len(c.Pairs))
	for open, closing := range c.Pairs {
		pairs[firstRune(open)] = firstRune(closing)
	}

	var merged map[rune]rune
	if c.Extend {
		merged = autopair.MergePairs(autopair.DefaultTable().Pairs(), pairs).Pairs()
	} else {
		merged = pairs
	}

	for _, open := range c.Disable {
		delete(merged, firstRune(open))
	}

	return autopair.NewTable(merged), nil
}

// Options returns the tracker options described by the config.
func (c *Config) Options() ([]autopair.Option, error) {
	table, err := c.Table()
	if err != nil {
		return nil, err
	}

	opts := []autopair.Option{autopair.WithTable(table)}
	if c.WrapSelection != nil {
		opts = append(opts, autopair.WithWrapSelection(*c.WrapSelection))
	}

	return opts, nil
}
