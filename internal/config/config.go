// Package config provides configuration loading and structs for the treerec server and CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the system-wide config location.
const DefaultPath = "/usr/local/etc/treerec/config.yaml"

// LocalPath is the config looked up in the working directory when DefaultPath is missing.
const LocalPath = "config.yaml"

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Search    SearchConfig    `yaml:"search"`
	Interest  InterestConfig  `yaml:"interest"`
	Synth     SynthConfig     `yaml:"synth"`
	Recommend RecommendConfig `yaml:"recommend"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Watch     WatchConfig     `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds the action journal location. ":memory:" keeps it in memory.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// SearchConfig selects the search index backend ("trie" or "bleve").
type SearchConfig struct {
	Backend string `yaml:"backend"`
}

// InterestConfig holds decay and per-action boost settings.
type InterestConfig struct {
	DecayRate      float64       `yaml:"decay_rate"`
	DecayAfter     time.Duration `yaml:"decay_after"`
	SearchBoost    float64       `yaml:"search_boost"`
	SocialBoost    float64       `yaml:"social_boost"`
	StreamingBoost float64       `yaml:"streaming_boost"`
	ViewBoost      float64       `yaml:"view_boost"`
}

// SynthConfig holds item synthesis settings.
type SynthConfig struct {
	PriceMin    int           `yaml:"price_min"`
	PriceSpread int           `yaml:"price_spread"`
	Latency     time.Duration `yaml:"latency"`
}

// RecommendConfig holds recommendation settings.
type RecommendConfig struct {
	DefaultLimit int `yaml:"default_limit"`
}

// TokenizerConfig holds extra stop words added to the built-in set.
type TokenizerConfig struct {
	ExtraStopWords []string `yaml:"extra_stop_words"`
}

// CatalogConfig controls the starting catalog.
type CatalogConfig struct {
	Seed  *bool    `yaml:"seed"`
	Files []string `yaml:"files"`
}

// SeedOrDefault returns whether to load the built-in catalog; defaults to true when unset.
func (c *CatalogConfig) SeedOrDefault() bool {
	if c.Seed != nil {
		return *c.Seed
	}
	return true
}

// WatchConfig holds catalog drop-folder watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	return &cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	for i := range cfg.Catalog.Files {
		cfg.Catalog.Files[i] = expandPath(cfg.Catalog.Files[i], configDir)
	}
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Resolve loads path when given. Otherwise it tries DefaultPath, then LocalPath, and falls
// back to Default. It returns the config and the file it came from ("" for built-in defaults).
func Resolve(path string) (*Config, string, error) {
	if path != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}
	for _, candidate := range []string{DefaultPath, LocalPath} {
		if _, err := os.Stat(candidate); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		cfg, err := Load(candidate)
		return cfg, candidate, err
	}
	return Default(), "", nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. ":memory:" is left as is.
func expandPath(path string, configDir string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
