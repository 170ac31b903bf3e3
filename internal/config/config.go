// Package config provides configuration loading and structs for minigrep.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hyperjump/minigrep/internal/models"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug" toml:"debug"`
	Search  SearchConfig  `yaml:"search" toml:"search"`
	Storage StorageConfig `yaml:"storage" toml:"storage"`
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Watch   WatchConfig   `yaml:"watch" toml:"watch"`
}

// SearchConfig holds the defaults applied to searches that do not override them.
type SearchConfig struct {
	Mode                  string `yaml:"mode" toml:"mode"`
	Pattern               string `yaml:"pattern" toml:"pattern"`
	ShowLineNumbers       bool   `yaml:"show_line_numbers" toml:"show_line_numbers"`
	MaxResults            int    `yaml:"max_results" toml:"max_results"`
	TopWords              int    `yaml:"top_words" toml:"top_words"`
	Stats                 bool   `yaml:"stats" toml:"stats"`
	Suggestions           *bool  `yaml:"suggestions" toml:"suggestions"`
	MaxSuggestionDistance int    `yaml:"max_suggestion_distance" toml:"max_suggestion_distance"`
	MaxSuggestions        int    `yaml:"max_suggestions" toml:"max_suggestions"`
	LenientEncoding       bool   `yaml:"lenient_encoding" toml:"lenient_encoding"`
}

// SuggestionsEnabled returns whether "did you mean" suggestions are on; defaults to true when unset.
func (s *SearchConfig) SuggestionsEnabled() bool {
	if s.Suggestions != nil {
		return *s.Suggestions
	}
	return true
}

// StorageConfig holds the run history database settings.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path" toml:"database_path"`
	History      *bool  `yaml:"history" toml:"history"`
}

// HistoryEnabled returns whether runs are recorded; defaults to true when unset.
func (s *StorageConfig) HistoryEnabled() bool {
	if s.History != nil {
		return *s.History
	}
	return true
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `yaml:"host" toml:"host"`
	Port         int    `yaml:"port" toml:"port"`
	DocumentRoot string `yaml:"document_root" toml:"document_root"`
}

// Addr returns host:port for http.Server.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// WatchConfig holds file watch settings. Patterns and Recursive apply when a
// directory is watched.
type WatchConfig struct {
	DebounceMs int      `yaml:"debounce_ms" toml:"debounce_ms"`
	Patterns   []string `yaml:"patterns" toml:"patterns"`
	Recursive  *bool    `yaml:"recursive" toml:"recursive"`
}

// RecursiveEnabled returns whether subdirectories are watched; defaults to true when unset.
func (w *WatchConfig) RecursiveEnabled() bool {
	if w.Recursive == nil {
		return true
	}
	return *w.Recursive
}

// Debounce returns the debounce interval as a duration.
func (w *WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMs) * time.Millisecond
}

// Default returns a config with all defaults applied and paths expanded, for use
// when no config file is given.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, ".")
	return &cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Files ending in .toml are parsed as TOML; everything else as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if isTOML(path) {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if _, err := models.ParseModeKind(cfg.Search.Mode); err != nil {
		return nil, fmt.Errorf("invalid search.mode: %w", err)
	}

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Server.DocumentRoot != "" {
		cfg.Server.DocumentRoot = expandPath(cfg.Server.DocumentRoot, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path, as TOML for .toml files and YAML otherwise.
func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		data, err = toml.Marshal(cfg)
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// SearchFor builds the search request for query and path from the configured defaults.
// Callers override individual fields for flags given explicitly.
func (c *Config) SearchFor(query, path string) (*models.Config, error) {
	kind, err := models.ParseModeKind(c.Search.Mode)
	if err != nil {
		return nil, err
	}
	mode := models.SearchMode{Kind: kind}
	if kind == models.ModePrefixWildcard {
		mode.Pattern = c.Search.Pattern
	}
	cfg := &models.Config{
		Query:           query,
		DocumentPath:    path,
		Mode:            mode,
		ShowLineNumbers: c.Search.ShowLineNumbers,
	}
	if c.Search.MaxResults > 0 {
		cfg.MaxResults = models.IntPtr(c.Search.MaxResults)
	}
	return cfg, nil
}

// ModeFromEnv returns CaseInsensitive when IGNORE_CASE is set, even to an empty value,
// and CaseSensitive otherwise. lookupEnv has the shape of os.LookupEnv.
func ModeFromEnv(lookupEnv func(string) (string, bool)) models.SearchMode {
	if _, ok := lookupEnv("IGNORE_CASE"); ok {
		return models.CaseInsensitive()
	}
	return models.CaseSensitive()
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
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
