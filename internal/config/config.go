// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

// Package config loads and validates the rawfetch configuration file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "config.toml"

// DefaultPattern selects the files relocated out of a downloaded dataset.
const DefaultPattern = "*.csv"

// Conflict policies for files that already exist at the destination.
const (
	ConflictOverwrite = "overwrite"
	ConflictSkip      = "skip"
	ConflictFail      = "fail"
)

// Config is the typed form of config.toml.
type Config struct {
	Raw Raw `toml:"raw" yaml:"raw" json:"raw"`
	Hub Hub `toml:"hub,omitempty" yaml:"hub,omitempty" json:"hub,omitempty"`
}

// Raw describes where the raw dataset lands.
type Raw struct {
	// Path is the destination directory for relocated files.
	Path string `toml:"path" yaml:"path" json:"path"`

	// Pattern is the glob matched against file names in the download.
	Pattern string `toml:"pattern,omitempty" yaml:"pattern,omitempty" json:"pattern,omitempty"`

	// OnConflict is one of overwrite, skip or fail.
	OnConflict string `toml:"on_conflict,omitempty" yaml:"on_conflict,omitempty" json:"on_conflict,omitempty"`

	// Files lists dataset records; only the first is fetched.
	Files []File `toml:"files" yaml:"files" json:"files"`
}

// File is one dataset record under raw.files.
type File struct {
	Name string `toml:"name" yaml:"name" json:"name"`
}

// Hub holds optional overrides for the dataset hub client.
type Hub struct {
	Endpoint string `toml:"endpoint,omitempty" yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	CacheDir string `toml:"cache_dir,omitempty" yaml:"cache_dir,omitempty" json:"cache_dir,omitempty"`
}

// Dataset returns the identifier of the dataset to fetch.
func (c *Config) Dataset() string {
	if len(c.Raw.Files) == 0 {
		return ""
	}
	return c.Raw.Files[0].Name
}

// Default returns the configuration written by "config init".
func Default() *Config {
	return &Config{
		Raw: Raw{
			Path:       "data/raw",
			Pattern:    DefaultPattern,
			OnConflict: ConflictOverwrite,
			Files:      []File{{Name: "owner/dataset"}},
		},
	}
}

// ParseError is returned when the file is not valid in its format.
type ParseError struct {
	Path   string
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s config file %s: %v", e.Format, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValidationError lists every problem found in an otherwise parseable
// configuration.
type ValidationError struct {
	Path     string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Path, strings.Join(e.Problems, "; "))
}

// Load reads the configuration at path. The format follows the file
// extension: .yaml/.yml and .json are accepted, anything else is TOML.
//
// A missing file yields an error matching fs.ErrNotExist. No partial
// configuration is returned on failure.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := &Config{}
	format := formatOf(path)
	if err := decode(f, format, cfg); err != nil {
		return nil, &ParseError{Path: path, Format: format, Err: err}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Path = path
		}
		return nil, err
	}
	return cfg, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return "toml"
	}
}

func decode(r io.Reader, format string, cfg *Config) error {
	switch format {
	case "yaml":
		err := yaml.NewDecoder(r).Decode(cfg)
		if errors.Is(err, io.EOF) {
			return nil // empty document; validation reports what is missing
		}
		return err
	case "json":
		return json.NewDecoder(r).Decode(cfg)
	default:
		_, err := toml.NewDecoder(r).Decode(cfg)
		return err
	}
}

func (c *Config) applyDefaults() {
	if c.Raw.Pattern == "" {
		c.Raw.Pattern = DefaultPattern
	}
	if c.Raw.OnConflict == "" {
		c.Raw.OnConflict = ConflictOverwrite
	}
}

// Validate checks required fields and enumerations.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Raw.Path) == "" {
		problems = append(problems, "raw.path is required")
	}
	if len(c.Raw.Files) == 0 {
		problems = append(problems, "raw.files must list at least one dataset")
	} else if strings.TrimSpace(c.Raw.Files[0].Name) == "" {
		problems = append(problems, "raw.files[0].name is required")
	}
	if _, err := filepath.Match(c.Raw.Pattern, ""); err != nil {
		problems = append(problems, fmt.Sprintf("raw.pattern %q: %v", c.Raw.Pattern, err))
	}
	switch c.Raw.OnConflict {
	case ConflictOverwrite, ConflictSkip, ConflictFail:
	default:
		problems = append(problems, fmt.Sprintf("raw.on_conflict %q: must be overwrite, skip or fail", c.Raw.OnConflict))
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Write encodes cfg to path in the format implied by its extension.
func Write(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	switch formatOf(path) {
	case "yaml":
		data, err = yaml.Marshal(cfg)
	case "json":
		data, err = json.MarshalIndent(cfg, "", "  ")
	default:
		var sb strings.Builder
		err = toml.NewEncoder(&sb).Encode(cfg)
		data = []byte(sb.String())
	}
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
