// Package config loads the optional .tregex.yaml project file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jward/tregex"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".tregex.yaml"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Macro rewrites a token of every compiled pattern, e.g. @NOUN to /^NN/.
type Macro struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Config is the project configuration. Zero values mean "use the default".
type Config struct {
	// Macros are applied in order.
	Macros []Macro `yaml:"macros,omitempty"`
	// AnnotationChars overrides the characters that start functional
	// annotations on labels. An empty string disables basic categories.
	AnnotationChars *string `yaml:"annotation_chars,omitempty"`
	// HeadRules names an embedded head-rule script ("collins", "go") or a
	// path to a .risor file.
	HeadRules string `yaml:"head_rules,omitempty"`
	DB        string `yaml:"db,omitempty"`
	Format    string `yaml:"format,omitempty"`
	NamedOnly bool   `yaml:"named_only,omitempty"`
	Workers   int    `yaml:"workers,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		DB:     ".tregex.db",
		Format: FormatText,
	}
}

// Load reads the file at path over the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads the explicit path when one is given, otherwise FileName in
// dir if it exists, otherwise the defaults. It returns the path it read, or
// "" for the defaults.
func Resolve(explicit, dir string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), "", nil
		}
		return nil, "", fmt.Errorf("config: %w", err)
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Validate reports settings no component could honor.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("%w: format must be %q or %q, got %q", tregex.ErrConfig, FormatText, FormatJSON, c.Format)
	}
	for i, m := range c.Macros {
		if m.From == "" || m.To == "" {
			return fmt.Errorf("%w: macro %d needs both from and to", tregex.ErrConfig, i)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", tregex.ErrConfig)
	}
	return nil
}

// BasicCategory returns the basic category function the configuration
// selects, or nil when basic categories are disabled.
func (c *Config) BasicCategory() tregex.BasicCategoryFunc {
	if c.AnnotationChars == nil {
		return tregex.PennBasicCategory
	}
	if *c.AnnotationChars == "" {
		return nil
	}
	return tregex.NewBasicCategory(*c.AnnotationChars)
}

// CompilerOptions turns the pattern-related settings into compiler options.
func (c *Config) CompilerOptions() []tregex.Option {
	opts := []tregex.Option{tregex.WithBasicCategory(c.BasicCategory())}
	for _, m := range c.Macros {
		opts = append(opts, tregex.WithMacro(m.From, m.To))
	}
	return opts
}

// Write saves cfg as YAML at path.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
