// Package config loads the tag vocabulary, entity allow-list and runtime
// settings for a validation run.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/adammathes/fntverify/pkg/normalize"
	"github.com/adammathes/fntverify/pkg/tags"
)

// EnvPrefix prefixes every environment override, e.g. FNTVERIFY_JOBS or
// FNTVERIFY_LOG_LEVEL.
const EnvPrefix = "FNTVERIFY"

// Config is read-only once loaded and may be shared between workers.
type Config struct {
	SupportedTags    []string   `mapstructure:"supported_tags" yaml:"supported_tags"`
	NonClosingTags   []string   `mapstructure:"non_closing_tags" yaml:"non_closing_tags"`
	CustomEntities   []string   `mapstructure:"custom_entities" yaml:"custom_entities"`
	Relationships    tags.Rules `mapstructure:"relationships" yaml:"relationships"`
	PageMarker       string     `mapstructure:"page_marker" yaml:"page_marker"`
	FootnotePrefixes []string   `mapstructure:"footnote_prefixes" yaml:"footnote_prefixes"`
	Extensions       []string   `mapstructure:"extensions" yaml:"extensions"`
	Jobs             int        `mapstructure:"jobs" yaml:"jobs"`
	Log              LogConfig  `mapstructure:"log" yaml:"log"`
	Color            string     `mapstructure:"color" yaml:"color"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the built-in dialect vocabulary.
func Default() *Config {
	return &Config{
		SupportedTags: []string{
			"FN", "fnt", "fnr", "fmt", "Page",
			"p", "b", "i", "u", "sup", "sub", "sc",
			"h1", "h2", "h3", "h4",
			"title", "chapter", "section", "para", "note", "quote",
			"table", "row", "cell", "list", "item",
			"br", "hr", "img",
		},
		NonClosingTags: []string{"Page", "fnr*", "fnt*", "fmt*", "br", "hr"},
		CustomEntities: []string{},
		Relationships: tags.Rules{
			"fnt": {RequiredParent: "FN"},
			"fnr": {ForbiddenParent: "FN"},
		},
		PageMarker:       normalize.DefaultPageMarker,
		FootnotePrefixes: append([]string(nil), normalize.DefaultFootnotePrefixes...),
		Extensions:       []string{".fnt", ".xml"},
		Jobs:             0,
		Log:              LogConfig{Level: "warn", Format: "console"},
		Color:            "auto",
	}
}

// Load merges the YAML file at path and FNTVERIFY_* environment variables
// over the defaults. An empty path loads defaults and environment only.
// Lists given in the file replace the default lists; relationship rules
// are merged per tag.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found", path)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("supported_tags", d.SupportedTags)
	v.SetDefault("non_closing_tags", d.NonClosingTags)
	v.SetDefault("custom_entities", d.CustomEntities)
	for name, rule := range d.Relationships {
		key := "relationships." + strings.ToLower(name)
		if rule.RequiredParent != "" {
			v.SetDefault(key+".required_parent", rule.RequiredParent)
		}
		if rule.ForbiddenParent != "" {
			v.SetDefault(key+".forbidden_parent", rule.ForbiddenParent)
		}
	}
	v.SetDefault("page_marker", d.PageMarker)
	v.SetDefault("footnote_prefixes", d.FootnotePrefixes)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("color", d.Color)
}

// Validate checks patterns, rules and enumerated settings.
func (c *Config) Validate() error {
	if _, err := c.Patterns(); err != nil {
		return err
	}
	for name, rule := range c.Relationships {
		if rule.RequiredParent == "" && rule.ForbiddenParent == "" {
			return fmt.Errorf("relationship rule for <%s> names neither required_parent nor forbidden_parent", name)
		}
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid extension %q (must start with a dot)", ext)
		}
	}
	if c.Jobs < 0 {
		return fmt.Errorf("invalid jobs: %d (must be 0 or more)", c.Jobs)
	}
	switch c.Log.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s (must be console or json)", c.Log.Format)
	}
	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color mode: %s (must be auto, always or never)", c.Color)
	}
	return nil
}

// Patterns compiles NonClosingTags.
func (c *Config) Patterns() (tags.PatternSet, error) {
	set, err := tags.ParsePatterns(c.NonClosingTags)
	if err != nil {
		return nil, fmt.Errorf("non_closing_tags: %w", err)
	}
	return set, nil
}

// WriteYAML writes c in the same shape Load reads.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
