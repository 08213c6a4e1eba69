// Package config loads wcc's project configuration from .wcc.yaml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/unbound-force/wcc/internal/coverage"
	"github.com/unbound-force/wcc/internal/metrics"
	"github.com/unbound-force/wcc/internal/pipeline"
)

// FileName is the configuration file looked up in the project root.
const FileName = ".wcc.yaml"

// Config is the full wcc configuration.
type Config struct {
	// Thresholds are the user thresholds for classification.
	Thresholds metrics.UserThresholds `yaml:"thresholds"`

	// Coverage describes the coverage report.
	Coverage CoverageConfig `yaml:"coverage"`

	// Mode is "files" or "functions".
	Mode string `yaml:"mode"`

	// Sort is the sort key: "wcc", "crap" or "skunk".
	Sort string `yaml:"sort"`

	// Threads is the number of consumers. Zero picks the default.
	Threads int `yaml:"threads"`

	// Discovery controls which source files are analyzed.
	Discovery DiscoveryConfig `yaml:"discovery"`

	// SkipParseErrors routes files that cannot be parsed to the
	// ignored list instead of failing the run.
	SkipParseErrors bool `yaml:"skip_parse_errors"`

	// MaxComplexFiles fails the run when more files than this are
	// complex in the cyclomatic dimension. Negative disables it.
	MaxComplexFiles int `yaml:"max_complex_files"`
}

// CoverageConfig names the coverage report.
type CoverageConfig struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// DiscoveryConfig holds the file discovery filters. Patterns are
// slash-separated paths relative to the project root; a trailing
// "/**" matches a whole directory.
type DiscoveryConfig struct {
	Include         []string `yaml:"include"`
	Exclude         []string `yaml:"exclude"`
	IgnoreGenerated bool     `yaml:"ignore_generated"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Thresholds: metrics.DefaultUserThresholds(),
		Coverage: CoverageConfig{
			Format: string(coverage.FormatCoveralls),
		},
		Mode:    string(pipeline.ModeFiles),
		Sort:    string(metrics.SortWCC),
		Threads: 0,
		Discovery: DiscoveryConfig{
			Exclude:         []string{"vendor/**", "node_modules/**", "testdata/**"},
			IgnoreGenerated: true,
		},
		MaxComplexFiles: -1,
	}
}

// Load reads the configuration at path on top of DefaultConfig. Unknown
// keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadProject loads FileName from projectRoot, falling back to
// DefaultConfig when the file does not exist.
func LoadProject(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, FileName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return Load(path)
}

// Validate checks the enumerated and numeric fields.
func (c *Config) Validate() error {
	if _, err := coverage.ParseFormat(c.Coverage.Format); err != nil {
		return err
	}
	if _, err := pipeline.ParseMode(c.Mode); err != nil {
		return err
	}
	if _, err := metrics.ParseSortKey(c.Sort); err != nil {
		return err
	}
	if c.Threads < 0 {
		return fmt.Errorf("threads must not be negative, got %d", c.Threads)
	}
	t := c.Thresholds
	if t.WCC < 0 || t.WCC > 100 || t.Cyclomatic < 0 || t.Cognitive < 0 {
		return fmt.Errorf("invalid thresholds %s", t)
	}
	return nil
}
