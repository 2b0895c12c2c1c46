package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/occupancy-sim/sim"
	"github.com/inference-sim/occupancy-sim/sim/report"
)

// RunFileConfig is the YAML form of a run. Every field mirrors a `run` flag;
// flags set explicitly on the command line take precedence.
type RunFileConfig struct {
	Input        string                  `yaml:"input,omitempty"`
	Distribution sim.TenancyDistribution `yaml:"distribution,omitempty"` // inline alternative to input
	Delimiter    string                  `yaml:"delimiter,omitempty"`
	Header       *bool                   `yaml:"header,omitempty"`
	Seed         *int64                  `yaml:"seed,omitempty"`
	WarmUp       *int64                  `yaml:"warmup,omitempty"`
	Workers      int                     `yaml:"workers,omitempty"`
	Budget       sim.BudgetConfig        `yaml:"budget,omitempty"`
	Output       OutputConfig            `yaml:"output,omitempty"`
	Store        string                  `yaml:"store,omitempty"`
	MetricsOut   string                  `yaml:"metrics_out,omitempty"`
}

// OutputConfig selects where and how the histogram is written.
type OutputConfig struct {
	Path   string `yaml:"path,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// loadRunFileConfig parses a YAML run config.
// Uses strict field checking: unknown keys (typos) are rejected.
func loadRunFileConfig(path string) (*RunFileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	var cfg RunFileConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing run config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects contradictory or out-of-range settings.
func (c *RunFileConfig) Validate() error {
	if c.Input != "" && len(c.Distribution) > 0 {
		return fmt.Errorf("run config: set either input or distribution, not both")
	}
	if len([]rune(c.Delimiter)) > 1 {
		return fmt.Errorf("run config: delimiter must be a single character, got %q", c.Delimiter)
	}
	if c.WarmUp != nil && *c.WarmUp < 0 {
		return fmt.Errorf("run config: warmup must be non-negative, got %d", *c.WarmUp)
	}
	if c.Workers < 0 {
		return fmt.Errorf("run config: workers must be non-negative, got %d", c.Workers)
	}
	if c.Output.Format != "" && !report.IsValidFormat(c.Output.Format) {
		return fmt.Errorf("run config: unknown output format %q", c.Output.Format)
	}
	return nil
}
