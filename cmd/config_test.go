package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/occupancy-sim/sim"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRunFileConfig_Full(t *testing.T) {
	path := writeConfig(t, `
distribution:
  - {duration: 1, weight: 0.5}
  - {duration: 3, weight: 0.5}
header: false
seed: 7
warmup: 0
workers: 4
budget:
  policy: fixed
  samples: 2000
output:
  path: out.csv
  format: percent
store: runs.db
metrics_out: occupancy.prom
`)
	fc, err := loadRunFileConfig(path)
	require.NoError(t, err)

	assert.Equal(t, sim.TenancyDistribution{{Duration: 1, Weight: 0.5}, {Duration: 3, Weight: 0.5}}, fc.Distribution)
	require.NotNil(t, fc.Header)
	assert.False(t, *fc.Header)
	require.NotNil(t, fc.Seed)
	assert.Equal(t, int64(7), *fc.Seed)
	require.NotNil(t, fc.WarmUp, "explicit zero warm-up must survive decoding")
	assert.Equal(t, int64(0), *fc.WarmUp)
	assert.Equal(t, 4, fc.Workers)
	assert.Equal(t, sim.BudgetConfig{Policy: sim.BudgetFixed, Samples: 2000}, fc.Budget)
	assert.Equal(t, OutputConfig{Path: "out.csv", Format: "percent"}, fc.Output)
	assert.Equal(t, "runs.db", fc.Store)
	assert.Equal(t, "occupancy.prom", fc.MetricsOut)
}

func TestLoadRunFileConfig_RejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "input: tenancy.csv\nsaples: 10\n")
	_, err := loadRunFileConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saples")
}

func TestLoadRunFileConfig_MissingFile(t *testing.T) {
	_, err := loadRunFileConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestRunFileConfig_Validate(t *testing.T) {
	negative := int64(-1)
	tests := []struct {
		name    string
		cfg     RunFileConfig
		wantErr bool
	}{
		{"empty", RunFileConfig{}, false},
		{"input and distribution", RunFileConfig{Input: "a.csv", Distribution: sim.TenancyDistribution{{Duration: 1, Weight: 1}}}, true},
		{"long delimiter", RunFileConfig{Delimiter: "::"}, true},
		{"tab delimiter", RunFileConfig{Delimiter: "\t"}, false},
		{"negative warmup", RunFileConfig{WarmUp: &negative}, true},
		{"negative workers", RunFileConfig{Workers: -2}, true},
		{"bad format", RunFileConfig{Output: OutputConfig{Format: "ratio"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyFileConfig_ExplicitFlagsWin(t *testing.T) {
	seed := int64(99)
	header := false
	fc := &RunFileConfig{
		Input:   "from-yaml.csv",
		Header:  &header,
		Seed:    &seed,
		Workers: 8,
		Budget:  sim.BudgetConfig{Policy: sim.BudgetFixed, Samples: 500},
		Output:  OutputConfig{Path: "yaml-out.csv", Format: "percent"},
	}
	o := runOptions{
		inputPath:  "-",
		header:     true,
		seed:       42,
		workers:    1,
		budget:     sim.BudgetConfig{Policy: sim.BudgetScaled, Multiplier: 10},
		outputPath: "cli-out.csv",
		format:     "fraction",
	}
	explicit := map[string]bool{"seed": true, "output": true}
	applyFileConfig(&o, fc, func(name string) bool { return explicit[name] })

	assert.Equal(t, "from-yaml.csv", o.inputPath)
	assert.False(t, o.header)
	assert.Equal(t, int64(42), o.seed, "explicit --seed wins")
	assert.Equal(t, 8, o.workers)
	assert.Equal(t, sim.BudgetConfig{Policy: sim.BudgetFixed, Samples: 500, Multiplier: 10}, o.budget)
	assert.Equal(t, "cli-out.csv", o.outputPath, "explicit --output wins")
	assert.Equal(t, "percent", o.format)
}

func TestApplyFileConfig_InlineDistribution(t *testing.T) {
	fc := &RunFileConfig{Distribution: sim.TenancyDistribution{{Duration: 2, Weight: 1}}}
	o := runOptions{inputPath: "-"}
	applyFileConfig(&o, fc, func(string) bool { return false })
	assert.Len(t, o.distribution, 1)

	o = runOptions{inputPath: "cli.csv"}
	applyFileConfig(&o, fc, func(name string) bool { return name == "input" })
	assert.Empty(t, o.distribution, "explicit --input replaces the inline distribution")
}

func TestApplyBudgetDefaults(t *testing.T) {
	flags := func(names ...string) func(string) bool {
		set := make(map[string]bool)
		for _, n := range names {
			set[n] = true
		}
		return func(name string) bool { return set[name] }
	}
	tests := []struct {
		name    string
		fc      *RunFileConfig
		changed func(string) bool
		want    string
	}{
		{"nothing set keeps the default", nil, flags(), sim.BudgetScaled},
		{"samples flag implies fixed", nil, flags("samples"), sim.BudgetFixed},
		{"explicit policy flag wins", nil, flags("samples", "budget"), sim.BudgetScaled},
		{"yaml samples imply fixed", &RunFileConfig{Budget: sim.BudgetConfig{Samples: 50}}, flags(), sim.BudgetFixed},
		{"yaml policy wins", &RunFileConfig{Budget: sim.BudgetConfig{Policy: sim.BudgetScaled, Samples: 50}}, flags(), sim.BudgetScaled},
		{"multiplier alone keeps scaled", nil, flags("multiplier"), sim.BudgetScaled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := runOptions{budget: sim.BudgetConfig{Policy: sim.BudgetScaled}}
			applyBudgetDefaults(&o, tt.fc, tt.changed)
			assert.Equal(t, tt.want, o.budget.Policy)
		})
	}
}
