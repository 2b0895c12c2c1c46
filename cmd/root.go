package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/occupancy-sim/sim"
	"github.com/inference-sim/occupancy-sim/sim/report"
	"github.com/inference-sim/occupancy-sim/sim/store"
	"github.com/inference-sim/occupancy-sim/sim/telemetry"
	"github.com/inference-sim/occupancy-sim/sim/tenancy"
)

// runOptions carries everything a `run` needs, after flags and YAML are merged.
type runOptions struct {
	inputPath    string
	distribution sim.TenancyDistribution // inline distribution from YAML; overrides inputPath
	delimiter    string
	header       bool
	seed         int64
	warmUp       int64
	workers      int
	budget       sim.BudgetConfig
	outputPath   string
	format       string
	storePath    string
	metricsOut   string
}

var (
	// CLI flags for the run command
	opts       runOptions
	configPath string // YAML run config
	logLevel   string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "occupancy-sim",
	Short: "Monte Carlo simulator for cache occupancy under random tenancies",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Estimate the occupancy distribution for a tenancy distribution",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)

		var fc *RunFileConfig
		if configPath != "" {
			var err error
			fc, err = loadRunFileConfig(configPath)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			applyFileConfig(&opts, fc, cmd.Flags().Changed)
			logrus.Infof("Loaded run config from %s", configPath)
		}
		applyBudgetDefaults(&opts, fc, cmd.Flags().Changed)

		if err := executeRun(context.Background(), opts); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// setLogLevel parses and applies a logrus level, exiting on an invalid name.
func setLogLevel(name string) {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", name)
	}
	logrus.SetLevel(level)
}

// applyFileConfig copies YAML values into o for every flag the user did not
// set explicitly.
func applyFileConfig(o *runOptions, fc *RunFileConfig, changed func(string) bool) {
	if len(fc.Distribution) > 0 && !changed("input") {
		o.distribution = fc.Distribution
	}
	if fc.Input != "" && !changed("input") {
		o.inputPath = fc.Input
	}
	if fc.Delimiter != "" && !changed("delimiter") {
		o.delimiter = fc.Delimiter
	}
	if fc.Header != nil && !changed("header") {
		o.header = *fc.Header
	}
	if fc.Seed != nil && !changed("seed") {
		o.seed = *fc.Seed
	}
	if fc.WarmUp != nil && !changed("warmup") {
		o.warmUp = *fc.WarmUp
	}
	if fc.Workers != 0 && !changed("workers") {
		o.workers = fc.Workers
	}
	if fc.Budget.Policy != "" && !changed("budget") {
		o.budget.Policy = fc.Budget.Policy
	}
	if fc.Budget.Samples != 0 && !changed("samples") {
		o.budget.Samples = fc.Budget.Samples
	}
	if fc.Budget.Multiplier != 0 && !changed("multiplier") {
		o.budget.Multiplier = fc.Budget.Multiplier
	}
	if fc.Output.Path != "" && !changed("output") {
		o.outputPath = fc.Output.Path
	}
	if fc.Output.Format != "" && !changed("format") {
		o.format = fc.Output.Format
	}
	if fc.Store != "" && !changed("store") {
		o.storePath = fc.Store
	}
	if fc.MetricsOut != "" && !changed("metrics-out") {
		o.metricsOut = fc.MetricsOut
	}
}

// applyBudgetDefaults selects the fixed policy when a sample count was given
// (flag or YAML) without naming a policy. fc may be nil.
func applyBudgetDefaults(o *runOptions, fc *RunFileConfig, changed func(string) bool) {
	samplesSet := changed("samples")
	policySet := changed("budget")
	if fc != nil {
		samplesSet = samplesSet || fc.Budget.Samples != 0
		policySet = policySet || fc.Budget.Policy != ""
	}
	if samplesSet && !policySet {
		o.budget.Policy = sim.BudgetFixed
	}
}

// loadDistribution returns the inline distribution or parses the input file.
func loadDistribution(o runOptions) (sim.TenancyDistribution, error) {
	if len(o.distribution) > 0 {
		return o.distribution, nil
	}
	readOpts := tenancy.ReadOptions{HasHeader: o.header}
	if o.delimiter != "" {
		runes := []rune(o.delimiter)
		if len(runes) != 1 {
			return nil, fmt.Errorf("delimiter must be a single character, got %q", o.delimiter)
		}
		readOpts.Comma = runes[0]
	}
	table, err := tenancy.ReadFile(o.inputPath, readOpts)
	if err != nil {
		return nil, err
	}
	return table.Distribution, nil
}

// executeRun loads the distribution, runs the simulation and writes every
// configured output. Any error is fatal to the run.
func executeRun(ctx context.Context, o runOptions) error {
	if !report.IsValidFormat(o.format) {
		return fmt.Errorf("unknown output format %q; valid: %s, %s", o.format, report.FormatFraction, report.FormatPercent)
	}
	dist, err := loadDistribution(o)
	if err != nil {
		return err
	}
	if err := dist.Validate(); err != nil {
		return err
	}

	samples, err := o.budget.SampleBudget(dist.MaxDuration())
	if err != nil {
		return err
	}
	cfg := sim.RunConfig{Samples: samples, WarmUp: o.warmUp}
	workers := max(o.workers, 1)

	logrus.Infof("Starting simulation: %d buckets, max duration %d, samples=%d, warm-up=%d, workers=%d, seed=%d",
		len(dist), dist.MaxDuration(), samples, o.warmUp, workers, o.seed)
	startTime := time.Now()

	key := sim.NewSimulationKey(o.seed)
	var hist *sim.Histogram
	if workers == 1 {
		s, err := sim.NewSimulator(dist, sim.NewPartitionedRNG(key).ForSubsystem(sim.SubsystemTenancy), cfg)
		if err != nil {
			return err
		}
		hist = s.Run()
	} else {
		hist, err = sim.RunParallel(dist, key, cfg, workers)
		if err != nil {
			return err
		}
	}
	elapsed := time.Since(startTime)

	summary := sim.Summarize(hist)
	expected := dist.MeanTenancy()
	logrus.Infof("Simulation finished in %s: mean occupancy %.4f (expected %.4f), max %d",
		elapsed, summary.Mean, expected, summary.MaxObserved)
	if logrus.IsLevelEnabled(logrus.InfoLevel) {
		summary.Print(os.Stderr, expected)
	}

	if err := report.WriteHistogramFile(o.outputPath, hist, o.format); err != nil {
		return err
	}

	if o.storePath != "" {
		if err := saveRun(ctx, o, dist, hist, summary, expected, workers); err != nil {
			return err
		}
	}

	if o.metricsOut != "" {
		m := telemetry.NewRunMetrics()
		m.Observe(summary, expected, elapsed)
		if err := m.WriteTextfile(o.metricsOut); err != nil {
			return err
		}
	}
	return nil
}

func saveRun(ctx context.Context, o runOptions, dist sim.TenancyDistribution, hist *sim.Histogram,
	summary sim.Summary, expected float64, workers int) error {
	st, err := store.Open(o.storePath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logrus.Warnf("closing run store %s: %v", o.storePath, closeErr)
		}
	}()
	id, err := st.SaveRun(ctx, &store.RunRecord{
		Seed:         o.seed,
		Samples:      hist.Total(),
		WarmUp:       o.warmUp,
		Workers:      workers,
		MaxDuration:  dist.MaxDuration(),
		Mean:         summary.Mean,
		ExpectedMean: expected,
		Distribution: dist,
		Counts:       hist.Counts(),
	})
	if err != nil {
		return err
	}
	logrus.Infof("Saved run %d to %s", id, o.storePath)
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	runCmd.Flags().StringVar(&configPath, "config", "", "YAML run config; explicit flags override its values")

	// Input
	runCmd.Flags().StringVar(&opts.inputPath, "input", "-", "Tenancy distribution CSV (duration,weight); - for stdin")
	runCmd.Flags().StringVar(&opts.delimiter, "delimiter", ",", "Input field delimiter")
	runCmd.Flags().BoolVar(&opts.header, "header", true, "Input starts with a header row")

	// Simulation
	runCmd.Flags().Int64Var(&opts.seed, "seed", 42, "Seed for tenancy sampling")
	runCmd.Flags().Int64Var(&opts.warmUp, "warmup", sim.DefaultWarmUp, "Admissions performed before recording starts")
	runCmd.Flags().IntVar(&opts.workers, "workers", 1, "Independent simulators whose histograms are merged")
	runCmd.Flags().StringVar(&opts.budget.Policy, "budget", sim.BudgetScaled, "Sample budget policy (fixed, scaled); --samples alone implies fixed")
	runCmd.Flags().Int64Var(&opts.budget.Samples, "samples", 0, "Recorded samples for the fixed budget policy")
	runCmd.Flags().Int64Var(&opts.budget.Multiplier, "multiplier", sim.DefaultBudgetMultiplier, "Samples per unit of the largest duration for the scaled budget policy")

	// Output
	runCmd.Flags().StringVar(&opts.outputPath, "output", "-", "Histogram CSV destination; - for stdout")
	runCmd.Flags().StringVar(&opts.format, "format", report.FormatFraction, "Probability format (fraction, percent)")
	runCmd.Flags().StringVar(&opts.storePath, "store", "", "SQLite database recording finished runs (optional)")
	runCmd.Flags().StringVar(&opts.metricsOut, "metrics-out", "", "Prometheus textfile for run metrics (optional)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
