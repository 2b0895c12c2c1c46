package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/occupancy-sim/sim/report"
	"github.com/inference-sim/occupancy-sim/sim/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect runs recorded with --store",
}

// --- occupancy-sim runs list ---

var (
	runsStorePath string
	runsLimit     int
)

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)
		st, err := store.OpenExisting(runsStorePath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer func() { _ = st.Close() }()
		runs, err := st.ListRuns(context.Background(), runsLimit)
		if err != nil {
			logrus.Fatalf("Listing runs failed: %v", err)
		}
		if err := writeRunTable(os.Stdout, runs); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// --- occupancy-sim runs show ---

var (
	showRunID  int64
	showFormat string
)

var runsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the histogram of a recorded run",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)
		st, err := store.OpenExisting(runsStorePath)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		defer func() { _ = st.Close() }()
		rec, err := st.GetRun(context.Background(), showRunID)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		hist, err := rec.Histogram()
		if err != nil {
			logrus.Fatalf("run %d: %v", rec.ID, err)
		}
		if err := report.WriteHistogram(os.Stdout, hist, showFormat); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

// writeRunTable prints one aligned row per run.
func writeRunTable(w io.Writer, runs []*store.RunRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSEED\tSAMPLES\tWORKERS\tMAX_DURATION\tMEAN\tEXPECTED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%.4f\t%.4f\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.Seed, r.Samples, r.Workers, r.MaxDuration, r.Mean, r.ExpectedMean)
	}
	return tw.Flush()
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsStorePath, "store", "occupancy-sim.db", "SQLite run database")

	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list (0 = all)")

	runsShowCmd.Flags().Int64Var(&showRunID, "id", 0, "Run id")
	runsShowCmd.Flags().StringVar(&showFormat, "format", report.FormatFraction, "Probability format (fraction, percent)")
	_ = runsShowCmd.MarkFlagRequired("id")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	rootCmd.AddCommand(runsCmd)
}
