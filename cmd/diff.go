package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/user/lynisparse/pkg/engine"
)

// maxUnchanged bounds how many unchanged findings are listed.
const maxUnchanged = 10

var diffCmd = &cobra.Command{
	Use:   "diff <baseline> <current>",
	Short: "Compare two reports of the same host",
	Long: `Compare a baseline report with a current one and list NEW, FIXED and
UNCHANGED warnings and suggestions. Either side may be raw audit output, a
lynis-report.dat file, or a document previously written by lynisparse.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newParser(cmd)
		baseline, err := engine.LoadReport(p, args[0])
		if err != nil {
			return err
		}
		current, err := engine.LoadReport(p, args[1])
		if err != nil {
			return err
		}
		printDiff(cmd.OutOrStdout(), args[0], engine.CompareSnapshot(baseline, current))
		return nil
	},
}

func printDiff(w io.Writer, baselinePath string, diff engine.SnapshotDiff) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Snapshot Comparison (vs %s):", baselinePath)))
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Risk level: %s (%d) -> %s (%d)\n\n",
		renderRisk(diff.Baseline.RiskLevel), diff.Baseline.HardeningIndex,
		renderRisk(diff.Current.RiskLevel), diff.Current.HardeningIndex)

	fmt.Fprintf(w, "NEW RISKS: %d\n", len(diff.New))
	for _, f := range diff.New {
		fmt.Fprintf(w, "  [+] %s %s - %s\n", f.Kind, f.TestID, f.Description)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "FIXED RISKS: %d\n", len(diff.Fixed))
	for _, f := range diff.Fixed {
		fmt.Fprintf(w, "  [-] %s %s - %s\n", f.Kind, f.TestID, f.Description)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "UNCHANGED RISKS: %d\n", len(diff.Unchanged))
	for i, f := range diff.Unchanged {
		if i == maxUnchanged {
			fmt.Fprintf(w, "  ... and %d more.\n", len(diff.Unchanged)-maxUnchanged)
			break
		}
		fmt.Fprintf(w, "  [=] %s %s - %s\n", f.Kind, f.TestID, f.Description)
	}
}

func init() {
	diffCmd.Flags().IntP("workers", "w", 0, "Concurrent category extractors (default from config)")
	rootCmd.AddCommand(diffCmd)
}
