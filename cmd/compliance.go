package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/lynisparse/pkg/engine"
)

var complianceCmd = &cobra.Command{
	Use:   "compliance <report>",
	Short: "Check a report against compliance profiles",
	Long: `Evaluate the warnings and suggestions of a report against YAML compliance
profiles (CIS, HIPAA, PCI-DSS, ...). A control fails when the report carries
any of its test ids. Without --standard every loaded profile is evaluated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("profiles")
		if dir == "" {
			dir = cfg.ProfilesDir
		}
		e := engine.NewEngine()
		if err := e.LoadProfiles(dir); err != nil {
			return err
		}
		if len(e.Profiles) == 0 {
			return fmt.Errorf("no compliance profiles found in %s", dir)
		}

		report, err := engine.LoadReport(newParser(cmd), args[0])
		if err != nil {
			return err
		}

		standards := e.ListStandards()
		if s, _ := cmd.Flags().GetString("standard"); s != "" {
			standards = []string{s}
		}

		w := cmd.OutOrStdout()
		failed := 0
		for _, s := range standards {
			ev, err := e.Evaluate(s, report)
			if err != nil {
				return err
			}
			printEvaluation(w, ev)
			failed += ev.Failed
		}
		if fail, _ := cmd.Flags().GetBool("fail-on-violation"); fail && failed > 0 {
			return errors.New("compliance violations found")
		}
		return nil
	},
}

func printEvaluation(w io.Writer, ev engine.Evaluation) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Compliance Check Results for %s:", ev.Standard)))
	fmt.Fprintln(w)
	for _, r := range ev.Results {
		fmt.Fprintf(w, "[%s] %s: %s\n", renderStatus(r.Status), r.ID, r.Name)
		if r.Status == engine.StatusFail {
			fmt.Fprintf(w, "  Findings: %s\n", strings.Join(r.Matched, ", "))
			if r.Remediation != "" {
				fmt.Fprintf(w, "  Remediation: %s\n", r.Remediation)
			}
		}
	}
	fmt.Fprintf(w, "\nSummary: %d Checks, %d Passed, %d Failed\n\n", len(ev.Results), ev.Passed, ev.Failed)
}

func init() {
	complianceCmd.Flags().StringP("profiles", "p", "", "Directory of YAML compliance profiles (default from config)")
	complianceCmd.Flags().StringP("standard", "s", "", "Evaluate only this standard")
	complianceCmd.Flags().Bool("fail-on-violation", false, "Exit non-zero when any control fails")
	complianceCmd.Flags().IntP("workers", "w", 0, "Concurrent category extractors (default from config)")
	rootCmd.AddCommand(complianceCmd)
}
