package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/lynisparse/pkg/engine"
)

var remediateCmd = &cobra.Command{
	Use:   "remediate [report]",
	Short: "Generate fix plans for the findings of a report",
	Long: `Render a fix plan (fix, validation and rollback commands) for every warning
and suggestion that has a remediation template. Templates are YAML files keyed
by test id; their commands may reference {{.Hostname}}, {{.TestID}},
{{.Details}} and any variable passed with --var.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		list, _ := cmd.Flags().GetBool("list")
		if !list && len(args) == 0 {
			return errors.New("requires a report argument")
		}

		dir, _ := cmd.Flags().GetString("templates")
		if dir == "" {
			dir = cfg.RemediationDir
		}
		e := engine.NewRemediationEngine()
		if err := e.LoadTemplates(dir); err != nil {
			return err
		}

		if list {
			for _, t := range e.ListTemplates() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		}

		report, err := engine.LoadReport(newParser(cmd), args[0])
		if err != nil {
			return err
		}
		vars, _ := cmd.Flags().GetStringToString("var")
		steps, err := e.Plan(report, vars)
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(steps) == 0 {
			fmt.Fprintln(w, "No remediation templates match the findings of this report.")
			return nil
		}
		for _, s := range steps {
			fmt.Fprintln(w, s.String())
		}
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("%d fix plans generated.", len(steps))))
		return nil
	},
}

func init() {
	remediateCmd.Flags().StringP("templates", "t", "", "Directory of YAML remediation templates (default from config)")
	remediateCmd.Flags().StringToString("var", nil, "Template variable, e.g. --var SSHDConfig=/etc/ssh/sshd_config")
	remediateCmd.Flags().BoolP("list", "l", false, "List loaded templates and exit")
	remediateCmd.Flags().IntP("workers", "w", 0, "Concurrent category extractors (default from config)")
	rootCmd.AddCommand(remediateCmd)
}
