package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/lynisparse/pkg/engine"
	"github.com/user/lynisparse/pkg/export"
	"github.com/user/lynisparse/pkg/logger"
)

var exportCmd = &cobra.Command{
	Use:   "export <report>",
	Short: "Export a report as a PDF summary or Prometheus metrics",
	Long: `Export a parsed report (console output, lynis-report.dat, or a document
previously written by lynisparse) as a PDF summary, as a Prometheus textfile
for the node_exporter textfile collector, or both.`,
	Example: `  lynisparse export rapport_lynis_web01.txt --pdf web01.pdf
  lynisparse export web01_parsed.json --metrics /var/lib/node_exporter/lynis.prom`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pdfPath, _ := cmd.Flags().GetString("pdf")
		metricsPath, _ := cmd.Flags().GetString("metrics")
		if pdfPath == "" && metricsPath == "" {
			return errors.New("nothing to export: pass --pdf and/or --metrics")
		}

		report, err := engine.LoadReport(newParser(cmd), args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if pdfPath != "" {
			if err := export.WritePDF(report, pdfPath); err != nil {
				return fmt.Errorf("export pdf: %w", err)
			}
			logger.Debugf("wrote pdf summary to %s", pdfPath)
			fmt.Fprintln(w, dimStyle.Render("Wrote "+pdfPath))
		}
		if metricsPath != "" {
			if err := export.WriteMetrics(report, metricsPath); err != nil {
				return err
			}
			fmt.Fprintln(w, dimStyle.Render("Wrote "+metricsPath))
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("pdf", "", "Write a PDF summary to this path")
	exportCmd.Flags().String("metrics", "", "Write Prometheus text metrics to this path")
	exportCmd.Flags().IntP("workers", "w", 0, "Concurrent category extractors (default from config)")
	rootCmd.AddCommand(exportCmd)
}
