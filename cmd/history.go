package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/lynisparse/pkg/config"
	"github.com/user/lynisparse/pkg/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously recorded parses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")
		if dbPath == "" {
			dbPath = cfg.HistoryDB
		}
		if dbPath == "" {
			p, err := config.DefaultHistoryPath()
			if err != nil {
				return err
			}
			dbPath = p
		}
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := history.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		entries, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No history recorded yet.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "PARSED AT\tHOST\tRISK\tINDEX\tWARNINGS\tSUGGESTIONS\tCRITICAL\tSOURCE")
		for _, e := range entries {
			index := "-"
			if e.HardeningIndex != nil {
				index = fmt.Sprint(*e.HardeningIndex)
			}
			host := e.Hostname
			if host == "" {
				host = "-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
				e.ParsedAt.Local().Format(time.DateTime), host, e.RiskLevel, index,
				e.Warnings, e.Suggestions, e.CriticalIssues, e.Source)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().String("db", "", "History database (default from config, or ~/.lynisparse/history.db)")
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum entries to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
