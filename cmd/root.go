package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/user/lynisparse/pkg/config"
	"github.com/user/lynisparse/pkg/history"
	"github.com/user/lynisparse/pkg/logger"
	"github.com/user/lynisparse/pkg/lynis"
)

var rootCmd = &cobra.Command{
	Use:   "lynisparse <report> [output]",
	Short: "Parse Lynis audit reports into structured JSON or YAML",
	Long: `lynisparse turns the console output of a Lynis audit run (or its
lynis-report.dat file) into a structured document with per-category
results, warnings, suggestions and an overall risk level.

If output is omitted the document is written to <report>_parsed.json.`,
	Args:              cobra.RangeArgs(1, 2),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runParse,
}

var (
	DebugMode bool
	NoColor   bool
	cfg       *config.Config
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&NoColor, "no-color", false, "Disable colored output")
	rootCmd.Flags().StringP("format", "f", "", "Output format: json or yaml (default from config, or output extension)")
	rootCmd.Flags().IntP("indent", "i", -1, "Spaces per indentation level (default from config)")
	rootCmd.Flags().String("history", "", "Record the result in this SQLite history database")
	rootCmd.Flags().IntP("workers", "w", 0, "Concurrent category extractors (default from config)")
}

func setup(cmd *cobra.Command, args []string) error {
	logger.DebugEnabled = DebugMode
	if NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	c, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c
	return nil
}

// newParser applies the --workers flag over the configured default.
func newParser(cmd *cobra.Command) *lynis.Parser {
	p := lynis.NewParser()
	p.Workers = cfg.Workers
	if cmd.Flags().Lookup("workers") != nil {
		if w, _ := cmd.Flags().GetInt("workers"); w > 0 {
			p.Workers = w
		}
	}
	return p
}

// DefaultOutputPath derives "<base>_parsed<ext>" from the input file name,
// placed in dir (the current directory when empty).
func DefaultOutputPath(input, dir string, format lynis.Format) string {
	base := filepath.Base(input)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + "_parsed" + format.Extension()
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func encodeOptions(cmd *cobra.Command, output string) (lynis.EncodeOptions, error) {
	format := cfg.Format
	if output != "" {
		format = string(lynis.FormatForPath(output))
	}
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		format = f
	}
	parsed, err := lynis.ParseFormat(format)
	if err != nil {
		return lynis.EncodeOptions{}, err
	}

	indent := cfg.Indent
	if n, _ := cmd.Flags().GetInt("indent"); n >= 0 {
		indent = n
	}
	return lynis.EncodeOptions{Format: parsed, Indent: indent}, nil
}

func runParse(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := ""
	if len(args) == 2 {
		output = args[1]
	}

	opts, err := encodeOptions(cmd, output)
	if err != nil {
		return err
	}

	report, err := newParser(cmd).ParseFile(input)
	if err != nil {
		return err
	}

	if output == "" {
		output = DefaultOutputPath(input, cfg.OutputDir, opts.Format)
	}
	data, err := lynis.Marshal(report, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	logger.Debugf("wrote %d bytes to %s", len(data), output)

	dbPath, _ := cmd.Flags().GetString("history")
	if dbPath == "" {
		dbPath = cfg.HistoryDB
	}
	if dbPath != "" {
		if err := recordHistory(cmd.Context(), dbPath, input, report); err != nil {
			// History failures do not fail the parse.
			logger.Warnf("history not recorded: %v", err)
		}
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, renderSummary(report.RiskSummary()))
	fmt.Fprintln(w, dimStyle.Render("Wrote "+output))
	return nil
}

func recordHistory(ctx context.Context, dbPath, source string, report *lynis.ParsedReport) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	e, err := store.Record(ctx, source, report)
	if err != nil {
		return err
	}
	logger.Debugf("recorded history entry %s", e.ID)
	return nil
}
