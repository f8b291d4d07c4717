package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/lynisparse/pkg/lynis"
)

const sampleReport = `[+] Boot and services
------------------------------------
  - Service Manager                                           [ systemd ]

[+] Firewalls
------------------------------------
  - Checking host based firewall                              [ NOT ACTIVE ]

================================================================================

  Warnings (1):
  ----------------------------
  ! Reboot of system is most likely needed [KRNL-5830]
      - Solution : reboot

  Suggestions (1):
  ----------------------------
  * Consider hardening SSH configuration [SSH-7408:allowtcpforwarding]
      https://cisofy.com/lynis/controls/SSH-7408/

================================================================================

  Hostname:                  web01
  Hardening index : 64 [############        ]
  Tests performed : 250
`

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes the CLI in a scratch HOME and working directory.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return lynis.Normalize(out.String()), err
}

func sandbox(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeReport(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(sampleReport), 0o644))
	return path
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "rapport_lynis_web01_parsed.json", DefaultOutputPath("/tmp/rapport_lynis_web01.txt", "", lynis.FormatJSON))
	assert.Equal(t, "report_parsed.yaml", DefaultOutputPath("report", "", lynis.FormatYAML))
	assert.Equal(t, filepath.Join("out", "a.b_parsed.json"), DefaultOutputPath("logs/a.b.log", "out", lynis.FormatJSON))
}

func TestParseWritesDefaultOutput(t *testing.T) {
	dir := sandbox(t)
	writeReport(t, dir, "web01.txt")

	out, err := run(t, "web01.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "Risk level: MEDIUM | Hardening index: 64")
	assert.Contains(t, out, "web01_parsed.json")

	data, err := os.ReadFile(filepath.Join(dir, "web01_parsed.json"))
	require.NoError(t, err)
	r, err := lynis.Decode(data, lynis.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "web01", r.Metadata.Hostname)
	assert.Equal(t, lynis.FirewallNotActive, r.SecurityStatus.Firewall)
	assert.True(t, r.CriticalIssues.NoFirewall)
	require.Len(t, r.Warnings, 1)
	require.Len(t, r.Suggestions, 1)
}

func TestParseExplicitYAMLOutput(t *testing.T) {
	dir := sandbox(t)
	writeReport(t, dir, "web01.txt")

	_, err := run(t, "web01.txt", filepath.Join("results", "web01.yml"), "--indent", "4")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "results", "web01.yml"))
	require.NoError(t, err)
	r, err := lynis.Decode(data, lynis.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "KRNL-5830", r.Warnings[0].TestID)
}

func TestParseFormatFlag(t *testing.T) {
	dir := sandbox(t)
	writeReport(t, dir, "web01.txt")

	_, err := run(t, "web01.txt", "--format", "yaml")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "web01_parsed.yaml"))

	_, err = run(t, "web01.txt", "--format", "xml")
	assert.Error(t, err)
}

func TestParseMissingInput(t *testing.T) {
	dir := sandbox(t)

	_, err := run(t, "absent.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, lynis.ErrMissingInput)
	assert.NoFileExists(t, filepath.Join(dir, "absent_parsed.json"))
}

func TestParseRequiresInput(t *testing.T) {
	sandbox(t)
	_, err := run(t)
	assert.Error(t, err)
}

func TestParseRecordsHistory(t *testing.T) {
	dir := sandbox(t)
	writeReport(t, dir, "web01.txt")
	db := filepath.Join(dir, "history.db")

	_, err := run(t, "web01.txt", "--history", db)
	require.NoError(t, err)
	_, err = run(t, "web01.txt", "--history", db)
	require.NoError(t, err)

	out, err := run(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "PARSED AT")
	assert.Equal(t, 2, bytes.Count([]byte(out), []byte("web01.txt")))
	assert.Contains(t, out, "MEDIUM")

	out, err = run(t, "history", "--db", db, "--limit", "1")
	require.NoError(t, err)
	assert.Equal(t, 1, bytes.Count([]byte(out), []byte("web01.txt")))
}

func TestHistoryEmpty(t *testing.T) {
	sandbox(t)
	out, err := run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No history recorded yet.")
}

// originalDir is the package directory, captured before tests change the
// working directory.
var originalDir, _ = os.Getwd()
