package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/lynisparse/pkg/lynis"
)

func sampleReport() *lynis.ParsedReport {
	index := 62
	return &lynis.ParsedReport{
		Metadata: lynis.Metadata{Hostname: "web01"},
		Score:    lynis.Score{HardeningIndex: &index},
		CriticalIssues: lynis.CriticalIssues{
			RebootNeeded:    true,
			FirewallNoRules: true,
		},
		MissingTools: []string{"malware_scanner"},
		Warnings: []lynis.Finding{
			{TestID: "KRNL-5830", Description: "Reboot of system is most likely needed", URL: "https://cisofy.com/lynis/controls/KRNL-5830/"},
		},
		Suggestions: []lynis.Finding{
			{TestID: "SSH-7408:allowtcpforwarding", Description: "Consider hardening SSH configuration", Details: "AllowTcpForwarding (set YES to NO)"},
			{TestID: "BOOT-5122", Description: "Set a password on GRUB boot loader", Solution: "Run grub-mkpasswd-pbkdf2 – and add it to the config"},
		},
		ScanTimestamp: "2024-05-01T12:00:00Z",
	}
}

func TestRaisedIssues(t *testing.T) {
	assert.Equal(t, []string{"firewall_no_rules", "reboot_needed"}, RaisedIssues(sampleReport().CriticalIssues))
	assert.Empty(t, RaisedIssues(lynis.CriticalIssues{}))
}

func TestWritePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.pdf")
	require.NoError(t, WritePDF(sampleReport(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
	assert.Contains(t, string(data), "%%EOF")
}

func TestWritePDFEmptyReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	require.NoError(t, WritePDF(&lynis.ParsedReport{}, path))
	assert.FileExists(t, path)
}

func TestWritePDFBadPath(t *testing.T) {
	err := WritePDF(sampleReport(), filepath.Join(t.TempDir(), "missing", "summary.pdf"))
	assert.Error(t, err)
}

func TestWriteMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lynis.prom")
	require.NoError(t, WriteMetrics(sampleReport(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "# TYPE lynis_hardening_index gauge")
	assert.Contains(t, out, `lynis_hardening_index{hostname="web01"} 62`)
	assert.Contains(t, out, `lynis_warnings{hostname="web01"} 1`)
	assert.Contains(t, out, `lynis_suggestions{hostname="web01"} 2`)
	assert.Contains(t, out, `lynis_missing_tools{hostname="web01"} 1`)
	assert.Contains(t, out, `lynis_critical_issue{hostname="web01",issue="reboot_needed"} 1`)
	assert.Contains(t, out, `lynis_critical_issue{hostname="web01",issue="no_firewall"} 0`)
	assert.Contains(t, out, `lynis_risk_level{hostname="web01",level="MEDIUM"} 1`)
	assert.Contains(t, out, `lynis_risk_level{hostname="web01",level="LOW"} 0`)
}

func TestRegistryWithoutIndex(t *testing.T) {
	reg, err := Registry(&lynis.ParsedReport{})
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	// An unset gauge vector exports no series.
	assert.NotContains(t, names, "lynis_hardening_index")
	assert.Contains(t, names, "lynis_risk_level")
	for _, f := range families {
		if f.GetName() == "lynis_risk_level" {
			assert.Len(t, f.GetMetric(), 4)
		}
	}
}
