package lynis

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatFile(t *testing.T) {
	p := NewParser()
	p.Now = fixedNow
	r, err := p.ParseFile(filepath.Join("testdata", "lynis-report.dat"))
	require.NoError(t, err)

	assert.Equal(t, "3.0.9", r.Metadata.LynisVersion)
	assert.Equal(t, "web01", r.Metadata.Hostname)
	assert.Equal(t, "5.15.0-91-generic", r.Metadata.KernelVersion)
	assert.Equal(t, Score{HardeningIndex: intp(67), TestsPerformed: intp(258), PluginsEnabled: intp(0)}, r.Score)

	assert.Equal(t, CriticalIssues{RebootNeeded: true, FirewallNoRules: true}, r.CriticalIssues)
	assert.Equal(t, FirewallInstalledNotConfigured, r.SecurityStatus.Firewall)

	require.Len(t, r.Warnings, 1)
	assert.Equal(t, Finding{
		TestID:      "KRNL-5830",
		Description: "Reboot of system is most likely needed",
		Solution:    "text:reboot",
	}, r.Warnings[0])

	require.Len(t, r.Suggestions, 1)
	assert.Equal(t, "AllowTcpForwarding (set YES to NO)", r.Suggestions[0].Details)
	assert.Empty(t, r.Suggestions[0].Solution)

	assert.Equal(t, "2024-05-01T12:00:00Z", r.ScanTimestamp)
	assert.Equal(t, RiskMedium, r.RiskSummary().RiskLevel)
}

func TestParseDatFirewall(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		status     string
		noFirewall bool
	}{
		{"inactive", "firewall_active=0\n", FirewallNotActive, true},
		{"active", "firewall_active=1\nfirewall_empty_ruleset=0\n", "active", false},
		{"unreported", "hostname=x\n", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewParser().ParseDat(tt.in)
			assert.Equal(t, tt.status, r.SecurityStatus.Firewall)
			assert.Equal(t, tt.noFirewall, r.CriticalIssues.NoFirewall)
		})
	}
}

func TestParseDatMalformedValues(t *testing.T) {
	r := NewParser().ParseDat("hardening_index=high\nlynis_tests_done=12\nhardening_index_extra=5\n")
	assert.Nil(t, r.Score.HardeningIndex)
	assert.Equal(t, intp(12), r.Score.TestsPerformed)

	r = NewParser().ParseDat("hardening_index=250\n")
	assert.Nil(t, r.Score.HardeningIndex)
}
