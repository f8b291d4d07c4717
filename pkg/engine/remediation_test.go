package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/lynisparse/pkg/lynis"
)

func loadTestTemplates(t *testing.T) *RemediationEngine {
	t.Helper()
	e := NewRemediationEngine()
	require.NoError(t, e.LoadTemplates(filepath.Join("testdata", "remediations")))
	return e
}

func TestLoadTemplates(t *testing.T) {
	e := loadTestTemplates(t)
	assert.Equal(t, []string{
		"KRNL-5830: Reboot into the updated kernel",
		"SSH-7408: Harden sshd_config option",
		"SSH-7412: Disable direct root login over SSH",
	}, e.ListTemplates())
}

func TestLoadTemplatesMissingTestID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.yaml"), []byte("name: nameless\nfix_command: true\n"), 0o644))
	assert.Error(t, NewRemediationEngine().LoadTemplates(dir))
}

func TestPlan(t *testing.T) {
	e := loadTestTemplates(t)
	r := &lynis.ParsedReport{
		Metadata: lynis.Metadata{Hostname: "web01"},
		Warnings: []lynis.Finding{
			{TestID: "SSH-7412", Description: "Root can directly login via SSH"},
			{TestID: "PKGS-7392", Description: "Found one or more vulnerable packages."},
		},
		Suggestions: []lynis.Finding{
			{TestID: "SSH-7408:allowtcpforwarding", Description: "Consider hardening SSH configuration", Details: "AllowTcpForwarding (set YES to NO)"},
		},
	}

	steps, err := e.Plan(r, map[string]string{"SSHDConfig": "/etc/ssh/sshd_config"})
	require.NoError(t, err)
	require.Len(t, steps, 2)

	assert.Equal(t, "warning", steps[0].Kind)
	assert.Equal(t, "sed -i 's/^PermitRootLogin.*/PermitRootLogin no/' /etc/ssh/sshd_config", steps[0].Fix)
	assert.Equal(t, "grep '^PermitRootLogin no' /etc/ssh/sshd_config", steps[0].Validate)
	assert.Contains(t, steps[0].String(), "[FIX PLAN] warning SSH-7412")
	assert.Contains(t, steps[0].String(), "Rollback:")

	assert.Equal(t, "suggestion", steps[1].Kind)
	assert.Equal(t, "echo 'AllowTcpForwarding (set YES to NO)' on web01", steps[1].Fix)
	assert.NotContains(t, steps[1].String(), "Rollback:")
}

func TestPlanMissingVariable(t *testing.T) {
	e := loadTestTemplates(t)
	r := &lynis.ParsedReport{Warnings: []lynis.Finding{{TestID: "SSH-7412"}}}
	_, err := e.Plan(r, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SSHDConfig")
}

func TestPlanNoTemplates(t *testing.T) {
	steps, err := NewRemediationEngine().Plan(&lynis.ParsedReport{Warnings: []lynis.Finding{{TestID: "AA-001"}}}, nil)
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestRenderStringFuncs(t *testing.T) {
	out, err := renderString("t", `{{ .ID | splitList ":" | last | upper }} {{ .Path | squote }}`,
		map[string]string{"ID": "SSH-7408:permitrootlogin", "Path": "/etc/ssh"})
	require.NoError(t, err)
	assert.Equal(t, "PERMITROOTLOGIN '/etc/ssh'", out)

	_, err = renderString("t", "{{ .Missing }}", map[string]string{})
	assert.Error(t, err)
}
