package lynis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(v int) *int { return &v }

func TestAssessRiskBands(t *testing.T) {
	tests := []struct {
		name     string
		index    *int
		warnings int
		want     RiskLevel
	}{
		{"clean and hardened", intp(85), 0, RiskLow},
		{"hardened with warnings", intp(85), 3, RiskHigh},
		{"hardened with two warnings", intp(85), 2, RiskMedium},
		{"low boundary", intp(80), 0, RiskLow},
		{"medium boundary", intp(60), 2, RiskMedium},
		{"high boundary", intp(40), 10, RiskHigh},
		{"below high", intp(39), 0, RiskCritical},
		{"missing index", nil, 0, RiskCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssessRisk(Score{HardeningIndex: tt.index}, CriticalIssues{}, tt.warnings, 0)
			assert.Equal(t, tt.want, got.RiskLevel)
		})
	}
}

func TestAssessRiskCounts(t *testing.T) {
	got := AssessRisk(
		Score{HardeningIndex: intp(72)},
		CriticalIssues{RebootNeeded: true, VulnerablePackages: true},
		1, 4,
	)
	assert.Equal(t, RiskSummary{
		RiskLevel:           RiskMedium,
		HardeningIndex:      72,
		WarningsCount:       1,
		CriticalIssuesCount: 2,
		MissingToolsCount:   4,
	}, got)
}

func TestReportRiskSummary(t *testing.T) {
	r := newReport()
	r.Score.HardeningIndex = intp(90)
	r.Warnings = append(r.Warnings, Finding{TestID: "AA-001"})
	r.MissingTools = []string{"auditd"}

	got := r.RiskSummary()
	assert.Equal(t, RiskMedium, got.RiskLevel)
	assert.Equal(t, 1, got.WarningsCount)
	assert.Equal(t, 1, got.MissingToolsCount)
}
