package lynis

// RiskLevel is the aggregate risk band of a report.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskSummary is the risk query result exposed to callers.
type RiskSummary struct {
	RiskLevel           RiskLevel `json:"risk_level" yaml:"risk_level"`
	HardeningIndex      int       `json:"hardening_index" yaml:"hardening_index"`
	WarningsCount       int       `json:"warnings_count" yaml:"warnings_count"`
	CriticalIssuesCount int       `json:"critical_issues_count" yaml:"critical_issues_count"`
	MissingToolsCount   int       `json:"missing_tools_count" yaml:"missing_tools_count"`
}

// AssessRisk derives the risk band. Bands are tried from LOW to CRITICAL and
// the first match wins; a missing hardening index counts as 0.
func AssessRisk(score Score, issues CriticalIssues, warningsCount, missingToolsCount int) RiskSummary {
	index := 0
	if score.HardeningIndex != nil {
		index = *score.HardeningIndex
	}

	var level RiskLevel
	switch {
	case index >= 80 && warningsCount == 0:
		level = RiskLow
	case index >= 60 && warningsCount <= 2:
		level = RiskMedium
	case index >= 40:
		level = RiskHigh
	default:
		level = RiskCritical
	}

	return RiskSummary{
		RiskLevel:           level,
		HardeningIndex:      index,
		WarningsCount:       warningsCount,
		CriticalIssuesCount: issues.Count(),
		MissingToolsCount:   missingToolsCount,
	}
}

// RiskSummary computes the risk summary of r.
func (r *ParsedReport) RiskSummary() RiskSummary {
	return AssessRisk(r.Score, r.CriticalIssues, len(r.Warnings), len(r.MissingTools))
}
