package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/lynisparse/pkg/engine"
	"github.com/user/lynisparse/pkg/lynis"
)

var (
	colorLow      = lipgloss.Color("#22C55E")
	colorMedium   = lipgloss.Color("#EAB308")
	colorHigh     = lipgloss.Color("#F97316")
	colorCritical = lipgloss.Color("#EF4444")
	colorPrimary  = lipgloss.Color("#4A9EFF")
	colorDim      = lipgloss.Color("#9CA3AF")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	passStyle = lipgloss.NewStyle().Bold(true).Foreground(colorLow)
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCritical)
	dimStyle  = lipgloss.NewStyle().Foreground(colorDim)

	riskStyles = map[lynis.RiskLevel]lipgloss.Style{
		lynis.RiskLow:      lipgloss.NewStyle().Bold(true).Foreground(colorLow),
		lynis.RiskMedium:   lipgloss.NewStyle().Bold(true).Foreground(colorMedium),
		lynis.RiskHigh:     lipgloss.NewStyle().Bold(true).Foreground(colorHigh),
		lynis.RiskCritical: lipgloss.NewStyle().Bold(true).Foreground(colorCritical),
	}
)

func renderRisk(level lynis.RiskLevel) string {
	if s, ok := riskStyles[level]; ok {
		return s.Render(string(level))
	}
	return string(level)
}

// renderSummary is the one-line result printed after a successful parse.
func renderSummary(s lynis.RiskSummary) string {
	return fmt.Sprintf("Risk level: %s | Hardening index: %d", renderRisk(s.RiskLevel), s.HardeningIndex)
}

func renderStatus(s engine.ControlStatus) string {
	if s == engine.StatusPass {
		return passStyle.Render(string(s))
	}
	return failStyle.Render(string(s))
}
