// Package export renders a parsed report into formats meant for people and
// monitoring systems rather than for re-parsing.
package export

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/user/lynisparse/pkg/lynis"
)

// WritePDF writes a one-document summary of r to path: host and score,
// raised critical issues, then every warning and suggestion with its
// solution.
func WritePDF(r *lynis.ParsedReport, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	s := r.RiskSummary()

	pdf.SetTitle("Lynis audit summary", false)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr("Lynis audit summary"))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	host := r.Metadata.Hostname
	if host == "" {
		host = "unknown host"
	}
	for _, line := range []string{
		fmt.Sprintf("Host: %s", host),
		fmt.Sprintf("Risk level: %s", s.RiskLevel),
		fmt.Sprintf("Hardening index: %d", s.HardeningIndex),
		fmt.Sprintf("Warnings: %d  Suggestions: %d  Missing tools: %d", len(r.Warnings), len(r.Suggestions), s.MissingToolsCount),
		fmt.Sprintf("Scanned: %s", r.ScanTimestamp),
	} {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}

	if issues := RaisedIssues(r.CriticalIssues); len(issues) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, "Critical issues")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 11)
		for _, name := range issues {
			pdf.MultiCell(0, 5, tr("- "+strings.ReplaceAll(name, "_", " ")), "", "L", false)
		}
	}

	if len(r.MissingTools) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, "Missing tools")
		pdf.Ln(8)
		pdf.SetFont("Arial", "", 11)
		pdf.MultiCell(0, 5, tr(strings.Join(r.MissingTools, ", ")), "", "L", false)
	}

	findingSection(pdf, tr, "Warnings", r.Warnings)
	findingSection(pdf, tr, "Suggestions", r.Suggestions)

	return pdf.OutputFileAndClose(path)
}

func findingSection(pdf *fpdf.Fpdf, tr func(string) string, title string, findings []lynis.Finding) {
	if len(findings) == 0 {
		return
	}
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("%s (%d)", title, len(findings)))
	pdf.Ln(8)
	for _, f := range findings {
		pdf.SetFont("Arial", "B", 11)
		pdf.MultiCell(0, 5, tr(fmt.Sprintf("%s [%s]", f.Description, f.TestID)), "", "L", false)
		pdf.SetFont("Arial", "", 10)
		if f.Details != "" {
			pdf.MultiCell(0, 4, tr("Details: "+f.Details), "", "L", false)
		}
		if f.Solution != "" {
			pdf.MultiCell(0, 4, tr("Solution: "+f.Solution), "", "L", false)
		}
		if f.URL != "" {
			pdf.SetFont("Courier", "", 9)
			pdf.MultiCell(0, 4, f.URL, "", "L", false)
		}
		pdf.Ln(2)
	}
}

// RaisedIssues returns the serialized names of the raised critical flags,
// sorted.
func RaisedIssues(c lynis.CriticalIssues) []string {
	var out []string
	for name, raised := range issueFlags(c) {
		if raised {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

func issueFlags(c lynis.CriticalIssues) map[string]bool {
	return map[string]bool{
		"reboot_needed":        c.RebootNeeded,
		"vulnerable_packages":  c.VulnerablePackages,
		"no_firewall":          c.NoFirewall,
		"firewall_no_rules":    c.FirewallNoRules,
		"weak_password_policy": c.WeakPasswordPolicy,
	}
}
