package lynis

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/user/lynisparse/pkg/logger"
)

// ParseDat builds a report from lynis-report.dat, the key=value file the
// audit tool writes next to its log. Only the keys that map onto the
// ParsedReport schema are read; unknown keys, comments and malformed lines
// are skipped.
func (p *Parser) ParseDat(data string) *ParsedReport {
	r := newReport()
	var firewallActive, emptyRuleset bool
	var sawFirewall bool

	scanner := bufio.NewScanner(strings.NewReader(Normalize(decodeText(data))))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			logger.Debugf("report.dat: skipping line without '=': %q", line)
			continue
		}

		switch key {
		case "lynis_version":
			r.Metadata.LynisVersion = value
		case "os":
			r.Metadata.OS = value
		case "os_name":
			r.Metadata.OSName = value
		case "os_version":
			r.Metadata.OSVersion = value
		case "os_kernel_version":
			r.Metadata.KernelVersion = value
		case "hostname":
			r.Metadata.Hostname = value
		case "hardening_index":
			r.Score.HardeningIndex = validIndex(datInt(key, value))
		case "lynis_tests_done":
			r.Score.TestsPerformed = datInt(key, value)
		case "plugins_enabled":
			r.Score.PluginsEnabled = datInt(key, value)
		case "reboot_needed":
			r.CriticalIssues.RebootNeeded = value == "1"
		case "vulnerable_packages_found":
			r.CriticalIssues.VulnerablePackages = value == "1"
		case "firewall_active":
			sawFirewall = true
			firewallActive = value == "1"
		case "firewall_empty_ruleset":
			emptyRuleset = value == "1"
		case "warning[]":
			if f, ok := datFinding(value, WarningList); ok {
				r.Warnings = append(r.Warnings, f)
			}
		case "suggestion[]":
			if f, ok := datFinding(value, SuggestionList); ok {
				r.Suggestions = append(r.Suggestions, f)
			}
		}
	}

	r.CriticalIssues.FirewallNoRules = emptyRuleset
	if sawFirewall {
		r.CriticalIssues.NoFirewall = !firewallActive
		switch {
		case !firewallActive:
			r.SecurityStatus.Firewall = FirewallNotActive
		case emptyRuleset:
			r.SecurityStatus.Firewall = FirewallInstalledNotConfigured
		default:
			r.SecurityStatus.Firewall = "active"
		}
	}
	r.MissingTools = missingTools(r.SecurityStatus)
	r.ScanTimestamp = p.timestamp()
	return r
}

func datInt(key, value string) *int {
	n, err := strconv.Atoi(value)
	if err != nil {
		logger.Debugf("report.dat: %s=%q is not an integer, omitted", key, value)
		return nil
	}
	return &n
}

// datFinding parses "TEST-ID|text|details|solution|". A "-" column is empty.
func datFinding(value string, kind ListKind) (Finding, bool) {
	cols := strings.Split(value, "|")
	if len(cols) < 2 || cols[0] == "" {
		logger.Debugf("report.dat: %s entry dropped: %q", kind, value)
		return Finding{}, false
	}
	col := func(i int) string {
		if i >= len(cols) || cols[i] == "-" {
			return ""
		}
		return strings.TrimSpace(cols[i])
	}
	f := Finding{
		TestID:      cols[0],
		Description: col(1),
		Solution:    col(3),
	}
	if kind == SuggestionList {
		f.Details = col(2)
	}
	return f, true
}
