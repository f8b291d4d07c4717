package lynis

var (
	ruleRebootNeeded = PatternRule("reboot_needed", `Check if reboot is needed[ \t]*\[[ \t]*YES[ \t]*\]`)
	ruleVulnerable   = PatternRule("vulnerable_packages",
		`Checking vulnerable packages[^\[\n]*\[[ \t]*WARNING[ \t]*\]`,
		`Found one or more vulnerable packages`,
	)
	ruleNoRulesActive = PatternRule("firewall_no_rules", `iptables module\(s\) loaded, but no rules active`)
)

const (
	FirewallNotActive              = "not_active"
	FirewallInstalledNotConfigured = "installed_not_configured"
)

// classifyFirewall collapses the firewall checks into one status token plus
// the two critical flags. The status is not_active when the firewall is absent
// or disabled, installed_not_configured when it is reported active but the
// kernel module carries no rules, and the reported token otherwise.
func classifyFirewall(s Scope) (status string, noFirewall, noRules bool) {
	noRules = s.Has(ruleNoRulesActive)
	raw, ok := s.Raw(ruleFirewall)
	if !ok {
		return "", false, noRules
	}
	status = Token(raw)
	noFirewall = status == FirewallNotActive
	if status == "active" && noRules {
		status = FirewallInstalledNotConfigured
	}
	return status, noFirewall, noRules
}

// extractCriticalIssues evaluates each flag on its own; no flag depends on
// another having matched.
func extractCriticalIssues(d *Document) CriticalIssues {
	all := d.All()
	_, noFirewall, noRules := classifyFirewall(all)
	maxAge, _ := all.Raw(rulePasswordMaxAge)
	return CriticalIssues{
		RebootNeeded:       all.Has(ruleRebootNeeded),
		VulnerablePackages: all.Has(ruleVulnerable),
		NoFirewall:         noFirewall,
		FirewallNoRules:    noRules,
		WeakPasswordPolicy: Token(maxAge) == "disabled",
	}
}
