package export

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/user/lynisparse/pkg/lynis"
)

var riskLevels = []lynis.RiskLevel{lynis.RiskLow, lynis.RiskMedium, lynis.RiskHigh, lynis.RiskCritical}

// Registry returns a registry holding gauges that describe r. Every series
// carries a hostname label.
func Registry(r *lynis.ParsedReport) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	host := r.Metadata.Hostname
	s := r.RiskSummary()

	gauge := func(name, help string, labels ...string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "lynis",
			Name:      name,
			Help:      help,
		}, append([]string{"hostname"}, labels...))
	}

	index := gauge("hardening_index", "Hardening index reported by the audit (0-100).")
	warnings := gauge("warnings", "Number of warnings in the report.")
	suggestions := gauge("suggestions", "Number of suggestions in the report.")
	missing := gauge("missing_tools", "Number of security tools reported as absent.")
	issues := gauge("critical_issue", "1 when the critical issue is raised.", "issue")
	risk := gauge("risk_level", "1 for the assessed risk level, 0 for the others.", "level")

	for _, c := range []prometheus.Collector{index, warnings, suggestions, missing, issues, risk} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}

	if r.Score.HardeningIndex != nil {
		index.WithLabelValues(host).Set(float64(*r.Score.HardeningIndex))
	}
	warnings.WithLabelValues(host).Set(float64(len(r.Warnings)))
	suggestions.WithLabelValues(host).Set(float64(len(r.Suggestions)))
	missing.WithLabelValues(host).Set(float64(s.MissingToolsCount))
	for name, raised := range issueFlags(r.CriticalIssues) {
		issues.WithLabelValues(host, name).Set(boolValue(raised))
	}
	for _, level := range riskLevels {
		risk.WithLabelValues(host, string(level)).Set(boolValue(level == s.RiskLevel))
	}
	return reg, nil
}

// WriteMetrics writes the gauges of r to path in the Prometheus text format,
// for the node_exporter textfile collector.
func WriteMetrics(r *lynis.ParsedReport, path string) error {
	reg, err := Registry(r)
	if err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
