package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/lynisparse/pkg/lynis"
)

// FindingRef is a finding tagged with the list it came from.
type FindingRef struct {
	Kind          string `json:"kind" yaml:"kind"`
	lynis.Finding `yaml:",inline"`
}

func (f FindingRef) key() string {
	return f.Kind + "\x00" + f.TestID + "\x00" + f.Description
}

// SnapshotDiff is the result of comparing two reports of the same host.
type SnapshotDiff struct {
	New       []FindingRef      `json:"new" yaml:"new"`
	Fixed     []FindingRef      `json:"fixed" yaml:"fixed"`
	Unchanged []FindingRef      `json:"unchanged" yaml:"unchanged"`
	Baseline  lynis.RiskSummary `json:"baseline" yaml:"baseline"`
	Current   lynis.RiskSummary `json:"current" yaml:"current"`
}

func refs(r *lynis.ParsedReport) []FindingRef {
	out := make([]FindingRef, 0, len(r.Warnings)+len(r.Suggestions))
	for _, f := range r.Warnings {
		out = append(out, FindingRef{Kind: lynis.WarningList.String(), Finding: f})
	}
	for _, f := range r.Suggestions {
		out = append(out, FindingRef{Kind: lynis.SuggestionList.String(), Finding: f})
	}
	return out
}

// CompareSnapshot identifies New, Fixed, and Unchanged findings between a
// baseline and the current report. Findings are matched on kind, test id and
// description; each list keeps report order.
func CompareSnapshot(baseline, current *lynis.ParsedReport) SnapshotDiff {
	diff := SnapshotDiff{
		New:       []FindingRef{},
		Fixed:     []FindingRef{},
		Unchanged: []FindingRef{},
		Baseline:  baseline.RiskSummary(),
		Current:   current.RiskSummary(),
	}

	before := make(map[string]bool)
	for _, f := range refs(baseline) {
		before[f.key()] = true
	}
	after := make(map[string]bool)
	for _, f := range refs(current) {
		after[f.key()] = true
		if before[f.key()] {
			diff.Unchanged = append(diff.Unchanged, f)
		} else {
			diff.New = append(diff.New, f)
		}
	}
	for _, f := range refs(baseline) {
		if !after[f.key()] {
			diff.Fixed = append(diff.Fixed, f)
		}
	}
	return diff
}

// LoadReport reads either a previously serialized report (.json, .yaml,
// .yml) or raw audit output, which is parsed with p.
func LoadReport(p *lynis.Parser, path string) (*lynis.ParsedReport, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", lynis.ErrMissingInput, path, err)
		}
		r, err := lynis.Decode(data, lynis.FormatForPath(path))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return r, nil
	default:
		return p.ParseFile(path)
	}
}
