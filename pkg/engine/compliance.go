package engine

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/lynisparse/pkg/logger"
	"github.com/user/lynisparse/pkg/lynis"
)

// ErrUnknownStandard is returned when no loaded profile has the requested name.
var ErrUnknownStandard = errors.New("unknown compliance standard")

// Control maps one requirement of a standard to the audit tests that cover it.
type Control struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	TestIDs     []string `yaml:"test_ids"`
	Remediation string   `yaml:"remediation"`
}

// Profile represents a compliance standard (e.g., CIS)
type Profile struct {
	Standard    string    `yaml:"standard"`
	Description string    `yaml:"description"`
	Controls    []Control `yaml:"controls"`
}

// Engine manages compliance profiles
type Engine struct {
	Profiles map[string]Profile
}

// NewEngine creates a new compliance engine
func NewEngine() *Engine {
	return &Engine{
		Profiles: make(map[string]Profile),
	}
}

// LoadProfiles reads YAML profiles from a directory
func (e *Engine) LoadProfiles(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read profiles dir: %w", err)
	}

	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}

		var p Profile
		if err := yaml.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
		if p.Standard == "" {
			return fmt.Errorf("profile %s: missing standard name", entry.Name())
		}
		e.Profiles[p.Standard] = p
		logger.Debugf("loaded compliance profile: %s (%d controls)", p.Standard, len(p.Controls))
	}
	return nil
}

// ListStandards returns the names of loaded standards, sorted.
func (e *Engine) ListStandards() []string {
	return slices.Sorted(maps.Keys(e.Profiles))
}

// GetProfile retrieves a profile by name. An exact match is preferred over a
// case-insensitive one.
func (e *Engine) GetProfile(name string) (Profile, bool) {
	if p, ok := e.Profiles[name]; ok {
		return p, true
	}
	for _, s := range e.ListStandards() {
		if strings.EqualFold(s, name) {
			return e.Profiles[s], true
		}
	}
	return Profile{}, false
}

type ControlStatus string

const (
	StatusPass ControlStatus = "PASS"
	StatusFail ControlStatus = "FAIL"
)

// ControlResult is the outcome of one control. Matched lists the report test
// ids that made it fail.
type ControlResult struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Status      ControlStatus `json:"status" yaml:"status"`
	Matched     []string      `json:"matched,omitempty" yaml:"matched,omitempty"`
	Remediation string        `json:"remediation,omitempty" yaml:"remediation,omitempty"`
}

type Evaluation struct {
	Standard string          `json:"standard" yaml:"standard"`
	Results  []ControlResult `json:"results" yaml:"results"`
	Passed   int             `json:"passed" yaml:"passed"`
	Failed   int             `json:"failed" yaml:"failed"`
}

// Evaluate checks a parsed report against a standard. A control fails when
// any warning or suggestion of the report carries one of its test ids; the
// sub-id after a colon ("SSH-7408:port") is ignored.
func (e *Engine) Evaluate(standard string, r *lynis.ParsedReport) (Evaluation, error) {
	profile, ok := e.GetProfile(standard)
	if !ok {
		return Evaluation{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownStandard, standard, strings.Join(e.ListStandards(), ", "))
	}

	reported := make(map[string]bool)
	for _, list := range [][]lynis.Finding{r.Warnings, r.Suggestions} {
		for _, f := range list {
			reported[baseTestID(f.TestID)] = true
		}
	}

	ev := Evaluation{Standard: profile.Standard, Results: []ControlResult{}}
	for _, c := range profile.Controls {
		res := ControlResult{ID: c.ID, Name: c.Name, Status: StatusPass}
		for _, id := range c.TestIDs {
			if reported[baseTestID(id)] {
				res.Matched = append(res.Matched, id)
			}
		}
		if len(res.Matched) > 0 {
			res.Status = StatusFail
			res.Remediation = c.Remediation
			ev.Failed++
		} else {
			ev.Passed++
		}
		ev.Results = append(ev.Results, res)
	}
	return ev, nil
}

func baseTestID(id string) string {
	base, _, _ := strings.Cut(strings.TrimSpace(id), ":")
	return strings.ToUpper(base)
}
