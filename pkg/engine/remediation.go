package engine

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"

	"github.com/user/lynisparse/pkg/logger"
	"github.com/user/lynisparse/pkg/lynis"
)

// RemediationTemplate is a fix script for one audit test. Commands are
// text/template strings, with the sprig function set, rendered with the
// finding's fields and any user-supplied variables.
type RemediationTemplate struct {
	TestID            string   `yaml:"test_id"`
	Name              string   `yaml:"name"`
	Risk              string   `yaml:"risk"`
	Standard          string   `yaml:"standard"`
	FixCommand        string   `yaml:"fix_command"`
	ValidationCommand string   `yaml:"validation_command"`
	RollbackCommand   string   `yaml:"rollback_command"`
	Variables         []string `yaml:"variables"`
}

// RemediationEngine manages remediation templates
type RemediationEngine struct {
	Templates map[string]RemediationTemplate
}

// NewRemediationEngine creates a new remediation engine
func NewRemediationEngine() *RemediationEngine {
	return &RemediationEngine{
		Templates: make(map[string]RemediationTemplate),
	}
}

// LoadTemplates reads YAML templates from a directory. A file may hold one
// template or a list of them.
func (e *RemediationEngine) LoadTemplates(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read templates dir: %w", err)
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

		var list []RemediationTemplate
		if err := yaml.Unmarshal(data, &list); err != nil {
			var single RemediationTemplate
			if err := yaml.Unmarshal(data, &single); err != nil {
				return fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
			}
			list = []RemediationTemplate{single}
		}
		for _, t := range list {
			if t.TestID == "" {
				return fmt.Errorf("template in %s: missing test_id", entry.Name())
			}
			e.Templates[baseTestID(t.TestID)] = t
			logger.Debugf("loaded remediation template: %s", t.TestID)
		}
	}
	return nil
}

// ListTemplates returns "TEST-ID: name" for every template, sorted.
func (e *RemediationEngine) ListTemplates() []string {
	list := make([]string, 0, len(e.Templates))
	for _, t := range e.Templates {
		list = append(list, fmt.Sprintf("%s: %s", t.TestID, t.Name))
	}
	slices.Sort(list)
	return list
}

// PlanStep is a rendered template for one finding.
type PlanStep struct {
	Kind     string
	Finding  lynis.Finding
	Template RemediationTemplate
	Fix      string
	Validate string
	Rollback string
}

// Plan renders a step for every warning and suggestion of r that has a
// template, warnings first. vars are available to templates next to the
// built-in Hostname, TestID, Description, Solution and Details.
func (e *RemediationEngine) Plan(r *lynis.ParsedReport, vars map[string]string) ([]PlanStep, error) {
	var steps []PlanStep
	for _, f := range refs(r) {
		tmpl, ok := e.Templates[baseTestID(f.TestID)]
		if !ok {
			continue
		}
		step, err := e.render(tmpl, f, r.Metadata.Hostname, vars)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.TestID, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func (e *RemediationEngine) render(tmpl RemediationTemplate, f FindingRef, hostname string, vars map[string]string) (PlanStep, error) {
	data := map[string]string{
		"Hostname":    hostname,
		"TestID":      f.TestID,
		"Description": f.Description,
		"Solution":    f.Solution,
		"Details":     f.Details,
	}
	for k, v := range vars {
		data[k] = v
	}

	// Validate required variables
	for _, requiredVar := range tmpl.Variables {
		if _, exists := data[requiredVar]; !exists {
			return PlanStep{}, fmt.Errorf("missing required variable: %s", requiredVar)
		}
	}

	step := PlanStep{Kind: f.Kind, Finding: f.Finding, Template: tmpl}
	var err error
	if step.Fix, err = renderString("fix", tmpl.FixCommand, data); err != nil {
		return PlanStep{}, err
	}
	if step.Validate, err = renderString("validate", tmpl.ValidationCommand, data); err != nil {
		return PlanStep{}, err
	}
	if step.Rollback, err = renderString("rollback", tmpl.RollbackCommand, data); err != nil {
		return PlanStep{}, err
	}
	return step, nil
}

// String formats the step as a fix plan.
func (s PlanStep) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[FIX PLAN] %s %s\n", s.Kind, s.Finding.TestID)
	fmt.Fprintf(&sb, "Issue: %s\n", s.Finding.Description)
	if s.Template.Risk != "" {
		fmt.Fprintf(&sb, "Risk: %s\n", s.Template.Risk)
	}
	if s.Template.Standard != "" {
		fmt.Fprintf(&sb, "Standard: %s\n", s.Template.Standard)
	}
	sb.WriteString("\nSuggested Fix:\n" + s.Fix + "\n")
	if s.Validate != "" {
		sb.WriteString("\nValidation:\n" + s.Validate + "\n")
	}
	if s.Rollback != "" {
		sb.WriteString("\nRollback:\n" + s.Rollback + "\n")
	}
	return sb.String()
}

func renderString(name, tmplStr string, vars map[string]string) (string, error) {
	t, err := template.New(name).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
