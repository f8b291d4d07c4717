package lynis

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/user/lynisparse/pkg/logger"
)

// Rule is one reported fact. Variants hold the wording of each audit tool
// format revision, current first; evaluation uses the first variant that
// matches and never combines two.
type Rule struct {
	Name     string
	Variants []*regexp.Regexp
}

// statusSuffix captures the bracketed status that follows a label.
const statusSuffix = `[ \t]*\[[ \t]*([^\]\n]+?)[ \t]*\]`

// StatusRule builds a rule whose labels are each followed by a bracketed
// status, e.g. "Checking AppArmor status    [ ENABLED ]".
func StatusRule(name string, labels ...string) Rule {
	r := Rule{Name: name}
	for _, l := range labels {
		r.Variants = append(r.Variants, regexp.MustCompile(l+statusSuffix))
	}
	return r
}

// PatternRule builds a rule from complete patterns. The first capture group
// is the value.
func PatternRule(name string, patterns ...string) Rule {
	r := Rule{Name: name}
	for _, p := range patterns {
		r.Variants = append(r.Variants, regexp.MustCompile(p))
	}
	return r
}

// Scope is the text a rule is evaluated against: one or more report
// sections, or the whole document.
type Scope string

// Match returns the submatches of the first variant that matches s.
func (s Scope) Match(r Rule) []string {
	for _, v := range r.Variants {
		if m := v.FindStringSubmatch(string(s)); m != nil {
			return m
		}
	}
	return nil
}

// MatchAll returns every match of the first variant that matches at least
// once, in document order.
func (s Scope) MatchAll(r Rule) [][]string {
	for _, v := range r.Variants {
		if m := v.FindAllStringSubmatch(string(s), -1); len(m) > 0 {
			return m
		}
	}
	return nil
}

// Has reports whether any variant matches.
func (s Scope) Has(r Rule) bool {
	return s.Match(r) != nil
}

// Raw returns the first capture of r, trimmed, or "" with false.
func (s Scope) Raw(r Rule) (string, bool) {
	m := s.Match(r)
	if len(m) < 2 {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// Status stores the token form of r's capture in dst.
func (s Scope) Status(dst *string, r Rule) {
	if v, ok := s.Raw(r); ok {
		*dst = Token(v)
	}
}

// Text stores r's capture verbatim (trimmed) in dst.
func (s Scope) Text(dst *string, r Rule) {
	if v, ok := s.Raw(r); ok {
		*dst = v
	}
}

// Int stores r's capture as an integer in dst. A capture that does not parse
// leaves dst untouched.
func (s Scope) Int(dst **int, r Rule) {
	v, ok := s.Raw(r)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Debugf("field %s: %q is not an integer, omitted", r.Name, v)
		return
	}
	*dst = &n
}

// Flag stores whether r's raw capture equals want (case-insensitive).
func (s Scope) Flag(dst **bool, r Rule, want string) {
	if v, ok := s.Raw(r); ok {
		b := strings.EqualFold(v, want)
		*dst = &b
	}
}

// Token turns a status such as "NOT ACTIVE" into "not_active".
func Token(status string) string {
	lower := cases.Lower(language.Und).String(strings.TrimSpace(status))
	return strings.Join(strings.Fields(lower), "_")
}
