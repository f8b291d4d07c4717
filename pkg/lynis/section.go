package lynis

import (
	"regexp"
	"strings"
)

// Document is a normalized report with its domain sections indexed. It is
// read-only once built and safe to share between extractors.
type Document struct {
	Text     string
	sections []section
}

type section struct {
	title string
	body  string
}

// NewDocument cleans and normalizes raw and indexes every "[+] Title" section.
func NewDocument(raw string) *Document {
	doc := &Document{Text: Normalize(decodeText(raw))}
	doc.sections = indexSections(doc.Text)
	return doc
}

const sectionMarker = "[+] "

// indexSections splits text on lines that start with the section marker.
// Each body runs from the heading line to the next heading or end of text.
func indexSections(text string) []section {
	var out []section
	start := -1
	title := ""
	offset := 0
	for offset <= len(text) {
		end := strings.IndexByte(text[offset:], '\n')
		lineEnd := len(text)
		if end >= 0 {
			lineEnd = offset + end
		}
		line := strings.TrimLeft(text[offset:lineEnd], " \t")
		if strings.HasPrefix(line, sectionMarker) {
			if start >= 0 {
				out = append(out, section{title: title, body: text[start:offset]})
			}
			start = offset
			title = strings.TrimSpace(strings.TrimPrefix(line, sectionMarker))
		}
		if end < 0 {
			break
		}
		offset = lineEnd + 1
	}
	if start >= 0 {
		out = append(out, section{title: title, body: text[start:]})
	}
	return out
}

// HasSection reports whether a section whose title starts with prefix
// (case-insensitive) exists.
func (d *Document) HasSection(prefix string) bool {
	for _, s := range d.sections {
		if hasFoldPrefix(s.title, prefix) {
			return true
		}
	}
	return false
}

// Section returns the bodies of all sections whose title starts with one of
// the given prefixes, concatenated in document order. It returns an empty
// Scope when none is present.
func (d *Document) Section(prefixes ...string) Scope {
	var b strings.Builder
	for _, s := range d.sections {
		for _, p := range prefixes {
			if hasFoldPrefix(s.title, p) {
				b.WriteString(s.body)
				break
			}
		}
	}
	return Scope(b.String())
}

// All returns the whole document as a Scope.
func (d *Document) All() Scope {
	return Scope(d.Text)
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// ListKind selects one of the two list sections of the results area.
type ListKind int

const (
	WarningList ListKind = iota
	SuggestionList
)

func (k ListKind) String() string {
	if k == WarningList {
		return "warning"
	}
	return "suggestion"
}

var (
	warningsHeading    = regexp.MustCompile(`(?m)^[ \t]*Warnings \(\d+\):[ \t]*$`)
	suggestionsHeading = regexp.MustCompile(`(?m)^[ \t]*Suggestions \(\d+\):[ \t]*$`)
	followUpLine       = regexp.MustCompile(`(?m)^[ \t]*Follow-up:`)
	closingRule        = regexp.MustCompile(`(?m)^[ \t]*=+[ \t]*$`)
)

// ListSection returns the text between a list heading and its terminator,
// excluding the heading line. It is empty when the heading is missing.
func (d *Document) ListSection(kind ListKind) string {
	heading := warningsHeading
	terminators := []*regexp.Regexp{suggestionsHeading, followUpLine, closingRule}
	if kind == SuggestionList {
		heading = suggestionsHeading
		terminators = []*regexp.Regexp{followUpLine, closingRule}
	}

	loc := heading.FindStringIndex(d.Text)
	if loc == nil {
		return ""
	}
	rest := d.Text[loc[1]:]
	end := len(rest)
	for _, t := range terminators {
		if m := t.FindStringIndex(rest); m != nil && m[0] < end {
			end = m[0]
		}
	}
	return strings.TrimPrefix(rest[:end], "\n")
}
