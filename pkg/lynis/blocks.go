package lynis

import (
	"regexp"
	"strings"

	"github.com/user/lynisparse/pkg/logger"
)

// Bullet returns the glyph that opens a record in a list section.
func (k ListKind) Bullet() byte {
	if k == WarningList {
		return '!'
	}
	return '*'
}

type splitState int

const (
	// BeforeFirstRecord discards the heading rule and any boilerplate that
	// precedes the first bullet line.
	BeforeFirstRecord splitState = iota
	// InRecord accumulates lines until the next bullet line at the record
	// indentation.
	InRecord
)

// bulletIndent reports whether line is "<indent><bullet><space>..." and
// returns the indent.
func bulletIndent(line string, bullet byte) (string, bool) {
	rest := strings.TrimLeft(line, " \t")
	if len(rest) < 2 || rest[0] != bullet || (rest[1] != ' ' && rest[1] != '\t') {
		return "", false
	}
	return line[:len(line)-len(rest)], true
}

// SplitBlocks partitions a list section into one block per record. The
// first bullet line fixes the record indentation, so nested bullets such as
// "* Article:" lines under a suggestion stay in their record.
//
// A wrapped free-text line that happens to begin with the bullet glyph at the
// record indentation starts a new block. That block usually fails the first
// line check in ParseBlock and is dropped.
func SplitBlocks(section string, bullet byte) []string {
	blocks := []string{}
	state := BeforeFirstRecord
	indent := ""
	var cur []string

	for _, line := range strings.Split(section, "\n") {
		ind, isBullet := bulletIndent(line, bullet)
		switch state {
		case BeforeFirstRecord:
			if isBullet {
				state = InRecord
				indent = ind
				cur = []string{line}
			}
		case InRecord:
			if isBullet && ind == indent {
				blocks = append(blocks, strings.Join(cur, "\n"))
				cur = []string{line}
				continue
			}
			cur = append(cur, line)
		}
	}
	if state == InRecord {
		blocks = append(blocks, strings.Join(cur, "\n"))
	}
	return blocks
}

var (
	warningHead    = regexp.MustCompile(`^[ \t]*!\s+(.+?)\s+\[([A-Z]+-\d+)\]`)
	suggestionHead = regexp.MustCompile(`^[ \t]*\*\s+(.+?)\s+\[([A-Z]+-\d+(?::[^\]]+)?)\]`)

	fieldLabel  = regexp.MustCompile(`^[ \t]*-[ \t]*(Solution|Details)[ \t]*:[ \t]*(.*)$`)
	dashLine    = regexp.MustCompile(`^[ \t]*-[ \t]+\S`)
	bareURL     = regexp.MustCompile(`^[ \t]*(https://cisofy\.com/\S+)[ \t]*$`)
	websiteLine = regexp.MustCompile(`^[ \t]*\*[ \t]+Website:[ \t]+(https://cisofy\.com/\S+)[ \t]*$`)
	articleLine = regexp.MustCompile(`^[ \t]*\*[ \t]+Article:[ \t]*(.+?):[ \t]+(https?://\S+)[ \t]*$`)
	otherRef    = regexp.MustCompile(`^[ \t]*(\*[ \t]+\S|https?://)`)
)

// ParseBlock parses one record. It returns false when the first line is not
// "description [TEST-ID]"; such a block is taken to be a boundary miss and is
// dropped by the caller.
func ParseBlock(block string, kind ListKind) (Finding, bool) {
	lines := strings.Split(block, "\n")
	head := warningHead
	if kind == SuggestionList {
		head = suggestionHead
	}
	m := head.FindStringSubmatch(lines[0])
	if m == nil {
		return Finding{}, false
	}

	f := Finding{TestID: m[2], Description: strings.TrimSpace(m[1])}
	var field *[]string
	var solution, details []string

	for _, line := range lines[1:] {
		switch {
		case strings.TrimSpace(line) == "":
			field = nil
		case fieldLabel.MatchString(line):
			lm := fieldLabel.FindStringSubmatch(line)
			if lm[1] == "Solution" {
				field = &solution
			} else {
				field = &details
			}
			if v := strings.TrimSpace(lm[2]); v != "" {
				*field = append(*field, v)
			}
		case articleLine.MatchString(line):
			field = nil
			am := articleLine.FindStringSubmatch(line)
			f.Articles = append(f.Articles, Article{Title: strings.TrimSpace(am[1]), URL: am[2]})
		case bareURL.MatchString(line):
			field = nil
			if f.URL == "" {
				f.URL = bareURL.FindStringSubmatch(line)[1]
			}
		case websiteLine.MatchString(line):
			field = nil
			if f.URL == "" {
				f.URL = websiteLine.FindStringSubmatch(line)[1]
			}
		case dashLine.MatchString(line), otherRef.MatchString(line):
			// Unrecognized labels ("- Related resources") and references
			// outside the audit tool's site close the current field.
			field = nil
		case field != nil:
			*field = append(*field, strings.TrimSpace(line))
		}
	}

	f.Solution = strings.Join(solution, " ")
	if kind == SuggestionList {
		f.Details = strings.Join(details, " ")
	}
	return f, true
}

// ParseList splits a list section and parses every block, dropping the
// malformed ones. Source order is kept.
func ParseList(section string, kind ListKind) []Finding {
	out := []Finding{}
	for _, block := range SplitBlocks(section, kind.Bullet()) {
		f, ok := ParseBlock(block, kind)
		if !ok {
			first, _, _ := strings.Cut(block, "\n")
			logger.Debugf("%s block dropped, malformed first line: %q", kind, strings.TrimSpace(first))
			continue
		}
		out = append(out, f)
	}
	return out
}
