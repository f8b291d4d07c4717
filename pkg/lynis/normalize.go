package lynis

import (
	"regexp"
	"strings"
)

// ansiEscape matches single-character escapes and CSI sequences
// (ESC [ params intermediates final). An ESC that starts neither matches on
// its own.
var ansiEscape = regexp.MustCompile(`\x1b(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])?`)

// Normalize removes terminal escape sequences from raw report text, along
// with any ESC byte that does not start a complete sequence. No other byte is
// altered. The output holds no ESC byte, so normalizing twice is the same as
// normalizing once.
func Normalize(raw string) string {
	return ansiEscape.ReplaceAllString(raw, "")
}

// decodeText prepares file content for parsing: invalid UTF-8 bytes are
// dropped and CRLF line endings become LF.
func decodeText(raw string) string {
	return strings.ReplaceAll(strings.ToValidUTF8(raw, ""), "\r\n", "\n")
}
