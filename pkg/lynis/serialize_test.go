package lynis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatJSON, "JSON": FormatJSON, "yaml": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatForPath("out/report.YML"))
	assert.Equal(t, FormatYAML, FormatForPath("report.yaml"))
	assert.Equal(t, FormatJSON, FormatForPath("report.json"))
	assert.Equal(t, FormatJSON, FormatForPath("report"))
	assert.Equal(t, ".yaml", FormatYAML.Extension())
	assert.Equal(t, ".json", FormatJSON.Extension())
}

func TestRoundTrip(t *testing.T) {
	for _, fixture := range []string{"lynis3_report.txt", "lynis2_report.txt"} {
		r := parseFixture(t, fixture)
		for _, opts := range []EncodeOptions{
			{Format: FormatJSON, Indent: 2},
			{Format: FormatJSON},
			{Format: FormatYAML, Indent: 4},
		} {
			t.Run(fixture+"/"+string(opts.Format), func(t *testing.T) {
				first, err := Marshal(r, opts)
				require.NoError(t, err)

				decoded, err := Decode(first, opts.Format)
				require.NoError(t, err)

				second, err := Marshal(decoded, opts)
				require.NoError(t, err)
				assert.Equal(t, string(first), string(second))

				assert.Equal(t, r.Metadata, decoded.Metadata)
				assert.Equal(t, r.Score, decoded.Score)
				assert.Equal(t, r.CriticalIssues, decoded.CriticalIssues)
				assert.Equal(t, r.SecurityStatus, decoded.SecurityStatus)
				assert.Equal(t, r.Warnings, decoded.Warnings)
				assert.Equal(t, r.Suggestions, decoded.Suggestions)
				assert.Equal(t, r.Filesystem.SeparatePartitions, decoded.Filesystem.SeparatePartitions)
				assert.Equal(t, r.RiskSummary(), decoded.RiskSummary())
			})
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	r := parseFixture(t, "lynis3_report.txt")
	opts := EncodeOptions{Format: FormatJSON, Indent: 2}

	a, err := Marshal(r, opts)
	require.NoError(t, err)
	for range 5 {
		b, err := Marshal(r, opts)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestEncodeJSONKeyOrder(t *testing.T) {
	b, err := Marshal(parseFixture(t, "lynis3_report.txt"), EncodeOptions{Format: FormatJSON})
	require.NoError(t, err)

	dec := jsontext.NewDecoder(bytes.NewReader(b))
	_, err = dec.ReadToken()
	require.NoError(t, err)

	var keys []string
	for dec.PeekKind() != '}' {
		tok, err := dec.ReadToken()
		require.NoError(t, err)
		keys = append(keys, tok.String())
		require.NoError(t, dec.SkipValue())
	}
	assert.Equal(t, Taxonomy, keys)
}

func TestEncodeYAMLKeyOrder(t *testing.T) {
	b, err := Marshal(parseFixture(t, "lynis2_report.txt"), EncodeOptions{Format: FormatYAML})
	require.NoError(t, err)

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal(b, &doc))
	require.Len(t, doc.Content, 1)

	mapping := doc.Content[0]
	var keys []string
	for i := 0; i < len(mapping.Content); i += 2 {
		keys = append(keys, mapping.Content[i].Value)
	}
	assert.Equal(t, Taxonomy, keys)
}

func TestEncodeEmptyCategories(t *testing.T) {
	r := NewParser().Parse("")
	b, err := Marshal(r, EncodeOptions{Format: FormatJSON})
	require.NoError(t, err)
	out := string(b)

	assert.Contains(t, out, `"metadata":{}`)
	assert.Contains(t, out, `"ssh_hardening":[]`)
	assert.Contains(t, out, `"separate_partitions":{}`)
	assert.Contains(t, out, `"warnings":[]`)
	assert.NotContains(t, out, "null")
}

func TestEncodeIndent(t *testing.T) {
	r := NewParser().Parse("")
	b, err := Marshal(r, EncodeOptions{Format: FormatJSON, Indent: 4})
	require.NoError(t, err)

	lines := strings.Split(string(b), "\n")
	require.Greater(t, len(lines), 2)
	assert.True(t, strings.HasPrefix(lines[1], `    "metadata"`), "got %q", lines[1])
}

func TestEncodeUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Encode(&buf, newReport(), EncodeOptions{Format: "toml"}))
	_, err := Decode([]byte("{}"), "toml")
	assert.Error(t, err)
}

func TestEncodeSuggestionDetailsAlwaysPresent(t *testing.T) {
	r := newReport()
	r.Warnings = append(r.Warnings, Finding{TestID: "AA-001", Description: "warn"})
	r.Suggestions = append(r.Suggestions, Finding{TestID: "BB-002", Description: "suggest"})

	b, err := Marshal(r, EncodeOptions{Format: FormatJSON})
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, `"warnings":[{"test_id":"AA-001","description":"warn","solution":"","url":""}]`)
	assert.Contains(t, out, `"suggestions":[{"test_id":"BB-002","description":"suggest","solution":"","details":"","url":""}]`)

	decoded, err := Decode(b, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, r.Suggestions, decoded.Suggestions)

	y, err := Marshal(r, EncodeOptions{Format: FormatYAML, Indent: 2})
	require.NoError(t, err)
	assert.Contains(t, string(y), "details: \"\"")
	assert.Equal(t, 1, strings.Count(string(y), "details:"))
}
