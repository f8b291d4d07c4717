package lynis

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"gopkg.in/yaml.v3"
)

// Format is an interchange encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown format %q (want json or yaml)", s)
	}
}

// FormatForPath picks the format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Extension returns the file extension used for f, with the dot.
func (f Format) Extension() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// EncodeOptions controls Encode. Indent is the number of spaces per level;
// 0 produces compact JSON.
type EncodeOptions struct {
	Format Format
	Indent int
}

// Encode writes v (usually a *ParsedReport) to w. Keys follow struct field
// order and map keys are sorted, so the same report always encodes to the
// same bytes.
func Encode(w io.Writer, v any, opts EncodeOptions) error {
	switch opts.Format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if opts.Indent > 0 {
			enc.SetIndent(opts.Indent)
		}
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		jopts := []json.Options{json.Deterministic(true)}
		if opts.Indent > 0 {
			jopts = append(jopts, jsontext.WithIndent(strings.Repeat(" ", opts.Indent)))
		}
		b, err := json.Marshal(v, jopts...)
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = w.Write(append(b, '\n'))
		return err
	default:
		return fmt.Errorf("unknown format %q", opts.Format)
	}
}

// Marshal is Encode into a byte slice.
func Marshal(v any, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a report previously written by Encode.
func Decode(data []byte, format Format) (*ParsedReport, error) {
	r := &ParsedReport{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, r); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	case FormatJSON, "":
		if err := json.Unmarshal(data, r); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	return r, nil
}
