// Package lynis turns the console report of a Lynis audit run into a
// structured ParsedReport.
//
// Usage:
//
//	p := lynis.NewParser()
//	report, err := p.ParseFile("rapport_lynis_host.txt")
//	if err != nil {
//	    // only unreadable input is an error
//	}
//	summary := report.RiskSummary()
package lynis

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/user/lynisparse/pkg/logger"
)

// ErrMissingInput is returned when the report path cannot be read.
var ErrMissingInput = errors.New("input report unreadable")

// Parser builds ParsedReports. The zero value is not usable; use NewParser.
type Parser struct {
	// Workers bounds how many category extractors run at once. 1 or less
	// runs them one after another.
	Workers int
	// Now stamps scan_timestamp.
	Now func() time.Time
}

// NewParser returns a Parser that runs extractors concurrently.
func NewParser() *Parser {
	return &Parser{Workers: 4, Now: time.Now}
}

// ParseFile reads path fully and parses it. Files ending in ".dat" are read
// as lynis-report.dat key/value data, everything else as console output.
func (p *Parser) ParseFile(path string) (*ParsedReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMissingInput, path, err)
	}
	logger.Debugf("read %d bytes from %s", len(data), path)
	if strings.EqualFold(filepath.Ext(path), ".dat") {
		return p.ParseDat(string(data)), nil
	}
	return p.Parse(string(data)), nil
}

// Parse builds a report from raw console output. It never fails: fields and
// blocks that do not match are left out.
func (p *Parser) Parse(raw string) *ParsedReport {
	doc := NewDocument(raw)
	r := newReport()

	var g errgroup.Group
	if p.Workers > 0 {
		g.SetLimit(p.Workers)
	} else {
		g.SetLimit(1)
	}
	for _, ex := range extractors {
		g.Go(func() error {
			ex.run(doc, r)
			return nil
		})
	}
	_ = g.Wait()

	// Derived after every extractor has finished.
	r.MissingTools = missingTools(r.SecurityStatus)
	r.ScanTimestamp = p.timestamp()

	logger.Debugf("parsed report: %d warnings, %d suggestions", len(r.Warnings), len(r.Suggestions))
	return r
}

func (p *Parser) timestamp() string {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return now().Format(time.RFC3339)
}
