// Package detector samples a log file and reports which line formats and
// timestamp layouts it contains.
package detector

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ccollicutt/logdigest/pkg/parser"
)

// DefaultSampleSize is the number of non-empty lines sampled by default.
const DefaultSampleSize = 100

// DetectionResult holds the result of sampling a log file.
type DetectionResult struct {
	Matches      []FormatMatch // Recognized formats, most frequent first
	SampledLines int           // Number of non-empty lines sampled

	// Unrecognized counts sampled lines no matcher accepted.
	Unrecognized       int
	UnrecognizedSample string
}

// FormatMatch describes one recognized line format within the sample.
type FormatMatch struct {
	Format     parser.Format
	Share      float64 // 0.0 to 1.0 of the sampled lines
	MatchCount int
	SampleLine string

	// TimestampLayout is the layout that parsed the first timestamp of this
	// format; empty when none of its timestamps parsed.
	TimestampLayout    string
	ParsedTime         time.Time
	UnparsedTimestamps int
}

// Detector samples log lines and classifies them.
type Detector struct {
	matchers   []parser.Matcher
	sampleSize int
}

// Option configures the Detector.
type Option func(*Detector)

// WithSampleSize sets the number of lines to sample (default 100).
func WithSampleSize(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.sampleSize = n
		}
	}
}

// WithMatchers replaces the default matchers.
func WithMatchers(matchers ...parser.Matcher) Option {
	return func(d *Detector) {
		d.matchers = matchers
	}
}

// New creates a new Detector with the default matchers.
func New(opts ...Option) *Detector {
	d := &Detector{
		matchers:   parser.DefaultMatchers(),
		sampleSize: DefaultSampleSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DetectFromFile samples the head of a log file.
func (d *Detector) DetectFromFile(ctx context.Context, path string) (*DetectionResult, error) {
	source := parser.NewFileSource(path)
	defer source.Close()

	lines, err := d.sample(ctx, source)
	if err != nil {
		return nil, err
	}
	return d.DetectFromLines(lines), nil
}

// DetectFromLines classifies the given lines. Blank lines are ignored and
// do not count towards the sample.
func (d *Detector) DetectFromLines(lines []string) *DetectionResult {
	result := &DetectionResult{}
	stats := make(map[parser.Format]*FormatMatch)
	var order []parser.Format

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		result.SampledLines++

		rec := parser.Classify(line, d.matchers)
		if !rec.Recognized() {
			if result.Unrecognized == 0 {
				result.UnrecognizedSample = line
			}
			result.Unrecognized++
			continue
		}

		m, ok := stats[rec.Format]
		if !ok {
			m = &FormatMatch{Format: rec.Format, SampleLine: line}
			stats[rec.Format] = m
			order = append(order, rec.Format)
		}
		m.MatchCount++

		layout, ts, ok := parser.MatchTimestamp(rec.TimestampRaw)
		switch {
		case !ok:
			m.UnparsedTimestamps++
		case m.TimestampLayout == "":
			m.TimestampLayout = layout.Name
			m.ParsedTime = ts
		}
	}

	for _, f := range order {
		m := stats[f]
		m.Share = float64(m.MatchCount) / float64(result.SampledLines)
		result.Matches = append(result.Matches, *m)
	}

	// Most frequent first; ties keep matcher priority order.
	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].MatchCount > result.Matches[j].MatchCount
	})

	return result
}

// sample reads up to sampleSize non-empty lines.
func (d *Detector) sample(ctx context.Context, source parser.LineSource) ([]string, error) {
	var lines []string
	for len(lines) < d.sampleSize {
		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("sampling log file: %w", err)
		}
		if strings.TrimSpace(line.Raw) != "" {
			lines = append(lines, line.Raw)
		}
	}
	return lines, nil
}

// BestMatch returns the most frequent format, or nil if none was recognized.
func (r *DetectionResult) BestMatch() *FormatMatch {
	if len(r.Matches) == 0 {
		return nil
	}
	return &r.Matches[0]
}

// HasMatch returns true if at least one line was recognized.
func (r *DetectionResult) HasMatch() bool {
	return len(r.Matches) > 0
}
