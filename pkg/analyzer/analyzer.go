package analyzer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ccollicutt/logdigest/pkg/parser"
)

// Analyzer reads a line source, classifies each line and aggregates the
// results. An Analyzer holds no per-run state and may be shared between
// goroutines; each Analyze call builds its own Aggregates.
type Analyzer struct {
	matchers []parser.Matcher
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithMatchers replaces the default matchers. Order is priority order.
func WithMatchers(matchers ...parser.Matcher) AnalyzerOption {
	return func(a *Analyzer) {
		a.matchers = matchers
	}
}

// NewAnalyzer creates a new analyzer using the default matchers.
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		matchers: parser.DefaultMatchers(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalysisResult contains the aggregates of one run.
type AnalysisResult struct {
	// Aggregates holds the collected statistics.
	Aggregates *Aggregates

	// Metadata provides context about the analysis.
	Metadata AnalysisMetadata
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	// Source is the name of the input that was analyzed.
	Source string

	// StartTime is when analysis began.
	StartTime time.Time

	// EndTime is when analysis completed.
	EndTime time.Time

	// LinesProcessed is the total number of lines read.
	LinesProcessed int

	// Unparsed counts recognized lines whose timestamp matched no layout.
	Unparsed int
}

// Classify turns one raw line into a record with a normalized timestamp.
func (a *Analyzer) Classify(line string) *parser.Record {
	rec := parser.Classify(line, a.matchers)
	if rec.Recognized() {
		rec.Timestamp, rec.HasTimestamp = parser.NormalizeTimestamp(rec.TimestampRaw)
	}
	return rec
}

// Analyze consumes the whole source and returns the aggregates.
// A read error aborts the run and is returned; no partial result is produced.
func (a *Analyzer) Analyze(ctx context.Context, source parser.LineSource) (*AnalysisResult, error) {
	result := &AnalysisResult{
		Metadata: AnalysisMetadata{
			StartTime: time.Now(),
		},
	}

	agg := NewAggregator()

	for {
		line, err := source.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading log source: %w", err)
		}

		if result.Metadata.Source == "" {
			result.Metadata.Source = line.Source
		}
		result.Metadata.LinesProcessed++

		rec := a.Classify(line.Raw)
		if rec.Recognized() && !rec.HasTimestamp {
			result.Metadata.Unparsed++
		}
		agg.Add(rec)
	}

	result.Aggregates = agg.Aggregates()
	result.Metadata.EndTime = time.Now()

	return result, nil
}
