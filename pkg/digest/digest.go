// Package digest is the analysis entry point: it turns a line source and a
// top-N limit into the rendered report.
package digest

import (
	"context"
	"io"

	"github.com/ccollicutt/logdigest/pkg/analyzer"
	"github.com/ccollicutt/logdigest/pkg/output"
	"github.com/ccollicutt/logdigest/pkg/parser"
)

// DefaultTop is the number of ranked entries shown when none is requested.
const DefaultTop = 5

// Result is one completed analysis.
type Result struct {
	// Report is the ranked report model.
	Report *output.Report

	// Text is the rendered report.
	Text string

	// Lines is the number of lines read.
	Lines int
}

// Analyze reads every line of source and builds the report. Each call uses
// fresh aggregation state, so concurrent calls are independent.
// A read error is returned as-is and no report is produced.
func Analyze(ctx context.Context, source parser.LineSource, top int) (*Result, error) {
	defer source.Close()

	result, err := analyzer.NewAnalyzer().Analyze(ctx, source)
	if err != nil {
		return nil, err
	}

	report := output.NewReport(result, top)
	return &Result{
		Report: report,
		Text:   output.Render(report),
		Lines:  result.Metadata.LinesProcessed,
	}, nil
}

// AnalyzeReader analyzes lines read from r and returns the report text.
func AnalyzeReader(ctx context.Context, r io.Reader, top int) (string, error) {
	res, err := Analyze(ctx, parser.NewReaderSource(r, "input"), top)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// AnalyzeFile analyzes the file at path and returns the report text.
func AnalyzeFile(ctx context.Context, path string, top int) (string, error) {
	res, err := Analyze(ctx, parser.NewFileSource(path), top)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
