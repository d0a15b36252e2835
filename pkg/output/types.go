// Package output builds and renders analysis reports.
package output

import (
	"time"

	"github.com/ccollicutt/logdigest/pkg/analyzer"
	"github.com/ccollicutt/logdigest/pkg/parser"
)

// Report is the complete analysis output, already ranked and limited to
// the requested top N.
type Report struct {
	// Summary provides totals and level/status breakdowns.
	Summary Summary `json:"summary"`

	// Top is the requested number of ranked entries per section.
	Top int `json:"top"`

	// TopSources are the most frequent client/host addresses.
	TopSources []KeyCount `json:"top_sources"`

	// TopMessages are the most frequent messages.
	TopMessages []KeyCount `json:"top_messages"`

	// ErrorsPerHour lists every hour with ERROR lines, oldest first.
	ErrorsPerHour []HourCount `json:"errors_per_hour"`

	// HasSlowLines is true if any line carried a duration, even when
	// Top hides all of them.
	HasSlowLines bool `json:"has_slow_lines"`

	// SlowLines are the slowest duration-bearing lines.
	SlowLines []SlowLine `json:"slow_lines"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	// TotalLines is the number of lines read.
	TotalLines int `json:"total_lines"`

	// ByLevel lists every level by descending count.
	ByLevel []KeyCount `json:"by_level"`

	// HTTPStatuses lists every status code by descending count.
	HTTPStatuses []StatusCount `json:"http_statuses,omitempty"`
}

// KeyCount is a ranked string key.
type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// StatusCount is a ranked HTTP status code.
type StatusCount struct {
	Status int `json:"status"`
	Count  int `json:"count"`
}

// HourCount is the ERROR count of one hour bucket.
type HourCount struct {
	Hour  time.Time `json:"hour"`
	Count int       `json:"count"`
}

// SlowLine is a line with its extracted duration.
type SlowLine struct {
	DurationMS int64  `json:"duration_ms"`
	Line       string `json:"line"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// Source is the analyzed input.
	Source string `json:"source,omitempty"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration"`

	// UnparsedTimestamps counts recognized lines with an unknown timestamp layout.
	UnparsedTimestamps int `json:"unparsed_timestamps"`
}

// NewReport creates a Report from analysis results, keeping at most top
// entries in each ranked section. A top of zero or less keeps none.
func NewReport(result *analyzer.AnalysisResult, top int) *Report {
	agg := result.Aggregates

	report := &Report{
		Summary: Summary{
			TotalLines: agg.Total,
			ByLevel:    keyCounts(agg.ByLevel.Ranked()),
		},
		Top:          top,
		TopSources:   keyCounts(agg.BySource.MostCommon(top)),
		TopMessages:  keyCounts(agg.ByMessage.MostCommon(top)),
		HasSlowLines: len(agg.SlowLines) > 0,
		Metadata: Metadata{
			Source:             result.Metadata.Source,
			AnalyzedAt:         result.Metadata.EndTime,
			Duration:           result.Metadata.EndTime.Sub(result.Metadata.StartTime),
			UnparsedTimestamps: result.Metadata.Unparsed,
		},
	}

	for _, e := range agg.ByStatus.Ranked() {
		report.Summary.HTTPStatuses = append(report.Summary.HTTPStatuses,
			StatusCount{Status: e.Key, Count: e.Count})
	}

	report.ErrorsPerHour = []HourCount{}
	for _, h := range agg.ErrorHours() {
		report.ErrorsPerHour = append(report.ErrorsPerHour, HourCount{Hour: h.Hour, Count: h.Count})
	}

	report.SlowLines = []SlowLine{}
	for _, s := range agg.SlowestLines(top) {
		report.SlowLines = append(report.SlowLines, SlowLine{DurationMS: s.DurationMS, Line: s.Raw})
	}

	return report
}

func keyCounts(entries []analyzer.Entry[string]) []KeyCount {
	out := make([]KeyCount, 0, len(entries))
	for _, e := range entries {
		out = append(out, KeyCount{Key: e.Key, Count: e.Count})
	}
	return out
}

// ErrorLines returns the number of ERROR-level lines.
func (r *Report) ErrorLines() int {
	for _, kc := range r.Summary.ByLevel {
		if kc.Key == parser.LevelError {
			return kc.Count
		}
	}
	return 0
}

// HasErrors returns true if any ERROR-level line was seen.
func (r *Report) HasErrors() bool {
	return r.ErrorLines() > 0
}
