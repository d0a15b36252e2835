package output

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Section headers. Consumers match on these verbatim.
const (
	HeaderSummary   = "=== SUMMARY ==="
	HeaderTopIPs    = "=== Top IPs ==="
	HeaderMessages  = "=== Top messages ==="
	HeaderErrors    = "=== Errors per hour ==="
	HeaderSlowLines = "=== Slow lines (by duration_ms) ==="
)

// hourLayout renders hour buckets as "2024-01-01 10:00:00".
const hourLayout = "2006-01-02 15:04:05"

// TextFormatter formats reports as the plain-text report.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format writes the rendered report followed by a newline.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	var text string
	if f.opts.Quiet {
		text = strings.Join(summaryLines(report), "\n")
	} else {
		text = Render(report)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}

// Render produces the report text: fixed sections in fixed order, separated
// by blank lines, joined with "\n" and without a trailing newline.
func Render(report *Report) string {
	lines := summaryLines(report)

	lines = append(lines, "", HeaderTopIPs)
	for _, kc := range report.TopSources {
		lines = append(lines, fmt.Sprintf("%s: %d", kc.Key, kc.Count))
	}

	lines = append(lines, "", HeaderMessages)
	for _, kc := range report.TopMessages {
		lines = append(lines, fmt.Sprintf("%d × %s", kc.Count, kc.Key))
	}

	lines = append(lines, "", HeaderErrors)
	for _, h := range report.ErrorsPerHour {
		lines = append(lines, fmt.Sprintf("%s: %d", h.Hour.UTC().Format(hourLayout), h.Count))
	}

	if report.HasSlowLines {
		lines = append(lines, "", HeaderSlowLines)
		for _, s := range report.SlowLines {
			lines = append(lines, fmt.Sprintf("%d ms | %s", s.DurationMS, s.Line))
		}
	}

	return strings.Join(lines, "\n")
}

func summaryLines(report *Report) []string {
	levels := make([]string, 0, len(report.Summary.ByLevel))
	for _, kc := range report.Summary.ByLevel {
		levels = append(levels, fmt.Sprintf("%s=%d", kc.Key, kc.Count))
	}

	lines := []string{
		HeaderSummary,
		fmt.Sprintf("Total lines: %d", report.Summary.TotalLines),
		"By level: " + strings.Join(levels, ", "),
	}

	if len(report.Summary.HTTPStatuses) > 0 {
		statuses := make([]string, 0, len(report.Summary.HTTPStatuses))
		for _, sc := range report.Summary.HTTPStatuses {
			statuses = append(statuses, fmt.Sprintf("%d=%d", sc.Status, sc.Count))
		}
		lines = append(lines, "HTTP statuses: "+strings.Join(statuses, ", "))
	}

	return lines
}
