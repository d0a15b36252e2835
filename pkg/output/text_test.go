package output

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/ccollicutt/logdigest/pkg/analyzer"
	"github.com/ccollicutt/logdigest/pkg/parser"
)

var sampleLines = []string{
	`10.0.0.5 - - [01/Jan/2024:10:00:00 +0000] "GET /x HTTP/1.1" 200 512`,
	`10.0.0.5 - - [01/Jan/2024:10:05:00 +0000] "GET /x HTTP/1.1" 503 0`,
	"2024-01-01T11:30:00Z ERROR 1.2.3.4 - timeout duration_ms=450",
	"2024-01-01T09:00:00Z INFO 1.2.3.4 - ok duration_ms=20",
	"garbage text",
}

func buildReport(t *testing.T, lines []string, top int) *Report {
	t.Helper()
	src := parser.NewReaderSource(strings.NewReader(strings.Join(lines, "\n")), "test.log")
	result, err := analyzer.NewAnalyzer().Analyze(context.Background(), src)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return NewReport(result, top)
}

func TestRender_Full(t *testing.T) {
	want := `=== SUMMARY ===
Total lines: 5
By level: INFO=2, ERROR=2, OTHER=1
HTTP statuses: 200=1, 503=1

=== Top IPs ===
10.0.0.5: 2
1.2.3.4: 2

=== Top messages ===
1 × HTTP 200 GET /x
1 × HTTP 503 GET /x
1 × timeout duration_ms=450
1 × ok duration_ms=20

=== Errors per hour ===
2024-01-01 10:00:00: 1
2024-01-01 11:00:00: 1

=== Slow lines (by duration_ms) ===
450 ms | 2024-01-01T11:30:00Z ERROR 1.2.3.4 - timeout duration_ms=450
20 ms | 2024-01-01T09:00:00Z INFO 1.2.3.4 - ok duration_ms=20`

	got := Render(buildReport(t, sampleLines, 5))
	if got != want {
		t.Errorf("Render() mismatch\n--- got ---\n%s\n--- want ---\n%s", got, want)
	}
}

func TestRender_TopZero(t *testing.T) {
	want := `=== SUMMARY ===
Total lines: 5
By level: INFO=2, ERROR=2, OTHER=1
HTTP statuses: 200=1, 503=1

=== Top IPs ===

=== Top messages ===

=== Errors per hour ===
2024-01-01 10:00:00: 1
2024-01-01 11:00:00: 1

=== Slow lines (by duration_ms) ===`

	for _, top := range []int{0, -1} {
		got := Render(buildReport(t, sampleLines, top))
		if got != want {
			t.Errorf("Render(top=%d) mismatch\n--- got ---\n%s\n--- want ---\n%s", top, got, want)
		}
	}
}

func TestRender_TopOne(t *testing.T) {
	report := buildReport(t, sampleLines, 1)
	got := Render(report)

	for _, want := range []string{
		"=== Top IPs ===\n10.0.0.5: 2\n\n",
		"=== Top messages ===\n1 × HTTP 200 GET /x\n\n",
		"=== Slow lines (by duration_ms) ===\n450 ms | ",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q\n%s", want, got)
		}
	}
	if strings.Contains(got, "20 ms |") {
		t.Error("Render(top=1) shows more than one slow line")
	}
}

func TestRender_Empty(t *testing.T) {
	want := "=== SUMMARY ===\n" +
		"Total lines: 0\n" +
		"By level: \n" +
		"\n" +
		"=== Top IPs ===\n" +
		"\n" +
		"=== Top messages ===\n" +
		"\n" +
		"=== Errors per hour ==="

	got := Render(buildReport(t, nil, 5))
	if got != want {
		t.Errorf("Render() mismatch\n--- got ---\n%q\n--- want ---\n%q", got, want)
	}
}

func TestRender_NoStatusesNoSlowLines(t *testing.T) {
	got := Render(buildReport(t, []string{"2024-01-01T10:00:00Z WARN 10.1.1.1 - disk 91%"}, 5))

	if strings.Contains(got, "HTTP statuses:") {
		t.Error("Render() shows HTTP statuses without access lines")
	}
	if strings.Contains(got, HeaderSlowLines) {
		t.Error("Render() shows slow lines section without durations")
	}
	if !strings.Contains(got, "By level: WARN=1\n") {
		t.Errorf("Render() missing level line:\n%s", got)
	}
}

func TestRender_SectionOrder(t *testing.T) {
	got := Render(buildReport(t, sampleLines, 5))

	headers := []string{HeaderSummary, HeaderTopIPs, HeaderMessages, HeaderErrors, HeaderSlowLines}
	last := -1
	for _, h := range headers {
		i := strings.Index(got, h)
		if i < 0 {
			t.Fatalf("missing header %q", h)
		}
		if i <= last {
			t.Errorf("header %q out of order", h)
		}
		last = i
	}
}

func TestRender_Deterministic(t *testing.T) {
	first := Render(buildReport(t, sampleLines, 3))
	for i := 0; i < 5; i++ {
		if got := Render(buildReport(t, sampleLines, 3)); got != first {
			t.Fatalf("Render() not deterministic on run %d", i)
		}
	}
}

func TestNewTextFormatter(t *testing.T) {
	f := NewTextFormatter(FormatOptions{})
	if f == nil {
		t.Fatal("NewTextFormatter() returned nil")
	}
	if f.Name() != "text" {
		t.Errorf("Name() = %q, want %q", f.Name(), "text")
	}
}

func TestTextFormatter_Format(t *testing.T) {
	report := buildReport(t, sampleLines, 5)

	var buf bytes.Buffer
	if err := NewTextFormatter(FormatOptions{}).Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	if buf.String() != Render(report)+"\n" {
		t.Error("Format() should write Render() plus a trailing newline")
	}
}

func TestTextFormatter_Format_Quiet(t *testing.T) {
	report := buildReport(t, sampleLines, 5)

	var buf bytes.Buffer
	if err := NewTextFormatter(FormatOptions{Quiet: true}).Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	output := buf.String()
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 4 {
		t.Errorf("Quiet output has %d lines, want 4:\n%s", len(lines), output)
	}
	if strings.Contains(output, HeaderTopIPs) {
		t.Error("Quiet output contains ranked sections")
	}
}

func TestNewFormatter(t *testing.T) {
	for _, name := range []string{"text", "json"} {
		f, ok := NewFormatter(name, FormatOptions{})
		if !ok || f.Name() != name {
			t.Errorf("NewFormatter(%q) = %v, %v", name, f, ok)
		}
	}
	if _, ok := NewFormatter("xml", FormatOptions{}); ok {
		t.Error("NewFormatter(xml) should fail")
	}
}

func TestReport_HasErrors(t *testing.T) {
	if !buildReport(t, sampleLines, 5).HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
	report := buildReport(t, []string{"garbage"}, 5)
	if report.HasErrors() || report.ErrorLines() != 0 {
		t.Error("HasErrors() = true for input without ERROR lines")
	}
}
