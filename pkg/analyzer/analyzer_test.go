package analyzer

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ccollicutt/logdigest/pkg/parser"
)

// mockSource is a test LineSource that returns predefined lines.
type mockSource struct {
	lines []string
	index int
	err   error // returned after the lines are exhausted, instead of io.EOF
}

func (m *mockSource) Next(ctx context.Context) (*parser.LogLine, error) {
	if m.index >= len(m.lines) {
		if m.err != nil {
			return nil, m.err
		}
		return nil, io.EOF
	}
	m.index++
	return &parser.LogLine{Raw: m.lines[m.index-1], Source: "mock", LineNum: m.index}, nil
}

func (m *mockSource) Close() error {
	return nil
}

func TestNewAnalyzer(t *testing.T) {
	a := NewAnalyzer()
	if a == nil {
		t.Fatal("NewAnalyzer() returned nil")
	}
	if len(a.matchers) != 2 {
		t.Errorf("default matchers = %d, want 2", len(a.matchers))
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	source := &mockSource{lines: []string{
		`10.0.0.5 - - [01/Jan/2024:10:00:00 +0000] "GET /x HTTP/1.1" 200 512`,
		"2024-01-01T10:00:00Z ERROR 1.2.3.4 - timeout duration_ms=450",
		"2024-01-01T10:00:00Z ERROR 1.2.3.4 - bad",
		"garbage text",
	}}

	result, err := NewAnalyzer().Analyze(context.Background(), source)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	a := result.Aggregates
	if a.Total != 4 {
		t.Errorf("Total = %d, want 4", a.Total)
	}
	if a.ByLevel.Get("ERROR") != 2 || a.ByLevel.Get("INFO") != 1 || a.ByLevel.Get("OTHER") != 1 {
		t.Errorf("ByLevel = %v", a.ByLevel.Ranked())
	}
	if result.Metadata.LinesProcessed != 4 {
		t.Errorf("LinesProcessed = %d, want 4", result.Metadata.LinesProcessed)
	}
	if result.Metadata.Source != "mock" {
		t.Errorf("Source = %q, want mock", result.Metadata.Source)
	}
	if result.Metadata.EndTime.Before(result.Metadata.StartTime) {
		t.Error("EndTime before StartTime")
	}
}

func TestAnalyzer_Analyze_Empty(t *testing.T) {
	result, err := NewAnalyzer().Analyze(context.Background(), &mockSource{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.Aggregates.Total != 0 {
		t.Errorf("Total = %d, want 0", result.Aggregates.Total)
	}
}

func TestAnalyzer_Analyze_ReadError(t *testing.T) {
	readErr := errors.New("disk on fire")
	source := &mockSource{lines: []string{"a", "b"}, err: readErr}

	result, err := NewAnalyzer().Analyze(context.Background(), source)
	if err == nil {
		t.Fatal("Analyze() expected error")
	}
	if !errors.Is(err, readErr) {
		t.Errorf("Analyze() error = %v, want wrapped %v", err, readErr)
	}
	if result != nil {
		t.Error("Analyze() returned a partial result on error")
	}
}

func TestAnalyzer_Analyze_CountsUnparsedTimestamps(t *testing.T) {
	source := &mockSource{lines: []string{
		`1.1.1.1 - - [garbage] "GET / HTTP/1.1" 500 0`,
		`1.1.1.1 - - [01/Jan/2024:10:00:00 +0000] "GET / HTTP/1.1" 500 0`,
		"not a log line",
	}}

	result, err := NewAnalyzer().Analyze(context.Background(), source)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.Metadata.Unparsed != 1 {
		t.Errorf("Unparsed = %d, want 1", result.Metadata.Unparsed)
	}
}

func TestAnalyzer_WithMatchers(t *testing.T) {
	// Only the structured matcher: access lines become OTHER.
	a := NewAnalyzer(WithMatchers(parser.StructuredMatcher{}))
	source := &mockSource{lines: []string{
		`10.0.0.5 - - [01/Jan/2024:10:00:00 +0000] "GET /x HTTP/1.1" 200 512`,
	}}

	result, err := a.Analyze(context.Background(), source)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if result.Aggregates.ByLevel.Get("OTHER") != 1 {
		t.Errorf("ByLevel = %v, want OTHER=1", result.Aggregates.ByLevel.Ranked())
	}
}

func TestAnalyzer_Analyze_FreshStatePerRun(t *testing.T) {
	a := NewAnalyzer()
	text := "2024-01-01T10:00:00Z ERROR 1.2.3.4 - x duration_ms=1\n"

	first, err := a.Analyze(context.Background(), parser.NewReaderSource(strings.NewReader(text), "one"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Analyze(context.Background(), parser.NewReaderSource(strings.NewReader(text), "two"))
	if err != nil {
		t.Fatal(err)
	}

	if first.Aggregates == second.Aggregates {
		t.Fatal("runs share Aggregates")
	}
	if second.Aggregates.Total != 1 || len(second.Aggregates.SlowLines) != 1 {
		t.Errorf("second run leaked state: total=%d slow=%d",
			second.Aggregates.Total, len(second.Aggregates.SlowLines))
	}
}

func TestAnalyzer_ManySlowLines(t *testing.T) {
	var b strings.Builder
	const n = 20000
	for i := 0; i < n; i++ {
		b.WriteString("2024-01-01T10:00:00Z INFO 10.0.0.1 - req duration_ms=")
		b.WriteString(strings.Repeat("9", 1+i%5))
		b.WriteString("\n")
	}

	result, err := NewAnalyzer().Analyze(context.Background(),
		parser.NewReaderSource(strings.NewReader(b.String()), "big"))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	a := result.Aggregates
	if len(a.SlowLines) != n {
		t.Errorf("len(SlowLines) = %d, want %d", len(a.SlowLines), n)
	}
	top := a.SlowestLines(3)
	if len(top) != 3 {
		t.Fatalf("len(SlowestLines(3)) = %d, want 3", len(top))
	}
	for _, s := range top {
		if s.DurationMS != 99999 {
			t.Errorf("top slow line duration = %d, want 99999", s.DurationMS)
		}
	}
}
