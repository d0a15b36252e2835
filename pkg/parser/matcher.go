package parser

import (
	"fmt"
	"regexp"
	"strconv"
)

// Compiled once at package init and never mutated afterwards.
var (
	// host ident authuser [date] "METHOD path proto" status size
	accessPattern = regexp.MustCompile(
		`(\S+) \S+ \S+ \[([^\]]+)\] "(\S+) (\S+) \S+" (\d{3}) (\S+)`)

	// ISO timestamp, level token, dotted-quad address, "- " then message
	structuredPattern = regexp.MustCompile(
		`(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?Z) ([A-Z]+) (\d+\.\d+\.\d+\.\d+) - (.+)`)

	durationPattern = regexp.MustCompile(`duration_ms=(\d+)`)
)

// Matcher recognizes one line format.
// Implementations must be pure: the same line always yields the same result.
type Matcher interface {
	// Format returns the format this matcher recognizes.
	Format() Format

	// Match returns the extracted record, or false if the line is not in
	// this matcher's format. The returned record has no normalized timestamp.
	Match(line string) (*Record, bool)
}

// DefaultMatchers returns the built-in matchers in priority order.
// The access format is tried first since its pattern is the more specific one.
func DefaultMatchers() []Matcher {
	return []Matcher{
		AccessMatcher{},
		StructuredMatcher{},
	}
}

// Classify runs the matchers in order and returns the first match.
// Lines no matcher accepts are returned as unrecognized with level OTHER.
func Classify(line string, matchers []Matcher) *Record {
	for _, m := range matchers {
		if rec, ok := m.Match(line); ok {
			return rec
		}
	}
	return &Record{
		Format: FormatUnrecognized,
		Raw:    line,
		Level:  LevelOther,
	}
}

// AccessMatcher recognizes web server access log lines.
type AccessMatcher struct{}

// Format returns FormatAccess.
func (AccessMatcher) Format() Format { return FormatAccess }

// Match extracts address, timestamp, method, path and status.
func (AccessMatcher) Match(line string) (*Record, bool) {
	m := accessPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	rec := &Record{
		Format:       FormatAccess,
		Raw:          line,
		TimestampRaw: m[2],
		Source:       m[1],
		Level:        LevelInfo,
	}

	method, path, statusStr := m[3], m[4], m[5]
	if status, err := strconv.Atoi(statusStr); err == nil {
		rec.Status = status
		rec.HasStatus = true
		rec.Level = statusToLevel(status)
		rec.Message = fmt.Sprintf("HTTP %d %s %s", status, method, path)
	} else {
		rec.Message = fmt.Sprintf("HTTP %s %s %s", statusStr, method, path)
	}

	return rec, true
}

// statusToLevel maps HTTP status codes to log severity levels.
func statusToLevel(status int) string {
	switch {
	case status >= 500:
		return LevelError
	case status >= 400:
		return LevelWarn
	default:
		return LevelInfo
	}
}

// StructuredMatcher recognizes "<ISO timestamp> <LEVEL> <ip> - <message>" lines.
type StructuredMatcher struct{}

// Format returns FormatStructured.
func (StructuredMatcher) Format() Format { return FormatStructured }

// Match extracts timestamp, level, address and message, plus an optional
// duration_ms token found anywhere in the message.
func (StructuredMatcher) Match(line string) (*Record, bool) {
	m := structuredPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	rec := &Record{
		Format:       FormatStructured,
		Raw:          line,
		TimestampRaw: m[1],
		Level:        m[2],
		Source:       m[3],
		Message:      m[4],
	}

	if dm := durationPattern.FindStringSubmatch(rec.Message); dm != nil {
		// Out-of-range values drop the duration but keep the line.
		if d, err := strconv.ParseInt(dm[1], 10, 64); err == nil {
			rec.DurationMS = d
			rec.HasDuration = true
		}
	}

	return rec, true
}
