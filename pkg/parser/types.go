// Package parser provides log line reading, format classification and
// timestamp normalization.
package parser

import "time"

// LogLine is a single raw line read from a text source.
type LogLine struct {
	// Raw is the line content without its line terminator.
	Raw string

	// Source names where this line came from (file path or input label).
	Source string

	// LineNum is the 1-based line number in the source.
	LineNum int
}

// Format identifies which known line format a record was classified as.
type Format string

const (
	FormatAccess       Format = "access"
	FormatStructured   Format = "structured"
	FormatUnrecognized Format = "unrecognized"
)

// Level values produced by the matchers. Structured lines may carry any
// other uppercase level token verbatim.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelOther = "OTHER"
)

// Record is the structured form of a classified line.
type Record struct {
	// Format is the format the line matched.
	Format Format

	// Raw is the full original line.
	Raw string

	// TimestampRaw is the timestamp token as captured from the line.
	TimestampRaw string

	// Timestamp is the normalized UTC instant; valid only if HasTimestamp.
	Timestamp    time.Time
	HasTimestamp bool

	// Level is INFO/WARN/ERROR for access lines, the literal level token for
	// structured lines and OTHER for unrecognized lines.
	Level string

	// Source is the client or host address. Empty for unrecognized lines.
	Source string

	// Message is "HTTP <status> <method> <path>" for access lines and the
	// trailing free text for structured lines.
	Message string

	// Status is the HTTP status code (access lines only).
	Status    int
	HasStatus bool

	// DurationMS is the value of an embedded duration_ms=<digits> token
	// (structured lines only).
	DurationMS  int64
	HasDuration bool
}

// Recognized reports whether the record matched one of the known formats.
func (r *Record) Recognized() bool {
	return r.Format != FormatUnrecognized
}
