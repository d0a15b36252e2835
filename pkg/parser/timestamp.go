package parser

import (
	"regexp"
	"strings"
	"time"
)

// TimestampLayout is a known timestamp encoding.
type TimestampLayout struct {
	Name    string // Human-readable name
	Layout  string // Go time layout for parsing
	Example string

	fraction fractionRule
}

// Go parses a fractional second after the seconds field whether or not the
// layout names one, so each layout states whether it takes a fraction.
type fractionRule int

const (
	fractionForbidden fractionRule = iota
	fractionRequired
)

func (r fractionRule) allows(s string) bool {
	hasFraction := strings.Contains(s, ".")
	if r == fractionRequired {
		return hasFraction
	}
	return !hasFraction
}

var timestampLayouts = []TimestampLayout{
	{
		Name:    "Access log with UTC offset",
		Layout:  "2/Jan/2006:15:04:05 -0700",
		Example: "25/Sep/2025:10:15:32 +0000",
	},
	{
		Name:    "Access log with Z or colon offset",
		Layout:  "2/Jan/2006:15:04:05 Z07:00",
		Example: "25/Sep/2025:10:15:32 +03:00",
	},
	{
		Name:     "ISO 8601 with fractional seconds and Z",
		Layout:   "2006-01-02T15:04:05.999999Z",
		Example:  "2025-09-25T10:15:32.123456Z",
		fraction: fractionRequired,
	},
	{
		Name:    "ISO 8601 with Z",
		Layout:  "2006-01-02T15:04:05Z",
		Example: "2025-09-25T10:15:32Z",
	},
}

// Go accepts any number of fraction digits; only microsecond precision is valid.
var overPreciseFraction = regexp.MustCompile(`\.\d{7,}Z$`)

// TimestampLayouts returns the known layouts in the order they are tried.
func TimestampLayouts() []TimestampLayout {
	out := make([]TimestampLayout, len(timestampLayouts))
	copy(out, timestampLayouts)
	return out
}

// MatchTimestamp parses s against each known layout in order and returns
// the first layout that succeeds together with the instant in UTC.
func MatchTimestamp(s string) (TimestampLayout, time.Time, bool) {
	if overPreciseFraction.MatchString(s) {
		return TimestampLayout{}, time.Time{}, false
	}
	for _, l := range timestampLayouts {
		if !l.fraction.allows(s) {
			continue
		}
		t, err := time.Parse(l.Layout, s)
		if err != nil {
			continue
		}
		// Year 0 and earlier are not valid calendar years.
		if t.Year() < 1 || t.UTC().Year() < 1 {
			return TimestampLayout{}, time.Time{}, false
		}
		return l, t.UTC(), true
	}
	return TimestampLayout{}, time.Time{}, false
}

// NormalizeTimestamp parses s into a UTC instant.
// Returns false if no known layout matches; this is never an error.
func NormalizeTimestamp(s string) (time.Time, bool) {
	_, t, ok := MatchTimestamp(s)
	return t, ok
}

// HourBucket truncates t to the top of its hour.
func HourBucket(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}
