// Package analyzer aggregates classified log lines into run statistics.
package analyzer

import (
	"sort"
	"time"
)

// SlowLine is a structured line that carried a duration_ms token.
type SlowLine struct {
	// DurationMS is the extracted duration in milliseconds.
	DurationMS int64

	// Raw is the full original line.
	Raw string
}

// HourCount is the number of ERROR lines within one hour.
type HourCount struct {
	// Hour is the UTC instant truncated to the top of the hour.
	Hour time.Time

	// Count is the number of ERROR lines in that hour.
	Count int
}

// Aggregates holds the statistics of a single analysis run.
// Only an Aggregator mutates it; treat it as read-only afterwards.
type Aggregates struct {
	// Total is the number of lines read, recognized or not.
	Total int

	// ByLevel counts every line by level, including OTHER.
	ByLevel *Counter[string]

	// BySource counts recognized lines by client/host address.
	BySource *Counter[string]

	// ByMessage counts recognized lines by exact message text.
	ByMessage *Counter[string]

	// ByStatus counts access lines by HTTP status code.
	ByStatus *Counter[int]

	// SlowLines holds every duration-bearing line in read order. Unbounded.
	SlowLines []SlowLine

	// errorsByHour is keyed by the hour bucket's Unix seconds.
	errorsByHour map[int64]int
}

// NewAggregates creates empty aggregates.
func NewAggregates() *Aggregates {
	return &Aggregates{
		ByLevel:      NewCounter[string](),
		BySource:     NewCounter[string](),
		ByMessage:    NewCounter[string](),
		ByStatus:     NewCounter[int](),
		errorsByHour: make(map[int64]int),
	}
}

// ErrorHours returns every hour bucket with at least one ERROR line,
// oldest first.
func (a *Aggregates) ErrorHours() []HourCount {
	keys := make([]int64, 0, len(a.errorsByHour))
	for k := range a.errorsByHour {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]HourCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, HourCount{
			Hour:  time.Unix(k, 0).UTC(),
			Count: a.errorsByHour[k],
		})
	}
	return out
}

// SlowestLines returns at most n slow lines by descending duration.
// Lines with equal durations come out in reverse read order.
// Returns nil for n <= 0.
func (a *Aggregates) SlowestLines(n int) []SlowLine {
	if n <= 0 {
		return nil
	}

	out := make([]SlowLine, len(a.SlowLines))
	for i, s := range a.SlowLines {
		out[len(out)-1-i] = s
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DurationMS > out[j].DurationMS
	})

	if n < len(out) {
		out = out[:n]
	}
	return out
}
