package analyzer

import (
	"github.com/ccollicutt/logdigest/pkg/parser"
)

// Aggregator folds classified records into Aggregates, one record at a time
// and in line order. It is not safe for concurrent use.
type Aggregator struct {
	agg *Aggregates
}

// NewAggregator creates an Aggregator with fresh, empty Aggregates.
func NewAggregator() *Aggregator {
	return &Aggregator{agg: NewAggregates()}
}

// Add counts a record. Every record increments the total and its level;
// only recognized records reach the other counters.
func (g *Aggregator) Add(rec *parser.Record) {
	a := g.agg

	a.Total++
	a.ByLevel.Inc(rec.Level)

	if !rec.Recognized() {
		return
	}

	a.BySource.Inc(rec.Source)
	a.ByMessage.Inc(rec.Message)

	if rec.HasStatus {
		a.ByStatus.Inc(rec.Status)
	}

	if rec.HasDuration {
		a.SlowLines = append(a.SlowLines, SlowLine{
			DurationMS: rec.DurationMS,
			Raw:        rec.Raw,
		})
	}

	if rec.Level == parser.LevelError && rec.HasTimestamp {
		a.errorsByHour[parser.HourBucket(rec.Timestamp).Unix()]++
	}
}

// Aggregates returns the accumulated statistics.
func (g *Aggregator) Aggregates() *Aggregates {
	return g.agg
}
