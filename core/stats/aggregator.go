package stats

import (
	"math"
	"time"

	"github.com/devlastu/pingstat/core/events"
)

// Aggregator computes user and game statistics from the event store.
//
// It is stateless with respect to its inputs: every call re-derives sessions
// and rollups from the provider, so concurrent calls do not interfere and an
// Aggregator is safe for concurrent use. Construct one per process and pass
// it to every caller.
type Aggregator struct {
	provider EventProvider
	timeout  time.Duration
	loc      *time.Location

	// now is overridable in tests.
	now func() time.Time
}

// NewAggregator creates an Aggregator with the given session-timeout
// threshold and service time zone.
func NewAggregator(provider EventProvider, timeout time.Duration, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.UTC
	}
	return &Aggregator{
		provider: provider,
		timeout:  timeout,
		loc:      loc,
		now:      time.Now,
	}
}

// dayWindow returns the half-open interval [start, end) covering the given
// calendar day in the aggregator's time zone. The end is the next local
// midnight, not start plus 24 hours: on DST transition days those differ.
func (a *Aggregator) dayWindow(day time.Time) (time.Time, time.Time) {
	y, m, d := day.In(a.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, a.loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, a.loc)
	return start, end
}

// matchResult is the final reported score of a single match.
type matchResult struct {
	event    *events.MatchEvent
	duration time.Duration
}

// collapseMatches reduces per-match event streams to one result per match:
// the last reported score plus the span between the first and last report.
func collapseMatches(matches []*events.MatchEvent) map[string]*matchResult {
	results := make(map[string]*matchResult)
	firstSeen := make(map[string]time.Time)

	for _, m := range matches {
		first, ok := firstSeen[m.MatchID]
		if !ok || m.Timestamp.Before(first) {
			firstSeen[m.MatchID] = m.Timestamp
		}
		r, ok := results[m.MatchID]
		if !ok || !m.Timestamp.Before(r.event.Timestamp) {
			results[m.MatchID] = &matchResult{event: m}
		}
	}

	for id, r := range results {
		r.duration = r.event.Timestamp.Sub(firstSeen[id])
	}

	return results
}

// round2 rounds to two decimal places for percentage and average metrics.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatDay(day *time.Time) string {
	if day == nil {
		return ""
	}
	return day.Format("2006-01-02")
}
