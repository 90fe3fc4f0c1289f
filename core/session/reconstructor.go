package session

import (
	"sort"
	"time"

	"github.com/devlastu/pingstat/core/events"
)

// Reconstruct derives sessions from raw ping events using a gap threshold.
//
// Events are partitioned by (user_id, game_id); a session never spans games.
// Within a partition, a gap between consecutive pings exceeding timeout
// closes the current session and opens a new one at the gap-exceeding ping.
// The input is sorted before partitioning, so callers do not need to
// guarantee ordering.
//
// The returned sessions are non-overlapping, ordered by start time within
// each partition, and cover every input ping exactly once. An empty input
// yields a nil slice, not an error. Reconstruct is a pure function of its
// inputs and is safe for concurrent use.
func Reconstruct(pings []*events.PingEvent, timeout time.Duration) []*Session {
	if len(pings) == 0 {
		return nil
	}

	ordered := make([]*events.PingEvent, len(pings))
	copy(ordered, pings)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.UserID != b.UserID {
			return a.UserID < b.UserID
		}
		if a.GameID != b.GameID {
			return a.GameID < b.GameID
		}
		return a.Timestamp.Before(b.Timestamp)
	})

	var sessions []*Session
	var cur *Session
	for _, p := range ordered {
		if cur != nil && samePartition(cur, p) && p.Timestamp.Sub(cur.EndTime) <= timeout {
			cur.EndTime = p.Timestamp
			cur.PingCount++
			continue
		}
		cur = &Session{
			UserID:    p.UserID,
			GameID:    p.GameID,
			StartTime: p.Timestamp,
			EndTime:   p.Timestamp,
			PingCount: 1,
		}
		sessions = append(sessions, cur)
	}

	return sessions
}

func samePartition(s *Session, p *events.PingEvent) bool {
	return s.UserID == p.UserID && s.GameID == p.GameID
}

// TotalDuration sums the durations of the given sessions.
func TotalDuration(sessions []*Session) time.Duration {
	var total time.Duration
	for _, s := range sessions {
		total += s.Duration()
	}
	return total
}

// FilterByDay returns the sessions whose start time falls on the given
// calendar day in the given location.
func FilterByDay(sessions []*Session, day time.Time, loc *time.Location) []*Session {
	var out []*Session
	for _, s := range sessions {
		if s.StartsOn(day, loc) {
			out = append(out, s)
		}
	}
	return out
}
