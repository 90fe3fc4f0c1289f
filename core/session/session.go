// Package session reconstructs play sessions from raw ping events.
package session

import "time"

// Session is a contiguous run of ping events for one user and game,
// separated from neighboring runs by a gap exceeding the configured timeout.
// Sessions are derived views: they are recomputed from ping events on demand
// and never independently persisted.
type Session struct {
	// UserID is the user all pings in this session belong to.
	UserID string `json:"user_id"`
	// GameID is the game all pings in this session belong to.
	GameID string `json:"game_id,omitempty"`
	// StartTime is the timestamp of the earliest ping.
	StartTime time.Time `json:"start_time"`
	// EndTime is the timestamp of the latest ping.
	EndTime time.Time `json:"end_time"`
	// PingCount is the number of pings covered by this session.
	PingCount int `json:"ping_count"`
}

// Duration returns the session length. A session of a single ping has
// duration zero but still counts as a session.
func (s *Session) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// StartsOn returns true if the session started on the given calendar day in
// the given location. A session spanning midnight belongs to the day of its
// start time.
func (s *Session) StartsOn(day time.Time, loc *time.Location) bool {
	start := s.StartTime.In(loc)
	y, m, d := day.In(loc).Date()
	sy, sm, sd := start.Date()
	return y == sy && m == sm && d == sd
}
