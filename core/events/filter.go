package events

import "time"

// PingFilter provides filtering criteria for querying ping events.
// Stores return matching events ordered ascending by timestamp.
type PingFilter struct {
	// UserID filters by a specific user.
	UserID string
	// GameID filters by a specific game.
	GameID string
	// Since filters events at or after this time.
	Since *time.Time
	// Until filters events before this time.
	Until *time.Time
	// Limit is the maximum number of results, 0 for unlimited.
	Limit int
}

// NewPingFilter creates a new PingFilter.
func NewPingFilter() *PingFilter {
	return &PingFilter{}
}

// WithUser sets the UserID filter.
func (f *PingFilter) WithUser(userID string) *PingFilter {
	f.UserID = userID
	return f
}

// WithGame sets the GameID filter.
func (f *PingFilter) WithGame(gameID string) *PingFilter {
	f.GameID = gameID
	return f
}

// WithSince sets the Since filter.
func (f *PingFilter) WithSince(t time.Time) *PingFilter {
	f.Since = &t
	return f
}

// WithUntil sets the Until filter.
func (f *PingFilter) WithUntil(t time.Time) *PingFilter {
	f.Until = &t
	return f
}

// WithLimit sets the Limit.
func (f *PingFilter) WithLimit(limit int) *PingFilter {
	f.Limit = limit
	return f
}

// MatchFilter provides filtering criteria for querying match events.
// Stores return matching events ordered by (match_id, timestamp).
type MatchFilter struct {
	// UserID filters to matches involving this user on either side.
	UserID string
	// Since filters events at or after this time.
	Since *time.Time
	// Until filters events before this time.
	Until *time.Time
}

// NewMatchFilter creates a new MatchFilter.
func NewMatchFilter() *MatchFilter {
	return &MatchFilter{}
}

// WithUser sets the UserID filter.
func (f *MatchFilter) WithUser(userID string) *MatchFilter {
	f.UserID = userID
	return f
}

// WithSince sets the Since filter.
func (f *MatchFilter) WithSince(t time.Time) *MatchFilter {
	f.Since = &t
	return f
}

// WithUntil sets the Until filter.
func (f *MatchFilter) WithUntil(t time.Time) *MatchFilter {
	f.Until = &t
	return f
}
