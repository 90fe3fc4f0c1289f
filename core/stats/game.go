package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/devlastu/pingstat/core/events"
	"github.com/devlastu/pingstat/core/session"
)

// GameStats is the aggregate over all users' sessions for a game, optionally
// filtered to a single calendar day. A game with no events produces a
// zero-valued record, never an error.
type GameStats struct {
	GameID string `json:"game_id,omitempty"`
	Date   string `json:"date,omitempty"`

	ActiveUserCount               int     `json:"active_user_count"`
	TotalSessions                 int     `json:"total_sessions"`
	AverageSessionDurationSeconds float64 `json:"average_session_duration_seconds"`
	AvgSessionsPerUser            float64 `json:"avg_sessions_per_user"`

	TopUsersByPoints []UserPoints `json:"top_users_by_points,omitempty"`
}

// UserPoints pairs a user with their total league points.
type UserPoints struct {
	UserID string `json:"user_id"`
	Points int    `json:"points"`
}

// GameStats computes statistics across all users for a game, or across all
// games when gameID is empty. Day filtering uses the same start-time
// attribution policy as UserStats.
func (a *Aggregator) GameStats(ctx context.Context, gameID string, day *time.Time) (*GameStats, error) {
	gs := &GameStats{
		GameID: gameID,
		Date:   formatDay(day),
	}

	filter := events.NewPingFilter()
	if gameID != "" {
		filter.WithGame(gameID)
	}

	pings, err := a.provider.PingEvents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch ping events: %w", err)
	}

	sessions := session.Reconstruct(pings, a.timeout)
	if day != nil {
		sessions = session.FilterByDay(sessions, *day, a.loc)
	}

	users := make(map[string]bool)
	for _, s := range sessions {
		users[s.UserID] = true
	}

	total := session.TotalDuration(sessions)
	gs.ActiveUserCount = len(users)
	gs.TotalSessions = len(sessions)
	if gs.TotalSessions > 0 {
		gs.AverageSessionDurationSeconds = round2(total.Seconds() / float64(gs.TotalSessions))
	}
	if gs.ActiveUserCount > 0 {
		gs.AvgSessionsPerUser = round2(float64(gs.TotalSessions) / float64(gs.ActiveUserCount))
	}

	top, err := a.topUsersByPoints(ctx, day)
	if err != nil {
		return nil, err
	}
	gs.TopUsersByPoints = top

	return gs, nil
}

// topUsersByPoints returns the users sharing the highest total points across
// all matches in scope. Ties are included; users with zero points are not.
func (a *Aggregator) topUsersByPoints(ctx context.Context, day *time.Time) ([]UserPoints, error) {
	filter := events.NewMatchFilter()
	if day != nil {
		since, until := a.dayWindow(*day)
		filter.WithSince(since).WithUntil(until)
	}

	matches, err := a.provider.MatchEvents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch match events: %w", err)
	}

	points := make(map[string]int)
	for _, r := range collapseMatches(matches) {
		m := r.event
		points[m.HomeUserID] += m.PointsFor(m.HomeUserID)
		points[m.AwayUserID] += m.PointsFor(m.AwayUserID)
	}

	max := 0
	for _, p := range points {
		if p > max {
			max = p
		}
	}
	if max == 0 {
		return nil, nil
	}

	var top []UserPoints
	for user, p := range points {
		if p == max {
			top = append(top, UserPoints{UserID: user, Points: p})
		}
	}
	sort.Slice(top, func(i, j int) bool { return top[i].UserID < top[j].UserID })

	return top, nil
}
