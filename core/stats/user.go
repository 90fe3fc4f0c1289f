package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/devlastu/pingstat/core/events"
	"github.com/devlastu/pingstat/core/session"
)

// UserStats is the aggregate over one user's sessions, optionally filtered
// to a single calendar day. An unknown user produces a zero-valued record,
// never an error.
type UserStats struct {
	UserID string `json:"user_id"`
	Date   string `json:"date,omitempty"`

	SessionCount           int     `json:"session_count"`
	TotalDurationSeconds   int64   `json:"total_duration_seconds"`
	AverageDurationSeconds float64 `json:"average_duration_seconds"`

	Country              string `json:"country,omitempty"`
	RegistrationDatetime string `json:"registration_datetime,omitempty"`
	Timezone             string `json:"timezone,omitempty"`
	DaysSinceLastLogin   *int   `json:"days_since_last_login,omitempty"`

	TotalPointsHome     int     `json:"total_points_home"`
	TotalPointsAway     int     `json:"total_points_away"`
	MatchTimePercentage float64 `json:"match_time_percentage"`
}

// UserStats computes statistics for a single user. When day is non-nil, the
// rollup is restricted to sessions starting on that calendar day in the
// service time zone; a session spanning midnight is attributed entirely to
// the day it started on.
func (a *Aggregator) UserStats(ctx context.Context, userID string, day *time.Time) (*UserStats, error) {
	us := &UserStats{
		UserID: userID,
		Date:   formatDay(day),
	}

	pings, err := a.provider.PingEvents(ctx, events.NewPingFilter().WithUser(userID))
	if err != nil {
		return nil, fmt.Errorf("fetch ping events: %w", err)
	}

	sessions := session.Reconstruct(pings, a.timeout)
	if day != nil {
		sessions = session.FilterByDay(sessions, *day, a.loc)
	}

	total := session.TotalDuration(sessions)
	us.SessionCount = len(sessions)
	us.TotalDurationSeconds = int64(total.Seconds())
	if us.SessionCount > 0 {
		us.AverageDurationSeconds = round2(total.Seconds() / float64(us.SessionCount))
	}

	if len(pings) > 0 {
		// The provider orders pings by game before time, so the newest ping
		// overall has to be found by scanning.
		latest := pings[0].Timestamp
		for _, p := range pings[1:] {
			if p.Timestamp.After(latest) {
				latest = p.Timestamp
			}
		}
		days := a.daysSince(latest)
		us.DaysSinceLastLogin = &days
	}

	if err := a.fillRegistration(ctx, us); err != nil {
		return nil, err
	}
	if err := a.fillMatchStats(ctx, us, day, total); err != nil {
		return nil, err
	}

	return us, nil
}

// daysSince counts whole calendar days between the given time and now in the
// service time zone.
func (a *Aggregator) daysSince(t time.Time) int {
	y, m, d := t.In(a.loc).Date()
	last := time.Date(y, m, d, 0, 0, 0, 0, a.loc)
	ny, nm, nd := a.now().In(a.loc).Date()
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, a.loc)
	return int(today.Sub(last).Hours() / 24)
}

func (a *Aggregator) fillRegistration(ctx context.Context, us *UserStats) error {
	reg, err := a.provider.Registration(ctx, us.UserID)
	if err != nil {
		return fmt.Errorf("fetch registration: %w", err)
	}
	if reg == nil {
		return nil
	}

	us.Country = reg.Country

	tzName, err := a.provider.TimezoneFor(ctx, reg.Country)
	if err != nil {
		return fmt.Errorf("fetch timezone: %w", err)
	}

	regLoc := a.loc
	if tzName != "" {
		if loc, err := time.LoadLocation(tzName); err == nil {
			regLoc = loc
			us.Timezone = tzName
		}
	}
	us.RegistrationDatetime = reg.Timestamp.In(regLoc).Format("2006-01-02 15:04:05")

	return nil
}

func (a *Aggregator) fillMatchStats(ctx context.Context, us *UserStats, day *time.Time, playTime time.Duration) error {
	filter := events.NewMatchFilter().WithUser(us.UserID)
	if day != nil {
		since, until := a.dayWindow(*day)
		filter.WithSince(since).WithUntil(until)
	}

	matches, err := a.provider.MatchEvents(ctx, filter)
	if err != nil {
		return fmt.Errorf("fetch match events: %w", err)
	}

	var matchTime time.Duration
	for _, r := range collapseMatches(matches) {
		m := r.event
		switch us.UserID {
		case m.HomeUserID:
			us.TotalPointsHome += m.PointsFor(us.UserID)
		case m.AwayUserID:
			us.TotalPointsAway += m.PointsFor(us.UserID)
		}
		matchTime += r.duration
	}

	if playTime > 0 {
		us.MatchTimePercentage = round2(matchTime.Seconds() / playTime.Seconds() * 100)
	}

	return nil
}
