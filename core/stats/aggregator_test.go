package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/devlastu/pingstat/core/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// fakeProvider is an in-memory EventProvider applying the same filter
// semantics as the database-backed store.
type fakeProvider struct {
	pings         []*events.PingEvent
	matches       []*events.MatchEvent
	registrations map[string]*events.RegistrationEvent
	timezones     map[string]string
	err           error
}

func (f *fakeProvider) PingEvents(_ context.Context, filter *events.PingFilter) ([]*events.PingEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*events.PingEvent
	for _, p := range f.pings {
		if filter.UserID != "" && p.UserID != filter.UserID {
			continue
		}
		if filter.GameID != "" && p.GameID != filter.GameID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProvider) MatchEvents(_ context.Context, filter *events.MatchFilter) ([]*events.MatchEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*events.MatchEvent
	for _, m := range f.matches {
		if filter.UserID != "" && !m.Involves(filter.UserID) {
			continue
		}
		if filter.Since != nil && m.Timestamp.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && !m.Timestamp.Before(*filter.Until) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeProvider) Registration(_ context.Context, userID string) (*events.RegistrationEvent, error) {
	return f.registrations[userID], nil
}

func (f *fakeProvider) TimezoneFor(_ context.Context, country string) (string, error) {
	return f.timezones[country], nil
}

func newTestAggregator(p *fakeProvider) *Aggregator {
	a := NewAggregator(p, 30*time.Minute, time.UTC)
	a.now = func() time.Time { return base.Add(48 * time.Hour) }
	return a
}

func ping(userID, gameID string, offset time.Duration) *events.PingEvent {
	return events.NewPingEvent(userID, gameID, base.Add(offset))
}

func TestUserStats_SessionRollup(t *testing.T) {
	p := &fakeProvider{
		pings: []*events.PingEvent{
			ping("u1", "g1", 0),
			ping("u1", "g1", 5*time.Minute),
			ping("u1", "g1", 10*time.Minute),
			ping("u1", "g1", 50*time.Minute),
			ping("u2", "g1", 0),
		},
	}

	us, err := newTestAggregator(p).UserStats(context.Background(), "u1", nil)
	require.NoError(t, err)

	assert.Equal(t, "u1", us.UserID)
	assert.Equal(t, 2, us.SessionCount)
	assert.Equal(t, int64(600), us.TotalDurationSeconds)
	assert.Equal(t, float64(300), us.AverageDurationSeconds)
}

func TestUserStats_UnknownUserIsZeroValued(t *testing.T) {
	us, err := newTestAggregator(&fakeProvider{}).UserStats(context.Background(), "ghost", nil)
	require.NoError(t, err)

	assert.Equal(t, 0, us.SessionCount)
	assert.Equal(t, int64(0), us.TotalDurationSeconds)
	assert.Equal(t, float64(0), us.AverageDurationSeconds)
	assert.Nil(t, us.DaysSinceLastLogin)
}

func TestUserStats_DayFilterStartTimeAttribution(t *testing.T) {
	// Session running 23:50 May 1 to 00:10 May 2 belongs to May 1 with its
	// full 20 minute duration.
	lateStart := time.Date(2024, 5, 1, 23, 50, 0, 0, time.UTC)
	p := &fakeProvider{
		pings: []*events.PingEvent{
			events.NewPingEvent("u1", "g1", lateStart),
			events.NewPingEvent("u1", "g1", lateStart.Add(10*time.Minute)),
			events.NewPingEvent("u1", "g1", lateStart.Add(20*time.Minute)),
		},
	}
	agg := newTestAggregator(p)

	day1 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	us, err := agg.UserStats(context.Background(), "u1", &day1)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", us.Date)
	assert.Equal(t, 1, us.SessionCount)
	assert.Equal(t, int64(1200), us.TotalDurationSeconds)

	day2 := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	us, err = agg.UserStats(context.Background(), "u1", &day2)
	require.NoError(t, err)
	assert.Equal(t, 0, us.SessionCount)
	assert.Equal(t, int64(0), us.TotalDurationSeconds)
}

func TestUserStats_RegistrationInfo(t *testing.T) {
	p := &fakeProvider{
		pings: []*events.PingEvent{ping("u1", "g1", 0)},
		registrations: map[string]*events.RegistrationEvent{
			"u1": {
				UserID:    "u1",
				Country:   "DE",
				DeviceOS:  events.DeviceAndroid,
				Timestamp: time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC),
			},
		},
		timezones: map[string]string{"DE": "Europe/Berlin"},
	}

	us, err := newTestAggregator(p).UserStats(context.Background(), "u1", nil)
	require.NoError(t, err)

	assert.Equal(t, "DE", us.Country)
	assert.Equal(t, "Europe/Berlin", us.Timezone)
	// 10:00 UTC is 12:00 in Berlin during DST.
	assert.Equal(t, "2024-04-01 12:00:00", us.RegistrationDatetime)

	require.NotNil(t, us.DaysSinceLastLogin)
	assert.Equal(t, 2, *us.DaysSinceLastLogin)
}

func TestUserStats_LastLoginSpansGames(t *testing.T) {
	// The provider orders pings by (user, game, time), so a user whose most
	// recent activity is in an alphabetically early game has a stale ping as
	// the final slice element. Last login must still be the newest ping.
	p := &fakeProvider{
		pings: []*events.PingEvent{
			ping("u1", "alpha", 46*time.Hour),
			ping("u1", "zeta", 0),
		},
	}

	us, err := newTestAggregator(p).UserStats(context.Background(), "u1", nil)
	require.NoError(t, err)

	// now is base+48h, same calendar day as the alpha ping.
	require.NotNil(t, us.DaysSinceLastLogin)
	assert.Equal(t, 0, *us.DaysSinceLastLogin)
}

func TestUserStats_MatchPoints(t *testing.T) {
	p := &fakeProvider{
		pings: []*events.PingEvent{
			ping("u1", "g1", 0),
			ping("u1", "g1", 20*time.Minute),
			ping("u1", "g1", 40*time.Minute),
		},
		matches: []*events.MatchEvent{
			// Home win for u1: kickoff and final report 10 minutes apart.
			{MatchID: "m1", HomeUserID: "u1", AwayUserID: "u2", HomeGoals: 0, AwayGoals: 0, Timestamp: base},
			{MatchID: "m1", HomeUserID: "u1", AwayUserID: "u2", HomeGoals: 2, AwayGoals: 1, Timestamp: base.Add(10 * time.Minute)},
			// Away draw for u1.
			{MatchID: "m2", HomeUserID: "u3", AwayUserID: "u1", HomeGoals: 1, AwayGoals: 1, Timestamp: base.Add(20 * time.Minute)},
		},
	}

	us, err := newTestAggregator(p).UserStats(context.Background(), "u1", nil)
	require.NoError(t, err)

	assert.Equal(t, 3, us.TotalPointsHome)
	assert.Equal(t, 1, us.TotalPointsAway)
	// 10 minutes of match time against one 40 minute session.
	assert.Equal(t, 25.0, us.MatchTimePercentage)
}

func TestUserStats_MatchWindowCoversFullDSTDay(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 2024-10-27 is a 25 hour day in Berlin (clocks fall back), so midnight
	// plus 24 hours lands at 23:00 local. A match in the final local hour
	// still belongs to the day; one after the next midnight does not.
	lastHour := time.Date(2024, 10, 27, 23, 30, 0, 0, berlin)
	nextDay := time.Date(2024, 10, 28, 0, 30, 0, 0, berlin)

	p := &fakeProvider{
		matches: []*events.MatchEvent{
			{MatchID: "m1", HomeUserID: "u1", AwayUserID: "u2", HomeGoals: 1, AwayGoals: 0, Timestamp: lastHour},
			{MatchID: "m2", HomeUserID: "u1", AwayUserID: "u2", HomeGoals: 1, AwayGoals: 0, Timestamp: nextDay},
		},
	}
	agg := NewAggregator(p, 30*time.Minute, berlin)

	day := time.Date(2024, 10, 27, 0, 0, 0, 0, berlin)
	us, err := agg.UserStats(context.Background(), "u1", &day)
	require.NoError(t, err)
	assert.Equal(t, 3, us.TotalPointsHome)
}

func TestUserStats_NoPlayTimeNoDivisionFault(t *testing.T) {
	p := &fakeProvider{
		matches: []*events.MatchEvent{
			{MatchID: "m1", HomeUserID: "u1", AwayUserID: "u2", HomeGoals: 1, AwayGoals: 0, Timestamp: base},
		},
	}

	us, err := newTestAggregator(p).UserStats(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, us.TotalPointsHome)
	assert.Equal(t, float64(0), us.MatchTimePercentage)
}

func TestUserStats_ProviderErrorPropagates(t *testing.T) {
	p := &fakeProvider{err: errors.New("store unavailable")}

	_, err := newTestAggregator(p).UserStats(context.Background(), "u1", nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "store unavailable")
}

func TestGameStats_Rollup(t *testing.T) {
	p := &fakeProvider{
		pings: []*events.PingEvent{
			// u1: two sessions of 10m and 0s.
			ping("u1", "g1", 0),
			ping("u1", "g1", 10*time.Minute),
			ping("u1", "g1", 50*time.Minute),
			// u2: one session of 20m.
			ping("u2", "g1", 0),
			ping("u2", "g1", 20*time.Minute),
			// Different game, excluded by the game scope.
			ping("u3", "g2", 0),
		},
	}

	gs, err := newTestAggregator(p).GameStats(context.Background(), "g1", nil)
	require.NoError(t, err)

	assert.Equal(t, "g1", gs.GameID)
	assert.Equal(t, 2, gs.ActiveUserCount)
	assert.Equal(t, 3, gs.TotalSessions)
	// (600 + 0 + 1200) / 3 = 600 seconds.
	assert.Equal(t, float64(600), gs.AverageSessionDurationSeconds)
	assert.Equal(t, 1.5, gs.AvgSessionsPerUser)
}

func TestGameStats_AllGamesWhenUnscoped(t *testing.T) {
	p := &fakeProvider{
		pings: []*events.PingEvent{
			ping("u1", "g1", 0),
			ping("u2", "g2", 0),
		},
	}

	gs, err := newTestAggregator(p).GameStats(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, gs.ActiveUserCount)
	assert.Equal(t, 2, gs.TotalSessions)
}

func TestGameStats_NoDataIsZeroValued(t *testing.T) {
	gs, err := newTestAggregator(&fakeProvider{}).GameStats(context.Background(), "g1", nil)
	require.NoError(t, err)

	assert.Equal(t, 0, gs.ActiveUserCount)
	assert.Equal(t, 0, gs.TotalSessions)
	assert.Equal(t, float64(0), gs.AverageSessionDurationSeconds)
	assert.Equal(t, float64(0), gs.AvgSessionsPerUser)
	assert.Empty(t, gs.TopUsersByPoints)
}

func TestGameStats_TopUsersByPoints(t *testing.T) {
	p := &fakeProvider{
		matches: []*events.MatchEvent{
			{MatchID: "m1", HomeUserID: "u1", AwayUserID: "u2", HomeGoals: 2, AwayGoals: 0, Timestamp: base},
			{MatchID: "m2", HomeUserID: "u3", AwayUserID: "u4", HomeGoals: 1, AwayGoals: 0, Timestamp: base},
		},
	}

	gs, err := newTestAggregator(p).GameStats(context.Background(), "", nil)
	require.NoError(t, err)

	// u1 and u3 both won once; ties share the top spot.
	require.Len(t, gs.TopUsersByPoints, 2)
	assert.Equal(t, UserPoints{UserID: "u1", Points: 3}, gs.TopUsersByPoints[0])
	assert.Equal(t, UserPoints{UserID: "u3", Points: 3}, gs.TopUsersByPoints[1])
}

func TestGameStats_DayFilter(t *testing.T) {
	p := &fakeProvider{
		pings: []*events.PingEvent{
			ping("u1", "g1", 0),
			events.NewPingEvent("u1", "g1", base.Add(24*time.Hour)),
		},
	}

	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	gs, err := newTestAggregator(p).GameStats(context.Background(), "g1", &day)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", gs.Date)
	assert.Equal(t, 1, gs.TotalSessions)
	assert.Equal(t, 1, gs.ActiveUserCount)
}
