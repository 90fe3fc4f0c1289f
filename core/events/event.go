package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PingEvent is a single session liveness signal sent by a game client.
// Ping events are immutable facts: they are bulk ingested and never mutated.
type PingEvent struct {
	// ID is the unique identifier for this event.
	ID uuid.UUID `json:"id"`
	// UserID identifies the user the ping belongs to.
	UserID string `json:"user_id"`
	// GameID identifies the game the ping belongs to. May be empty for
	// clients that report a single implicit game.
	GameID string `json:"game_id,omitempty"`
	// Timestamp is when the client emitted the ping (UTC).
	Timestamp time.Time `json:"timestamp"`
	// Payload contains optional client-specific data.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewPingEvent creates a PingEvent with a generated UUID.
func NewPingEvent(userID, gameID string, ts time.Time) *PingEvent {
	return &PingEvent{
		ID:        uuid.New(),
		UserID:    userID,
		GameID:    gameID,
		Timestamp: ts.UTC(),
	}
}

// RegistrationEvent records a user registration.
type RegistrationEvent struct {
	// UserID identifies the registered user.
	UserID string `json:"user_id"`
	// Country is the two-letter country code reported at registration.
	Country string `json:"country"`
	// DeviceOS is the client platform.
	DeviceOS DeviceOS `json:"device_os"`
	// Timestamp is the registration time (UTC).
	Timestamp time.Time `json:"timestamp"`
}

// MatchEvent records a single match report between two users.
type MatchEvent struct {
	// MatchID groups events belonging to the same match.
	MatchID string `json:"match_id"`
	// HomeUserID is the home-side user.
	HomeUserID string `json:"home_user_id"`
	// AwayUserID is the away-side user.
	AwayUserID string `json:"away_user_id"`
	// HomeGoals is the home-side score at the time of the event.
	HomeGoals int `json:"home_goals_scored"`
	// AwayGoals is the away-side score at the time of the event.
	AwayGoals int `json:"away_goals_scored"`
	// Timestamp is when the event occurred (UTC).
	Timestamp time.Time `json:"timestamp"`
}

// Involves returns true if the given user played either side of the match.
func (m *MatchEvent) Involves(userID string) bool {
	return m.HomeUserID == userID || m.AwayUserID == userID
}

// PointsFor returns the league points the given user earned from this match
// result: three for a win, one for a draw, zero otherwise.
func (m *MatchEvent) PointsFor(userID string) int {
	switch {
	case m.HomeGoals == m.AwayGoals && m.Involves(userID):
		return 1
	case m.HomeUserID == userID && m.HomeGoals > m.AwayGoals:
		return 3
	case m.AwayUserID == userID && m.AwayGoals > m.HomeGoals:
		return 3
	default:
		return 0
	}
}
