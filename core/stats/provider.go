// Package stats computes per-user and per-game rollups over reconstructed sessions.
package stats

import (
	"context"

	"github.com/devlastu/pingstat/core/events"
)

// EventProvider supplies ordered telemetry events for a scope. It is the
// aggregator's only dependency on the event store; the database-backed store
// implements it, and tests substitute an in-memory provider.
type EventProvider interface {
	// PingEvents returns ping events matching the filter, ordered ascending
	// by timestamp.
	PingEvents(ctx context.Context, filter *events.PingFilter) ([]*events.PingEvent, error)

	// MatchEvents returns match events matching the filter, ordered by
	// (match_id, timestamp).
	MatchEvents(ctx context.Context, filter *events.MatchFilter) ([]*events.MatchEvent, error)

	// Registration returns the registration for a user, or nil if the user
	// is unknown.
	Registration(ctx context.Context, userID string) (*events.RegistrationEvent, error)

	// TimezoneFor returns the IANA timezone name for a country, or empty if
	// unknown.
	TimezoneFor(ctx context.Context, country string) (string, error)
}
