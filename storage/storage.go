// Package storage provides database storage interfaces and implementations.
package storage

import (
	"context"
	"time"

	"github.com/devlastu/pingstat/core/events"
)

// EventStore defines the interface for storing and querying telemetry events.
// Reads are context-aware so an abandoned request stops consuming resources.
type EventStore interface {
	// SavePingEvents persists a batch of ping events in one transaction.
	SavePingEvents(ctx context.Context, pings []*events.PingEvent) error

	// PingEvents retrieves ping events matching the filter, ordered by
	// (user_id, game_id, timestamp). Within a user and game timestamps
	// ascend; across games they do not.
	PingEvents(ctx context.Context, filter *events.PingFilter) ([]*events.PingEvent, error)

	// SaveRegistrations persists a batch of registration events in one
	// transaction. A later registration for the same user replaces the
	// earlier one.
	SaveRegistrations(ctx context.Context, regs []*events.RegistrationEvent) error

	// Registration retrieves the registration for a user, or nil if the
	// user is unknown.
	Registration(ctx context.Context, userID string) (*events.RegistrationEvent, error)

	// SaveMatchEvents persists a batch of match events in one transaction.
	SaveMatchEvents(ctx context.Context, matches []*events.MatchEvent) error

	// MatchEvents retrieves match events matching the filter, ordered by
	// (match_id, timestamp).
	MatchEvents(ctx context.Context, filter *events.MatchFilter) ([]*events.MatchEvent, error)

	// SaveTimezones persists country to IANA timezone mappings, replacing
	// existing entries for the same countries.
	SaveTimezones(ctx context.Context, zones map[string]string) error

	// TimezoneFor returns the IANA timezone name for a country, or empty
	// if unknown.
	TimezoneFor(ctx context.Context, country string) (string, error)
}

// Store combines the event store with its lifecycle operations.
type Store interface {
	EventStore

	// Init initializes the database schema.
	Init(ctx context.Context) error

	// Reset drops all data and recreates the schema. Backs the bulk
	// initialization endpoint.
	Reset(ctx context.Context) error

	// Info returns information about the database.
	Info(ctx context.Context) (*DatabaseInfo, error)

	// Close closes the database connection.
	Close() error
}

// DatabaseInfo contains information about the database.
type DatabaseInfo struct {
	Path              string    `json:"path"`
	SizeBytes         int64     `json:"size_bytes"`
	PingEventCount    int       `json:"ping_event_count"`
	RegistrationCount int       `json:"registration_count"`
	MatchEventCount   int       `json:"match_event_count"`
	OldestPing        time.Time `json:"oldest_ping,omitempty"`
	NewestPing        time.Time `json:"newest_ping,omitempty"`
}
