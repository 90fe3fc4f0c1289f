// Package events provides the core telemetry event model for the analytics pipeline.
package events

import "fmt"

// EventType represents the type of a raw telemetry event.
type EventType string

const (
	// EventRegistration indicates a user registered.
	EventRegistration EventType = "registration"
	// EventSessionPing indicates a periodic liveness signal during active play.
	EventSessionPing EventType = "session_ping"
	// EventMatch indicates a match result report.
	EventMatch EventType = "match"
)

// knownEventTypes is the single source of truth for event type validation.
var knownEventTypes = map[EventType]bool{
	EventRegistration: true,
	EventSessionPing:  true,
	EventMatch:        true,
}

// String returns the string representation of an EventType.
func (t EventType) String() string {
	return string(t)
}

// IsValid returns true if the EventType is a known type.
func (t EventType) IsValid() bool {
	return knownEventTypes[t]
}

// ParseEventType parses a string into an EventType.
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if t.IsValid() {
		return t, nil
	}
	return "", fmt.Errorf("invalid event type: %q", s)
}

// DeviceOS represents the operating system a registration came from.
type DeviceOS string

const (
	// DeviceIOS is an iOS client.
	DeviceIOS DeviceOS = "iOS"
	// DeviceAndroid is an Android client.
	DeviceAndroid DeviceOS = "Android"
	// DeviceWeb is a browser client.
	DeviceWeb DeviceOS = "Web"
)

var knownDeviceOS = map[DeviceOS]bool{
	DeviceIOS:     true,
	DeviceAndroid: true,
	DeviceWeb:     true,
}

// IsValid returns true if the DeviceOS is a known platform.
func (d DeviceOS) IsValid() bool {
	return knownDeviceOS[d]
}
