// Package ingest bulk-loads raw telemetry files into the event store.
package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/devlastu/pingstat/core/events"
)

// RawEvent is the wire format of one line in an events JSONL file.
type RawEvent struct {
	EventID        int64           `json:"event_id"`
	EventTimestamp int64           `json:"event_timestamp"`
	EventType      string          `json:"event_type"`
	EventData      json.RawMessage `json:"event_data"`
}

// LineError records a rejected input line. Invalid lines are skipped, not
// fatal: a bulk load keeps whatever validates.
type LineError struct {
	Line int
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// ParsedEvents holds the outcome of parsing an events file, grouped by type.
type ParsedEvents struct {
	Pings         []*events.PingEvent
	Registrations []*events.RegistrationEvent
	Matches       []*events.MatchEvent
	Errors        []LineError
}

type pingData struct {
	UserID string `json:"user_id"`
	GameID string `json:"game_id"`
}

type registrationData struct {
	UserID   string `json:"user_id"`
	Country  string `json:"country"`
	DeviceOS string `json:"device_os"`
}

type matchData struct {
	MatchID    string `json:"match_id"`
	HomeUserID string `json:"home_user_id"`
	AwayUserID string `json:"away_user_id"`
	HomeGoals  *int   `json:"home_goals_scored"`
	AwayGoals  *int   `json:"away_goals_scored"`
}

// ParseEvents reads an events JSONL stream and validates each line.
func ParseEvents(r io.Reader) (*ParsedEvents, error) {
	parsed := &ParsedEvents{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		if err := parseLine(parsed, data); err != nil {
			parsed.Errors = append(parsed.Errors, LineError{Line: line, Err: err})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}

	return parsed, nil
}

func parseLine(parsed *ParsedEvents, data []byte) error {
	var raw RawEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("malformed event: %w", err)
	}
	if raw.EventTimestamp <= 0 {
		return fmt.Errorf("missing event_timestamp")
	}

	eventType, err := events.ParseEventType(raw.EventType)
	if err != nil {
		return err
	}
	ts := time.Unix(raw.EventTimestamp, 0).UTC()

	switch eventType {
	case events.EventSessionPing:
		return parsePing(parsed, raw, ts)
	case events.EventRegistration:
		return parseRegistration(parsed, raw, ts)
	case events.EventMatch:
		return parseMatch(parsed, raw, ts)
	}
	return nil
}

func parsePing(parsed *ParsedEvents, raw RawEvent, ts time.Time) error {
	var d pingData
	if err := json.Unmarshal(raw.EventData, &d); err != nil {
		return fmt.Errorf("malformed session_ping data: %w", err)
	}
	if d.UserID == "" {
		return fmt.Errorf("missing user_id in session_ping")
	}

	parsed.Pings = append(parsed.Pings, &events.PingEvent{
		ID:        pingEventID(raw.EventID),
		UserID:    d.UserID,
		GameID:    d.GameID,
		Timestamp: ts,
		Payload:   raw.EventData,
	})
	return nil
}

func parseRegistration(parsed *ParsedEvents, raw RawEvent, ts time.Time) error {
	var d registrationData
	if err := json.Unmarshal(raw.EventData, &d); err != nil {
		return fmt.Errorf("malformed registration data: %w", err)
	}
	if d.UserID == "" || d.Country == "" || d.DeviceOS == "" {
		return fmt.Errorf("missing fields in registration")
	}
	deviceOS := events.DeviceOS(d.DeviceOS)
	if !deviceOS.IsValid() {
		return fmt.Errorf("invalid device_os: %q", d.DeviceOS)
	}

	parsed.Registrations = append(parsed.Registrations, &events.RegistrationEvent{
		UserID:    d.UserID,
		Country:   d.Country,
		DeviceOS:  deviceOS,
		Timestamp: ts,
	})
	return nil
}

func parseMatch(parsed *ParsedEvents, raw RawEvent, ts time.Time) error {
	var d matchData
	if err := json.Unmarshal(raw.EventData, &d); err != nil {
		return fmt.Errorf("malformed match data: %w", err)
	}
	if d.MatchID == "" || d.HomeUserID == "" || d.AwayUserID == "" {
		return fmt.Errorf("missing fields in match")
	}
	if d.HomeGoals != nil && *d.HomeGoals < 0 {
		return fmt.Errorf("home_goals_scored must be non-negative")
	}
	if d.AwayGoals != nil && *d.AwayGoals < 0 {
		return fmt.Errorf("away_goals_scored must be non-negative")
	}

	m := &events.MatchEvent{
		MatchID:    d.MatchID,
		HomeUserID: d.HomeUserID,
		AwayUserID: d.AwayUserID,
		Timestamp:  ts,
	}
	if d.HomeGoals != nil {
		m.HomeGoals = *d.HomeGoals
	}
	if d.AwayGoals != nil {
		m.AwayGoals = *d.AwayGoals
	}
	parsed.Matches = append(parsed.Matches, m)
	return nil
}

// pingEventID derives a stable UUID from the numeric wire event id, so
// re-ingesting the same file does not duplicate events.
func pingEventID(eventID int64) uuid.UUID {
	if eventID == 0 {
		return uuid.New()
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("ping-"+strconv.FormatInt(eventID, 10)))
}

// timezoneLine is the wire format of one line in a timezones JSONL file.
type timezoneLine struct {
	Country  string `json:"country"`
	Timezone string `json:"timezone"`
}

// ParseTimezones reads a timezones JSONL stream into a country to IANA
// timezone mapping. Zones that do not resolve are rejected.
func ParseTimezones(r io.Reader) (map[string]string, error) {
	zones := make(map[string]string)

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}

		var tz timezoneLine
		if err := json.Unmarshal(data, &tz); err != nil {
			return nil, fmt.Errorf("line %d: malformed timezone: %w", line, err)
		}
		if tz.Country == "" || tz.Timezone == "" {
			return nil, fmt.Errorf("line %d: missing country or timezone", line)
		}
		if _, err := time.LoadLocation(tz.Timezone); err != nil {
			return nil, fmt.Errorf("line %d: unknown timezone %q", line, tz.Timezone)
		}
		zones[tz.Country] = tz.Timezone
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read timezones file: %w", err)
	}

	return zones, nil
}
