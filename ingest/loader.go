package ingest

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/devlastu/pingstat/storage"
)

// Report summarizes a bulk load.
type Report struct {
	PingEvents    int      `json:"ping_events"`
	Registrations int      `json:"registrations"`
	MatchEvents   int      `json:"match_events"`
	Timezones     int      `json:"timezones"`
	SkippedLines  int      `json:"skipped_lines"`
	Errors        []string `json:"errors,omitempty"`
}

// Loader resets the event store and loads it from telemetry files.
type Loader struct {
	store storage.Store
	log   *zap.Logger
}

// NewLoader creates a Loader writing into the given store.
func NewLoader(store storage.Store, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{store: store, log: log}
}

// Load drops existing data and loads the store from the given events file
// and optional timezones file. Invalid event lines are skipped and reported;
// file-level and storage failures are fatal.
func (l *Loader) Load(ctx context.Context, eventsPath, timezonesPath string) (*Report, error) {
	eventsFile, err := os.Open(eventsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open events file: %w", err)
	}
	defer eventsFile.Close()

	parsed, err := ParseEvents(eventsFile)
	if err != nil {
		return nil, err
	}

	zones := map[string]string{}
	if timezonesPath != "" {
		tzFile, err := os.Open(timezonesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open timezones file: %w", err)
		}
		defer tzFile.Close()

		zones, err = ParseTimezones(tzFile)
		if err != nil {
			return nil, err
		}
	}

	if err := l.store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset store: %w", err)
	}

	if len(zones) > 0 {
		if err := l.store.SaveTimezones(ctx, zones); err != nil {
			return nil, err
		}
	}
	if len(parsed.Registrations) > 0 {
		if err := l.store.SaveRegistrations(ctx, parsed.Registrations); err != nil {
			return nil, err
		}
	}
	if len(parsed.Pings) > 0 {
		if err := l.store.SavePingEvents(ctx, parsed.Pings); err != nil {
			return nil, err
		}
	}
	if len(parsed.Matches) > 0 {
		if err := l.store.SaveMatchEvents(ctx, parsed.Matches); err != nil {
			return nil, err
		}
	}

	report := &Report{
		PingEvents:    len(parsed.Pings),
		Registrations: len(parsed.Registrations),
		MatchEvents:   len(parsed.Matches),
		Timezones:     len(zones),
		SkippedLines:  len(parsed.Errors),
	}
	for _, lineErr := range parsed.Errors {
		report.Errors = append(report.Errors, lineErr.Error())
	}

	l.log.Info("bulk load complete",
		zap.String("events_file", eventsPath),
		zap.Int("ping_events", report.PingEvents),
		zap.Int("registrations", report.Registrations),
		zap.Int("match_events", report.MatchEvents),
		zap.Int("timezones", report.Timezones),
		zap.Int("skipped_lines", report.SkippedLines),
	)

	return report, nil
}
