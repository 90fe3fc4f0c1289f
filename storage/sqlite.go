package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devlastu/pingstat/core/events"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// _pragma=foreign_keys(1) is the modernc.org/sqlite DSN form.
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ping_events (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		game_id TEXT NOT NULL DEFAULT '',
		ts INTEGER NOT NULL,
		payload BLOB
	);`,
	`CREATE INDEX IF NOT EXISTS idx_ping_events_scope ON ping_events(user_id, game_id, ts);`,
	`CREATE INDEX IF NOT EXISTS idx_ping_events_ts ON ping_events(ts);`,
	`CREATE TABLE IF NOT EXISTS registrations (
		user_id TEXT PRIMARY KEY,
		country TEXT NOT NULL,
		device_os TEXT NOT NULL,
		ts INTEGER NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS match_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id TEXT NOT NULL,
		home_user_id TEXT NOT NULL,
		away_user_id TEXT NOT NULL,
		home_goals INTEGER NOT NULL DEFAULT 0,
		away_goals INTEGER NOT NULL DEFAULT 0,
		ts INTEGER NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_match_events_match ON match_events(match_id, ts);`,
	`CREATE INDEX IF NOT EXISTS idx_match_events_home ON match_events(home_user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_match_events_away ON match_events(away_user_id);`,
	`CREATE TABLE IF NOT EXISTS timezones (
		country TEXT PRIMARY KEY,
		timezone TEXT NOT NULL
	);`,
}

// Init initializes the database schema.
func (s *SQLiteStore) Init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Reset drops all data and recreates the schema.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	tables := []string{"ping_events", "registrations", "match_events", "timezones"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return s.Init(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SavePingEvents persists a batch of ping events in one transaction.
func (s *SQLiteStore) SavePingEvents(ctx context.Context, pings []*events.PingEvent) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO ping_events (id, user_id, game_id, ts, payload) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, p := range pings {
			var payload []byte
			if len(p.Payload) > 0 {
				payload = p.Payload
			}
			if _, err := stmt.ExecContext(ctx, p.ID.String(), p.UserID, p.GameID, p.Timestamp.UnixNano(), payload); err != nil {
				return fmt.Errorf("failed to save ping event %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

// PingEvents retrieves ping events matching the filter, ordered ascending by timestamp.
func (s *SQLiteStore) PingEvents(ctx context.Context, filter *events.PingFilter) ([]*events.PingEvent, error) {
	query := `SELECT id, user_id, game_id, ts, payload FROM ping_events`
	where, args := pingPredicates(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY user_id, game_id, ts"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ping events: %w", err)
	}
	defer rows.Close()

	var result []*events.PingEvent
	for rows.Next() {
		var (
			id      string
			p       events.PingEvent
			ts      int64
			payload []byte
		)
		if err := rows.Scan(&id, &p.UserID, &p.GameID, &ts, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan ping event: %w", err)
		}
		eid, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("corrupt ping event id %q: %w", id, err)
		}
		p.ID = eid
		p.Timestamp = time.Unix(0, ts).UTC()
		p.Payload = payload
		result = append(result, &p)
	}

	return result, rows.Err()
}

// SaveRegistrations persists a batch of registration events in one transaction.
func (s *SQLiteStore) SaveRegistrations(ctx context.Context, regs []*events.RegistrationEvent) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO registrations (user_id, country, device_os, ts) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, r := range regs {
			if _, err := stmt.ExecContext(ctx, r.UserID, r.Country, string(r.DeviceOS), r.Timestamp.UnixNano()); err != nil {
				return fmt.Errorf("failed to save registration for %s: %w", r.UserID, err)
			}
		}
		return nil
	})
}

// Registration retrieves the registration for a user, or nil if unknown.
func (s *SQLiteStore) Registration(ctx context.Context, userID string) (*events.RegistrationEvent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, country, device_os, ts FROM registrations WHERE user_id = ?`, userID)

	var (
		r        events.RegistrationEvent
		deviceOS string
		ts       int64
	)
	if err := row.Scan(&r.UserID, &r.Country, &deviceOS, &ts); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	r.DeviceOS = events.DeviceOS(deviceOS)
	r.Timestamp = time.Unix(0, ts).UTC()

	return &r, nil
}

// SaveMatchEvents persists a batch of match events in one transaction.
func (s *SQLiteStore) SaveMatchEvents(ctx context.Context, matches []*events.MatchEvent) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO match_events (match_id, home_user_id, away_user_id, home_goals, away_goals, ts)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, m := range matches {
			if _, err := stmt.ExecContext(ctx,
				m.MatchID, m.HomeUserID, m.AwayUserID, m.HomeGoals, m.AwayGoals, m.Timestamp.UnixNano()); err != nil {
				return fmt.Errorf("failed to save match event %s: %w", m.MatchID, err)
			}
		}
		return nil
	})
}

// MatchEvents retrieves match events matching the filter, ordered by (match_id, timestamp).
func (s *SQLiteStore) MatchEvents(ctx context.Context, filter *events.MatchFilter) ([]*events.MatchEvent, error) {
	query := `SELECT match_id, home_user_id, away_user_id, home_goals, away_goals, ts FROM match_events`
	where, args := matchPredicates(filter)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY match_id, ts"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query match events: %w", err)
	}
	defer rows.Close()

	var result []*events.MatchEvent
	for rows.Next() {
		var (
			m  events.MatchEvent
			ts int64
		)
		if err := rows.Scan(&m.MatchID, &m.HomeUserID, &m.AwayUserID, &m.HomeGoals, &m.AwayGoals, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan match event: %w", err)
		}
		m.Timestamp = time.Unix(0, ts).UTC()
		result = append(result, &m)
	}

	return result, rows.Err()
}

// SaveTimezones persists country to timezone mappings.
func (s *SQLiteStore) SaveTimezones(ctx context.Context, zones map[string]string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT OR REPLACE INTO timezones (country, timezone) VALUES (?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for country, tz := range zones {
			if _, err := stmt.ExecContext(ctx, country, tz); err != nil {
				return fmt.Errorf("failed to save timezone for %s: %w", country, err)
			}
		}
		return nil
	})
}

// TimezoneFor returns the IANA timezone name for a country, or empty if unknown.
func (s *SQLiteStore) TimezoneFor(ctx context.Context, country string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT timezone FROM timezones WHERE country = ?`, country)

	var tz string
	if err := row.Scan(&tz); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get timezone: %w", err)
	}
	return tz, nil
}

// Info returns information about the database.
func (s *SQLiteStore) Info(ctx context.Context) (*DatabaseInfo, error) {
	info := &DatabaseInfo{Path: s.path}

	if stat, err := os.Stat(s.path); err == nil {
		info.SizeBytes = stat.Size()
	}

	counts := []struct {
		query string
		dst   *int
	}{
		{`SELECT COUNT(*) FROM ping_events`, &info.PingEventCount},
		{`SELECT COUNT(*) FROM registrations`, &info.RegistrationCount},
		{`SELECT COUNT(*) FROM match_events`, &info.MatchEventCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to count rows: %w", err)
		}
	}

	var oldest, newest sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MIN(ts), MAX(ts) FROM ping_events`).Scan(&oldest, &newest); err != nil {
		return nil, fmt.Errorf("failed to get ping bounds: %w", err)
	}
	if oldest.Valid {
		info.OldestPing = time.Unix(0, oldest.Int64).UTC()
	}
	if newest.Valid {
		info.NewestPing = time.Unix(0, newest.Int64).UTC()
	}

	return info, nil
}

// inTx runs fn inside a transaction, committing on success.
func (s *SQLiteStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			// Best-effort rollback.
			_ = rerr
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// pingPredicates builds WHERE conditions from a PingFilter.
func pingPredicates(filter *events.PingFilter) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.GameID != "" {
		where = append(where, "game_id = ?")
		args = append(args, filter.GameID)
	}
	if filter.Since != nil {
		where = append(where, "ts >= ?")
		args = append(args, filter.Since.UnixNano())
	}
	if filter.Until != nil {
		where = append(where, "ts < ?")
		args = append(args, filter.Until.UnixNano())
	}
	return where, args
}

// matchPredicates builds WHERE conditions from a MatchFilter.
func matchPredicates(filter *events.MatchFilter) ([]string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.UserID != "" {
		where = append(where, "(home_user_id = ? OR away_user_id = ?)")
		args = append(args, filter.UserID, filter.UserID)
	}
	if filter.Since != nil {
		where = append(where, "ts >= ?")
		args = append(args, filter.Since.UnixNano())
	}
	if filter.Until != nil {
		where = append(where, "ts < ?")
		args = append(args, filter.Until.UnixNano())
	}
	return where, args
}

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)
