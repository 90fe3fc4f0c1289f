package config

import (
	"fmt"
	"time"
)

// validate checks the configuration for errors.
func validate(cfg *Config) error {
	if cfg.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr must not be empty")
	}

	if cfg.Storage.Path == "" {
		return fmt.Errorf("storage.path must not be empty")
	}

	// The session timeout drives every downstream metric; a zero or
	// negative threshold would merge or split every session.
	if cfg.Session.Timeout <= 0 {
		return fmt.Errorf("session.timeout must be positive, got %s", cfg.Session.Timeout)
	}

	if cfg.Session.Timezone == "" {
		return fmt.Errorf("session.timezone must not be empty")
	}
	if _, err := time.LoadLocation(cfg.Session.Timezone); err != nil {
		return fmt.Errorf("invalid session.timezone: %s", cfg.Session.Timezone)
	}

	return nil
}
