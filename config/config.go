// Package config provides configuration management using Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Session SessionConfig `mapstructure:"session"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// StorageConfig holds storage-related settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// SessionConfig holds session reconstruction settings.
type SessionConfig struct {
	// Timeout is the session-timeout threshold: the maximum allowed gap
	// between consecutive pings within one session. Tuning it changes
	// every downstream metric.
	Timeout time.Duration `mapstructure:"timeout"`
	// Timezone is the IANA zone used for calendar-day filtering.
	Timezone string `mapstructure:"timezone"`
}

// IngestConfig holds bulk load settings.
type IngestConfig struct {
	EventsFile    string `mapstructure:"events_file"`
	TimezonesFile string `mapstructure:"timezones_file"`
}

// Load loads configuration from the given path or default locations.
// Invalid configuration is fatal at startup, never per-request.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("pingstat")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/pingstat")
	}

	v.SetEnvPrefix("PINGSTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns a Config with all default values.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)

	return &cfg
}

// Location resolves the configured service time zone. Validation guarantees
// it resolves after Load; Default's "UTC" always resolves.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Session.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
