package config

import (
	"github.com/spf13/viper"
)

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.listen_addr", ":8080")

	// Storage defaults
	v.SetDefault("storage.path", "pingstat.db")

	// Session defaults
	v.SetDefault("session.timeout", "30m")
	v.SetDefault("session.timezone", "UTC")

	// Ingest defaults
	v.SetDefault("ingest.events_file", "events.jsonl")
	v.SetDefault("ingest.timezones_file", "")
}
