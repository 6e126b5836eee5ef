// Package config loads the provenance store's ambient configuration from
// environment variables, following the teacher's Neo4j-style naming and
// LoadFromEnv/Validate shape, trimmed to what this core actually reads
// (§2.1, §6): where the on-disk store lives and how verbosely it logs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the provenance store's runtime configuration.
type Config struct {
	// DBLocation is the on-disk directory for the BadgerEngine, taken from
	// PROVENANCE_DB_LOCATION or defaulting to $HOME/provenance.db (§6).
	DBLocation string

	// LogLevel gates the client's debug logging (see ShouldLog):
	// "debug", "info" (default), "warn", or "error".
	LogLevel string
}

// LoadFromEnv builds a Config from the process environment, applying
// defaults for anything unset.
func LoadFromEnv() *Config {
	home, _ := os.UserHomeDir()
	defaultLocation := filepath.Join(home, "provenance.db")

	return &Config{
		DBLocation: getEnv("PROVENANCE_DB_LOCATION", defaultLocation),
		LogLevel:   strings.ToLower(getEnv("PROVENANCE_LOG_LEVEL", "info")),
	}
}

// Validate reports whether the configuration is usable.
func (c *Config) Validate() error {
	if c.DBLocation == "" {
		return fmt.Errorf("config: PROVENANCE_DB_LOCATION resolved to an empty path")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid PROVENANCE_LOG_LEVEL %q", c.LogLevel)
	}
	return nil
}

// String renders a one-line summary suitable for startup logging.
func (c *Config) String() string {
	return fmt.Sprintf("Config{dbLocation=%s logLevel=%s}", c.DBLocation, c.LogLevel)
}

var logLevelSeverity = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// ShouldLog reports whether a message at level should be emitted given
// c.LogLevel, e.g. ShouldLog("debug") is false when LogLevel is "info".
// An unrecognized level (on either side) is always logged, erring toward
// visibility.
func (c *Config) ShouldLog(level string) bool {
	msgSeverity, ok := logLevelSeverity[level]
	if !ok {
		return true
	}
	configSeverity, ok := logLevelSeverity[c.LogLevel]
	if !ok {
		return true
	}
	return msgSeverity >= configSeverity
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
