// Package config provides configuration management for the Reelcut engine.
// Configuration is loaded from a .env file (if present) and environment
// variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Default values
	DefaultPort     = 8790
	DefaultLogLevel = "info"
	DefaultDataDir  = ".reelcut"

	// Environment variable names
	EnvPort             = "REELCUT_PORT"
	EnvLogLevel         = "REELCUT_LOG_LEVEL"
	EnvDataDir          = "REELCUT_DATA_DIR"
	EnvPresenceInterval = "REELCUT_PRESENCE_INTERVAL"

	// Database filename
	DBFilename = "reelcut.db"

	// How often the media catalog re-checks that imported files still exist
	DefaultPresenceInterval = 60 // seconds
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	ProjectsDir() string
	PresenceInterval() time.Duration
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port             int
	logLevel         string
	dataDir          string
	presenceInterval time.Duration
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	// A missing .env file is not an error; env vars still apply.
	_ = godotenv.Load()

	cfg := &EnvConfig{
		port:             DefaultPort,
		logLevel:         DefaultLogLevel,
		dataDir:          defaultDataDir(),
		presenceInterval: DefaultPresenceInterval * time.Second,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if pi := os.Getenv(EnvPresenceInterval); pi != "" {
		secs, err := strconv.Atoi(pi)
		if err != nil || secs < 1 {
			return nil, fmt.Errorf("invalid %s: must be a positive number of seconds", EnvPresenceInterval)
		}
		cfg.presenceInterval = time.Duration(secs) * time.Second
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// ProjectsDir returns the directory project files are saved to by default
func (c *EnvConfig) ProjectsDir() string {
	return filepath.Join(c.dataDir, "projects")
}

// PresenceInterval returns how often media presence is re-checked
func (c *EnvConfig) PresenceInterval() time.Duration {
	return c.presenceInterval
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
