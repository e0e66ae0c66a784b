package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Database configuration.
	DBDriver           string
	DBHost             string
	DBPort             int
	DBUser             string
	DBPassword         string
	DBName             string
	DBSQLitePath       string
	DBMaxOpenConns     int
	SlowQueryThreshold time.Duration

	// NASA Astronomy Picture of the Day configuration.
	APODEnabled  bool
	APODAPIKey   string
	APODBaseURL  string
	APODTimeout  time.Duration
	APODCacheTTL time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	dbPort, err := parsePositiveInt("DB_PORT", "3306")
	if err != nil {
		return nil, err
	}
	maxOpen, err := parsePositiveInt("DB_MAX_OPEN_CONNS", "10")
	if err != nil {
		return nil, err
	}
	slow, err := parseDuration("DB_SLOW_QUERY_THRESHOLD", "500ms")
	if err != nil {
		return nil, err
	}
	apodTimeout, err := parseDuration("APOD_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	apodTTL, err := parseDuration("APOD_CACHE_TTL", "1h")
	if err != nil {
		return nil, err
	}

	apodEnabled := true
	if v := os.Getenv("APOD_ENABLED"); v != "" {
		apodEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DBDriver:           sharedcfg.EnvOrDefault("DB_DRIVER", DriverMySQL),
		DBHost:             sharedcfg.EnvOrDefault("DB_HOST", "localhost"),
		DBPort:             dbPort,
		DBUser:             sharedcfg.EnvOrDefault("DB_USER", "root"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBName:             sharedcfg.EnvOrDefault("DB_NAME", "NEO_DB"),
		DBSQLitePath:       sharedcfg.EnvOrDefault("DB_SQLITE_PATH", "neo.db"),
		DBMaxOpenConns:     maxOpen,
		SlowQueryThreshold: slow,

		APODEnabled:  apodEnabled,
		APODAPIKey:   sharedcfg.EnvOrDefault("APOD_API_KEY", "DEMO_KEY"),
		APODBaseURL:  sharedcfg.EnvOrDefault("APOD_BASE_URL", "https://api.nasa.gov/planetary/apod"),
		APODTimeout:  apodTimeout,
		APODCacheTTL: apodTTL,
	}

	switch cfg.DBDriver {
	case DriverMySQL:
		if cfg.DBName == "" {
			return nil, errors.New("DB_NAME is required for the mysql driver")
		}
	case DriverSQLite:
		if cfg.DBSQLitePath == "" {
			return nil, errors.New("DB_SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: want mysql or sqlite", cfg.DBDriver)
	}
	if cfg.APODEnabled && cfg.APODAPIKey == "" {
		return nil, errors.New("APOD_ENABLED is true but APOD_API_KEY is empty")
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key, def string) (int, error) {
	n, err := strconv.Atoi(sharedcfg.EnvOrDefault(key, def))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}
