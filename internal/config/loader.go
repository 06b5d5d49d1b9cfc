package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store names accepted by SCHEDULER_STORE.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config captures environment driven configuration values for the scheduler service.
type Config struct {
	HTTPPort         int
	Store            string
	SQLiteDSN        string
	PostgresDSN      string
	DefaultStationID int64
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields while validating
// required values and reporting localized error messages for missing entries.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:         8080,
		Store:            StoreSQLite,
		SQLiteDSN:        "scheduler.db",
		DefaultStationID: 1,
		LogLevel:         "info",
		LogFormat:        "json",
		ShutdownTimeout:  10 * time.Second,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := env("SCHEDULER_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "SCHEDULER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if store := strings.ToLower(env("SCHEDULER_STORE")); store != "" {
		switch store {
		case StoreSQLite, StorePostgres, StoreMemory:
			cfg.Store = store
		default:
			invalid = append(invalid, "SCHEDULER_STORE")
		}
	}

	if dsn := env("SCHEDULER_SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if dsn := env("SCHEDULER_POSTGRES_DSN"); dsn != "" {
		cfg.PostgresDSN = dsn
	} else if cfg.Store == StorePostgres {
		missing = append(missing, "SCHEDULER_POSTGRES_DSN")
	}

	if stationValue := env("SCHEDULER_DEFAULT_STATION_ID"); stationValue != "" {
		id, err := strconv.ParseInt(stationValue, 10, 64)
		if err != nil || id <= 0 {
			invalid = append(invalid, "SCHEDULER_DEFAULT_STATION_ID")
		} else {
			cfg.DefaultStationID = id
		}
	}

	if level := strings.ToLower(env("SCHEDULER_LOG_LEVEL")); level != "" {
		switch level {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = level
		default:
			invalid = append(invalid, "SCHEDULER_LOG_LEVEL")
		}
	}

	if format := strings.ToLower(env("SCHEDULER_LOG_FORMAT")); format != "" {
		switch format {
		case "json", "text":
			cfg.LogFormat = format
		default:
			invalid = append(invalid, "SCHEDULER_LOG_FORMAT")
		}
	}

	if timeoutValue := env("SCHEDULER_SHUTDOWN_TIMEOUT"); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "SCHEDULER_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("必須の環境変数が設定されていません: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
