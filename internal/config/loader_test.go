package config

import (
	"os"
	"testing"
	"time"
)

var allVariables = []string{
	"SCHEDULER_HTTP_PORT",
	"SCHEDULER_STORE",
	"SCHEDULER_SQLITE_DSN",
	"SCHEDULER_POSTGRES_DSN",
	"SCHEDULER_DEFAULT_STATION_ID",
	"SCHEDULER_LOG_LEVEL",
	"SCHEDULER_LOG_FORMAT",
	"SCHEDULER_SHUTDOWN_TIMEOUT",
}

func clearEnvironment(t *testing.T) {
	t.Helper()
	for _, key := range allVariables {
		// Register restoration before unsetting.
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnvironment(t)

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.Store != StoreSQLite {
			t.Fatalf("expected sqlite store by default, got %q", cfg.Store)
		}
		if cfg.SQLiteDSN != "scheduler.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.DefaultStationID != 1 {
			t.Fatalf("expected default station 1, got %d", cfg.DefaultStationID)
		}
		if cfg.LogLevel != "info" || cfg.LogFormat != "json" {
			t.Fatalf("unexpected logging defaults: %q %q", cfg.LogLevel, cfg.LogFormat)
		}
		if cfg.ShutdownTimeout != 10*time.Second {
			t.Fatalf("unexpected shutdown timeout: %s", cfg.ShutdownTimeout)
		}
	})

	t.Run("errors when postgres is selected without a DSN", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("SCHEDULER_STORE", "postgres")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "必須の環境変数が設定されていません: SCHEDULER_POSTGRES_DSN"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses every field", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("SCHEDULER_HTTP_PORT", "9090")
		t.Setenv("SCHEDULER_STORE", "Postgres")
		t.Setenv("SCHEDULER_POSTGRES_DSN", "postgres://localhost/trains")
		t.Setenv("SCHEDULER_SQLITE_DSN", "/tmp/trains.db")
		t.Setenv("SCHEDULER_DEFAULT_STATION_ID", "3")
		t.Setenv("SCHEDULER_LOG_LEVEL", "DEBUG")
		t.Setenv("SCHEDULER_LOG_FORMAT", "text")
		t.Setenv("SCHEDULER_SHUTDOWN_TIMEOUT", "3s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		want := Config{
			HTTPPort:         9090,
			Store:            StorePostgres,
			SQLiteDSN:        "/tmp/trains.db",
			PostgresDSN:      "postgres://localhost/trains",
			DefaultStationID: 3,
			LogLevel:         "debug",
			LogFormat:        "text",
			ShutdownTimeout:  3 * time.Second,
		}
		if cfg != want {
			t.Fatalf("unexpected config:\n got %#v\nwant %#v", cfg, want)
		}
	})

	t.Run("reports every invalid value", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("SCHEDULER_HTTP_PORT", "abc")
		t.Setenv("SCHEDULER_STORE", "redis")
		t.Setenv("SCHEDULER_DEFAULT_STATION_ID", "0")
		t.Setenv("SCHEDULER_SHUTDOWN_TIMEOUT", "-1s")

		_, err := Load()
		if err == nil {
			t.Fatalf("expected error for invalid values")
		}
		expected := "環境変数の値が不正です: SCHEDULER_HTTP_PORT, SCHEDULER_STORE, SCHEDULER_DEFAULT_STATION_ID, SCHEDULER_SHUTDOWN_TIMEOUT"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})
}
