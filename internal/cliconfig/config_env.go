package cliconfig

import (
	"os"
	"time"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "CONNGUARD_"

// ApplyEnvConfig applies configuration from environment variables (CONNGUARD_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	s.setString("backend-url", env("BACKEND_URL"), &cfg.BackendURL)
	s.setString("anon-key", env("ANON_KEY"), &cfg.AnonKey)
	s.setString("access-token", env("ACCESS_TOKEN"), &cfg.AccessToken)
	s.setString("table", env("TABLE"), &cfg.Table)
	s.setString("row-id", env("ROW_ID"), &cfg.RowID)
	s.setString("backup-store", env("BACKUP_STORE"), &cfg.BackupStore)
	s.setString("backup-dir", env("BACKUP_DIR"), &cfg.BackupDir)
	s.setString("sqlite-path", env("SQLITE_PATH"), &cfg.SQLitePath)
	s.setString("backup-key", env("BACKUP_KEY"), &cfg.BackupKey)
	s.setString("draft", env("DRAFT"), &cfg.DraftPath)
	s.setString("period", env("PERIOD"), &cfg.Period)
	s.setString("probe-addr", env("PROBE_ADDR"), &cfg.ProbeAddr)
	s.setString("amqp-url", env("AMQP_URL"), &cfg.AMQPURL)
	s.setString("amqp-exchange", env("AMQP_EXCHANGE"), &cfg.AMQPExchange)
	s.setString("metrics-addr", env("METRICS_ADDR"), &cfg.MetricsAddr)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)

	durations := []struct {
		flag string
		name string
		dst  *time.Duration
	}{
		{"heartbeat-interval", "HEARTBEAT_INTERVAL", &cfg.HeartbeatInterval},
		{"heartbeat-timeout", "HEARTBEAT_TIMEOUT", &cfg.HeartbeatTimeout},
		{"reconnect-delay", "RECONNECT_DELAY", &cfg.ReconnectBaseDelay},
		{"backup-freshness", "BACKUP_FRESHNESS", &cfg.BackupFreshness},
		{"timeout", "HTTP_TIMEOUT", &cfg.HTTPTimeout},
		{"unload-grace", "UNLOAD_GRACE", &cfg.UnloadGrace},
		{"autosave-debounce", "AUTOSAVE_DEBOUNCE", &cfg.AutosaveDebounce},
		{"probe-interval", "PROBE_INTERVAL", &cfg.ProbeInterval},
	}
	for _, d := range durations {
		if err := s.setDuration(d.flag, env(d.name), d.dst); err != nil {
			return err
		}
	}

	return s.setIntFromString("max-reconnect-attempts", env("MAX_RECONNECT_ATTEMPTS"), &cfg.MaxReconnectAttempts)
}
