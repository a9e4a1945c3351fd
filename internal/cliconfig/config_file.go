package cliconfig

import (
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	BackendURL           string `toml:"backend_url"`
	AnonKey              string `toml:"anon_key"`
	AccessToken          string `toml:"access_token"`
	Table                string `toml:"table"`
	RowID                string `toml:"row_id"`
	HeartbeatInterval    string `toml:"heartbeat_interval"`
	HeartbeatTimeout     string `toml:"heartbeat_timeout"`
	ReconnectBaseDelay   string `toml:"reconnect_delay"`
	MaxReconnectAttempts int    `toml:"max_reconnect_attempts"`
	BackupFreshness      string `toml:"backup_freshness"`
	HTTPTimeout          string `toml:"http_timeout"`
	UnloadGrace          string `toml:"unload_grace"`
	AutosaveDebounce     string `toml:"autosave_debounce"`
	BackupStore          string `toml:"backup_store"`
	BackupDir            string `toml:"backup_dir"`
	SQLitePath           string `toml:"sqlite_path"`
	BackupKey            string `toml:"backup_key"`
	DraftPath            string `toml:"draft"`
	Period               string `toml:"period"`
	ProbeAddr            string `toml:"probe_addr"`
	ProbeInterval        string `toml:"probe_interval"`
	AMQPURL              string `toml:"amqp_url"`
	AMQPExchange         string `toml:"amqp_exchange"`
	MetricsAddr          string `toml:"metrics_addr"`
	LogLevel             string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.connguard/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if home := DefaultHomeDir(); home != "" {
		return filepath.Join(home, "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("backend-url", fc.BackendURL, &cfg.BackendURL)
	s.setString("anon-key", fc.AnonKey, &cfg.AnonKey)
	s.setString("access-token", fc.AccessToken, &cfg.AccessToken)
	s.setString("table", fc.Table, &cfg.Table)
	s.setString("row-id", fc.RowID, &cfg.RowID)
	s.setString("backup-store", fc.BackupStore, &cfg.BackupStore)
	s.setString("backup-dir", fc.BackupDir, &cfg.BackupDir)
	s.setString("sqlite-path", fc.SQLitePath, &cfg.SQLitePath)
	s.setString("backup-key", fc.BackupKey, &cfg.BackupKey)
	s.setString("draft", fc.DraftPath, &cfg.DraftPath)
	s.setString("period", fc.Period, &cfg.Period)
	s.setString("probe-addr", fc.ProbeAddr, &cfg.ProbeAddr)
	s.setString("amqp-url", fc.AMQPURL, &cfg.AMQPURL)
	s.setString("amqp-exchange", fc.AMQPExchange, &cfg.AMQPExchange)
	s.setString("metrics-addr", fc.MetricsAddr, &cfg.MetricsAddr)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	durations := []struct {
		flag  string
		value string
		dst   *time.Duration
	}{
		{"heartbeat-interval", fc.HeartbeatInterval, &cfg.HeartbeatInterval},
		{"heartbeat-timeout", fc.HeartbeatTimeout, &cfg.HeartbeatTimeout},
		{"reconnect-delay", fc.ReconnectBaseDelay, &cfg.ReconnectBaseDelay},
		{"backup-freshness", fc.BackupFreshness, &cfg.BackupFreshness},
		{"timeout", fc.HTTPTimeout, &cfg.HTTPTimeout},
		{"unload-grace", fc.UnloadGrace, &cfg.UnloadGrace},
		{"autosave-debounce", fc.AutosaveDebounce, &cfg.AutosaveDebounce},
		{"probe-interval", fc.ProbeInterval, &cfg.ProbeInterval},
	}
	for _, d := range durations {
		if err := s.setDuration(d.flag, d.value, d.dst); err != nil {
			return err
		}
	}

	s.setInt("max-reconnect-attempts", fc.MaxReconnectAttempts, &cfg.MaxReconnectAttempts)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
