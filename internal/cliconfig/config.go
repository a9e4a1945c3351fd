package cliconfig

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Backup store kinds.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// DefaultTable is the REST table holding per-period documents.
const DefaultTable = "periodi"

// Config holds CLI configuration for connguard.
type Config struct {
	BackendURL  string
	AnonKey     string
	AccessToken string
	Table       string
	RowID       string

	HeartbeatInterval    time.Duration
	HeartbeatTimeout     time.Duration
	ReconnectBaseDelay   time.Duration
	MaxReconnectAttempts int
	BackupFreshness      time.Duration
	HTTPTimeout          time.Duration
	UnloadGrace          time.Duration
	AutosaveDebounce     time.Duration

	BackupStore string
	BackupDir   string
	SQLitePath  string
	BackupKey   string

	DraftPath string
	Period    string

	ProbeAddr     string
	ProbeInterval time.Duration

	AMQPURL      string
	AMQPExchange string
	MetricsAddr  string
	LogLevel     string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Table:                DefaultTable,
		HeartbeatInterval:    10 * time.Second,
		HeartbeatTimeout:     5 * time.Second,
		ReconnectBaseDelay:   3 * time.Second,
		MaxReconnectAttempts: 5,
		BackupFreshness:      30 * time.Minute,
		HTTPTimeout:          15 * time.Second,
		UnloadGrace:          5 * time.Second,
		AutosaveDebounce:     2 * time.Second,
		BackupStore:          StoreFile,
		BackupKey:            "pendingSave",
		ProbeInterval:        5 * time.Second,
		AMQPExchange:         "connguard.events",
		LogLevel:             "info",
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend-url is required")
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("parse backend-url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("backend-url must be http or https, got %q", c.BackendURL)
	}
	if u.Host == "" {
		return fmt.Errorf("backend-url has no host: %q", c.BackendURL)
	}
	c.BackendURL = strings.TrimRight(c.BackendURL, "/")

	if c.AnonKey == "" {
		return fmt.Errorf("anon-key is required")
	}
	if c.DraftPath == "" {
		return fmt.Errorf("draft is required")
	}
	if c.Table == "" {
		c.Table = DefaultTable
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"heartbeat-interval", c.HeartbeatInterval},
		{"heartbeat-timeout", c.HeartbeatTimeout},
		{"reconnect-delay", c.ReconnectBaseDelay},
		{"backup-freshness", c.BackupFreshness},
		{"timeout", c.HTTPTimeout},
		{"unload-grace", c.UnloadGrace},
		{"probe-interval", c.ProbeInterval},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive", d.name)
		}
	}
	if c.AutosaveDebounce < 0 {
		return fmt.Errorf("autosave-debounce must not be negative")
	}
	if c.MaxReconnectAttempts < 1 || c.MaxReconnectAttempts > 30 {
		return fmt.Errorf("max-reconnect-attempts must be between 1 and 30")
	}

	switch c.BackupStore {
	case StoreFile, StoreSQLite:
	case "":
		c.BackupStore = StoreFile
	default:
		return fmt.Errorf("backup-store must be %q or %q, got %q", StoreFile, StoreSQLite, c.BackupStore)
	}
	if c.BackupKey == "" {
		c.BackupKey = "pendingSave"
	}

	if c.AMQPURL != "" && c.AMQPExchange == "" {
		return fmt.Errorf("amqp-exchange is required when amqp-url is set")
	}

	return resolveDerived(c, u)
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}
