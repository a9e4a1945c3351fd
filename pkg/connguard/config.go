package connguard

import (
	"fmt"
	"time"

	"github.com/bft-labs/connguard/pkg/reconnect"
)

// Config holds the timing parameters of a Manager.
// Zero values are replaced by SetDefaults.
type Config struct {
	// HeartbeatInterval is the period of the regular session check. Default: 10s
	HeartbeatInterval time.Duration

	// HeartbeatTimeout bounds a single session check. Default: 5s
	HeartbeatTimeout time.Duration

	// ReconnectBaseDelay is the delay before the first retry; each further
	// retry doubles it. Default: 3s
	ReconnectBaseDelay time.Duration

	// MaxReconnectAttempts caps the retry chain. Default: 5
	MaxReconnectAttempts int

	// BackupFreshness is how long a pending save stays eligible for
	// restoration. Default: 30m
	BackupFreshness time.Duration

	// SaveTimeout bounds the best-effort remote save started at teardown. Default: 15s
	SaveTimeout time.Duration

	// ShutdownTimeout bounds how long Stop waits for background workers. Default: 30s
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var c Config
	c.SetDefaults()
	return c
}

// SetDefaults fills zero-valued fields.
func (c *Config) SetDefaults() {
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = 10 * time.Second
	}
	if c.HeartbeatTimeout == 0 {
		c.HeartbeatTimeout = 5 * time.Second
	}
	if c.ReconnectBaseDelay == 0 {
		c.ReconnectBaseDelay = reconnect.DefaultBaseDelay
	}
	if c.MaxReconnectAttempts == 0 {
		c.MaxReconnectAttempts = reconnect.DefaultMaxAttempts
	}
	if c.BackupFreshness == 0 {
		c.BackupFreshness = 30 * time.Minute
	}
	if c.SaveTimeout == 0 {
		c.SaveTimeout = 15 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
}

// Validate rejects negative or inconsistent values.
func (c Config) Validate() error {
	switch {
	case c.HeartbeatInterval <= 0:
		return fmt.Errorf("%w: heartbeat interval must be positive", ErrInvalidConfig)
	case c.HeartbeatTimeout <= 0:
		return fmt.Errorf("%w: heartbeat timeout must be positive", ErrInvalidConfig)
	case c.ReconnectBaseDelay <= 0:
		return fmt.Errorf("%w: reconnect base delay must be positive", ErrInvalidConfig)
	case c.MaxReconnectAttempts < 1:
		return fmt.Errorf("%w: max reconnect attempts must be at least 1", ErrInvalidConfig)
	case c.MaxReconnectAttempts > 30:
		return fmt.Errorf("%w: max reconnect attempts must be at most 30", ErrInvalidConfig)
	case c.BackupFreshness <= 0:
		return fmt.Errorf("%w: backup freshness must be positive", ErrInvalidConfig)
	case c.SaveTimeout <= 0:
		return fmt.Errorf("%w: save timeout must be positive", ErrInvalidConfig)
	case c.ShutdownTimeout <= 0:
		return fmt.Errorf("%w: shutdown timeout must be positive", ErrInvalidConfig)
	}
	return nil
}
