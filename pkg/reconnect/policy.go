// Package reconnect implements the bounded exponential backoff used to
// retry failed heartbeat checks.
package reconnect

import "time"

// Defaults match the retry chain 3s, 6s, 12s, 24s, 48s.
const (
	DefaultBaseDelay   = 3 * time.Second
	DefaultMaxAttempts = 5
)

// Version information for the reconnect module.
const (
	Version              = "1.0.0"
	MinCompatibleVersion = "1.0.0"
)

// Config configures a Policy.
type Config struct {
	BaseDelay   time.Duration
	MaxAttempts int
}

// DefaultConfig returns the default retry configuration.
func DefaultConfig() Config {
	return Config{
		BaseDelay:   DefaultBaseDelay,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// Policy counts reconnect attempts and hands out the delay for each one.
// It is not safe for concurrent use; callers serialise access.
type Policy struct {
	base     time.Duration
	max      int
	attempts int
}

// New creates a Policy. Non-positive values fall back to the defaults.
func New(cfg Config) *Policy {
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Policy{base: cfg.BaseDelay, max: cfg.MaxAttempts}
}

// Next consumes one attempt and returns its delay and 1-based number.
// ok is false once the cap is reached; the counter then stays put until Reset.
func (p *Policy) Next() (delay time.Duration, attempt int, ok bool) {
	if p.attempts >= p.max {
		return 0, p.attempts, false
	}
	p.attempts++
	return Delay(p.base, p.attempts), p.attempts, true
}

// Reset clears the attempt counter after a successful check.
func (p *Policy) Reset() {
	p.attempts = 0
}

// Attempts returns the number of attempts consumed since the last Reset.
func (p *Policy) Attempts() int {
	return p.attempts
}

// MaxAttempts returns the attempt cap.
func (p *Policy) MaxAttempts() int {
	return p.max
}

// Exhausted reports whether no attempts remain.
func (p *Policy) Exhausted() bool {
	return p.attempts >= p.max
}

// Delay returns base * 2^(attempt-1). attempt values below 1 are treated as 1.
func Delay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return base << (attempt - 1)
}
