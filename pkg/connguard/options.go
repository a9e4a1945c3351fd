package connguard

import (
	"os"
	"path/filepath"

	"github.com/bft-labs/connguard/pkg/backup"
	"github.com/bft-labs/connguard/pkg/log"
	"github.com/bft-labs/connguard/pkg/netstatus"
)

// Option configures optional behaviour of a Manager.
type Option func(*options)

type options struct {
	logger        log.Logger
	listeners     []Listener
	plugins       []Plugin
	repository    backup.Repository
	clock         Clock
	changes       *ChangeTracker
	prober        *netstatus.Prober
	initialOnline bool
}

func defaultOptions() options {
	return options{
		logger:        log.NewNoopLogger(),
		clock:         realClock{},
		initialOnline: true,
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithListener registers a listener before the Manager starts.
func WithListener(l Listener) Option {
	return func(o *options) {
		o.listeners = append(o.listeners, l)
	}
}

// WithPlugin registers a plugin to be initialized when the Manager starts.
func WithPlugin(p Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, p)
	}
}

// WithRepository sets the backup store. Defaults to a FileRepository under
// the user config directory.
func WithRepository(repo backup.Repository) Option {
	return func(o *options) {
		o.repository = repo
	}
}

// WithClock replaces the wall clock used for timers.
func WithClock(c Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithChangeTracker shares an existing unsaved-changes tracker.
func WithChangeTracker(t *ChangeTracker) Option {
	return func(o *options) {
		o.changes = t
	}
}

// WithProber runs p while the Manager is running and feeds its signals
// into the network observer.
func WithProber(p *netstatus.Prober) Option {
	return func(o *options) {
		o.prober = p
	}
}

// WithInitialOnline sets the network state assumed before the first signal.
// Defaults to true.
func WithInitialOnline(online bool) Option {
	return func(o *options) {
		o.initialOnline = online
	}
}

// DefaultBackupDir returns the directory used by the default repository.
func DefaultBackupDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "connguard")
	}
	return filepath.Join(os.TempDir(), "connguard")
}
