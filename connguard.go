// Package connguard keeps a client application resilient to backend
// connectivity loss.
//
// Example usage:
//
//	m, err := connguard.New(connguard.DefaultConfig(), connguard.Collaborators{
//	    Session: checker,
//	    Saver:   saver,
//	}, connguard.WithLogger(connguard.NewLogger("info")))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m.RestoreFromBackup(ctx)
//	if err := m.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// The implementation lives in github.com/bft-labs/connguard/pkg/connguard;
// this package re-exports the common entry points.
package connguard

import (
	"github.com/bft-labs/connguard/pkg/connguard"
	"github.com/bft-labs/connguard/pkg/log"
)

// Manager tracks connectivity and guards unsaved state.
type Manager = connguard.Manager

// Config holds the timing parameters of a Manager.
type Config = connguard.Config

// Collaborators are the application hooks a Manager drives.
type Collaborators = connguard.Collaborators

// Status is a point-in-time view of connectivity and backup state.
type Status = connguard.Status

// Listener receives connectivity notifications.
type Listener = connguard.Listener

// TeardownEvent is handed to Manager.HandleTeardown on exit.
type TeardownEvent = connguard.TeardownEvent

// Option configures optional behaviour of a Manager.
type Option = connguard.Option

// New creates a Manager. See the pkg/connguard documentation.
func New(cfg Config, collab Collaborators, opts ...Option) (*Manager, error) {
	return connguard.New(cfg, collab, opts...)
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return connguard.DefaultConfig()
}

// NewTeardownEvent creates a teardown event that has not been deferred.
func NewTeardownEvent() *TeardownEvent {
	return connguard.NewTeardownEvent()
}

// WithLogger sets the Manager logger.
func WithLogger(logger log.Logger) Option {
	return connguard.WithLogger(logger)
}

// NewLogger returns a zerolog-backed logger writing to stderr at level
// ("debug", "info", "warn" or "error").
func NewLogger(level string) log.Logger {
	return log.NewZerologAdapter(log.ParseLevel(level))
}

// Version is the library version.
const Version = connguard.Version
