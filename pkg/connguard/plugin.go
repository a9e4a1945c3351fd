package connguard

import (
	"context"

	"github.com/bft-labs/connguard/pkg/log"
)

// Plugin extends a Manager with optional behaviour.
// Plugins are initialized in registration order on Start and shut down in
// reverse order on Stop.
type Plugin interface {
	// Name returns a unique identifier used in logs.
	Name() string

	// Initialize is called during Start. ctx is cancelled when the Manager stops.
	// Returning an error aborts Start and moves the Manager to StateCrashed.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called during Stop. Errors are logged and do not prevent
	// other plugins from shutting down.
	Shutdown(ctx context.Context) error
}

// PluginConfig is the view of the Manager exposed to plugins.
type PluginConfig struct {
	Logger  log.Logger
	Changes *ChangeTracker

	// Saver is the configured Saver, or nil.
	Saver Saver

	// Connected reports whether the last heartbeat succeeded.
	Connected func() bool
}

// BasePlugin is a Plugin whose Initialize and Shutdown do nothing.
// Embed it to implement only the hooks you need.
type BasePlugin struct {
	name string
}

// NewBasePlugin creates a BasePlugin reporting name.
func NewBasePlugin(name string) BasePlugin {
	return BasePlugin{name: name}
}

func (p BasePlugin) Name() string                                  { return p.name }
func (BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }
func (BasePlugin) Shutdown(context.Context) error                 { return nil }
