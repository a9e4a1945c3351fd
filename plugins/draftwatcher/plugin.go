// Package draftwatcher marks the draft file as unsaved whenever it changes
// on disk and, unless disabled, autosaves it after a quiet period.
package draftwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/connguard/pkg/connguard"
	"github.com/bft-labs/connguard/pkg/log"
)

// Config holds options for the draft watcher.
type Config struct {
	// Path is the draft file to watch. An empty path disables the plugin.
	Path string

	// DebounceDelay is the quiet period after the last change before saving.
	// Default: 2 seconds
	DebounceDelay time.Duration

	// RetryInterval is the delay before trying again when a save fails or the
	// backend is unreachable.
	// Default: 10 seconds
	RetryInterval time.Duration

	// SaveTimeout bounds one autosave.
	// Default: 15 seconds
	SaveTimeout time.Duration

	// DisableAutosave keeps change tracking but never saves; unsaved edits
	// are then only flushed by the teardown save.
	DisableAutosave bool
}

// DefaultConfig returns a Config with defaults and no path.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 2 * time.Second,
		RetryInterval: 10 * time.Second,
		SaveTimeout:   15 * time.Second,
	}
}

// Plugin implements draft watching.
type Plugin struct {
	mu sync.Mutex

	path            string
	debounceDelay   time.Duration
	retryInterval   time.Duration
	saveTimeout     time.Duration
	autosaveEnabled bool

	logger    log.Logger
	changes   *connguard.ChangeTracker
	saver     connguard.Saver
	connected func() bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
	timer  *time.Timer
}

// New creates a draft watcher.
func New(cfg Config) *Plugin {
	def := DefaultConfig()
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = def.DebounceDelay
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = def.RetryInterval
	}
	if cfg.SaveTimeout <= 0 {
		cfg.SaveTimeout = def.SaveTimeout
	}
	return &Plugin{
		path:            cfg.Path,
		debounceDelay:   cfg.DebounceDelay,
		retryInterval:   cfg.RetryInterval,
		saveTimeout:     cfg.SaveTimeout,
		autosaveEnabled: !cfg.DisableAutosave,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "draftwatcher"
}

// Initialize starts watching the draft's directory.
func (p *Plugin) Initialize(ctx context.Context, cfg connguard.PluginConfig) error {
	p.mu.Lock()
	p.logger = cfg.Logger
	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}
	p.logger = p.logger.With(log.Component("draftwatcher"))
	p.changes = cfg.Changes
	p.saver = cfg.Saver
	p.connected = cfg.Connected
	p.mu.Unlock()

	if p.path == "" {
		p.logger.Warn("draft watcher disabled: no draft path configured")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	p.logger.Info("draft watcher started", log.String("path", p.path))
	return nil
}

// Shutdown stops watching and cancels any pending autosave.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.mu.Unlock()
	return nil
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.changes.MarkUnsaved()
			if p.autosaveEnabled {
				p.schedule(ctx, p.debounceDelay)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("draft watcher error", log.Err(err))
		}
	}
}

// schedule (re)arms the autosave timer.
func (p *Plugin) schedule(ctx context.Context, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(delay, func() { p.autosave(ctx) })
}

func (p *Plugin) autosave(ctx context.Context) {
	if ctx.Err() != nil || !p.changes.Unsaved() || p.saver == nil {
		return
	}
	if p.connected != nil && !p.connected() {
		p.logger.Debug("autosave deferred: backend unreachable")
		p.schedule(ctx, p.retryInterval)
		return
	}

	saveCtx, cancel := context.WithTimeout(ctx, p.saveTimeout)
	defer cancel()

	if err := p.saver.Save(saveCtx, false); err != nil {
		p.logger.Warn("autosave failed", log.Err(err))
		p.schedule(ctx, p.retryInterval)
		return
	}
	p.logger.Debug("autosave complete")
}
