package connguard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bft-labs/connguard/pkg/backup"
	"github.com/bft-labs/connguard/pkg/lifecycle"
	"github.com/bft-labs/connguard/pkg/log"
	"github.com/bft-labs/connguard/pkg/netstatus"
	"github.com/bft-labs/connguard/pkg/reconnect"
)

// ErrNoSessionChecker is returned by New when Collaborators.Session is nil.
var ErrNoSessionChecker = errors.New("connguard: session checker is required")

// Manager owns the connection state of one client: it runs the heartbeat,
// schedules reconnects, guards teardown and restores pending saves.
type Manager struct {
	cfg     Config
	collab  Collaborators
	logger  log.Logger
	clock   Clock
	changes *ChangeTracker
	repo    backup.Repository
	network *netstatus.Observer
	prober  *netstatus.Prober
	plugins []Plugin
	machine *lifecycle.Machine
	flight  singleflight.Group

	// runMu serialises Start and Stop.
	runMu sync.Mutex

	mu        sync.Mutex
	connected bool
	observed  bool
	lastSync  time.Time
	policy    *reconnect.Policy
	heartbeat Timer
	timers    map[uint64]Timer
	timerSeq  uint64
	runCtx    context.Context
	cancel    context.CancelFunc

	listenersMu sync.RWMutex
	listeners   []Listener
}

// New creates a Manager in StateStopped. cfg zero values are defaulted.
func New(cfg Config, collab Collaborators, opts ...Option) (*Manager, error) {
	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if collab.Session == nil {
		return nil, ErrNoSessionChecker
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewNoopLogger()
	}
	if o.clock == nil {
		o.clock = realClock{}
	}
	if o.changes == nil {
		o.changes = NewChangeTracker()
	}
	if o.repository == nil {
		o.repository = backup.NewFileRepository(DefaultBackupDir(), backup.DefaultKey)
	}

	logger := o.logger.With(log.Component("connguard"))
	m := &Manager{
		cfg:     cfg,
		collab:  collab,
		logger:  logger,
		clock:   o.clock,
		changes: o.changes,
		repo:    o.repository,
		prober:  o.prober,
		plugins: o.plugins,
		policy: reconnect.New(reconnect.Config{
			BaseDelay:   cfg.ReconnectBaseDelay,
			MaxAttempts: cfg.MaxReconnectAttempts,
		}),
		timers:    make(map[uint64]Timer),
		listeners: append([]Listener(nil), o.listeners...),
	}
	m.machine = lifecycle.NewMachine(logger, nil)
	m.network = netstatus.NewObserver(o.initialOnline, m.onNetworkSignal)
	return m, nil
}

// Start arms the heartbeat, starts the prober if one is configured and
// initializes plugins. The first heartbeat fires after HeartbeatInterval;
// call CheckConnection for an immediate check.
func (m *Manager) Start(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if !m.machine.CanStart() {
		return ErrAlreadyRunning
	}
	if err := m.machine.TransitionTo(StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)

	pluginCfg := PluginConfig{
		Logger:    m.logger,
		Changes:   m.changes,
		Saver:     m.collab.Saver,
		Connected: m.Connected,
	}
	for i, p := range m.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			m.logger.Error("plugin initialization failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			cancel()
			m.shutdownPlugins(m.plugins[:i])
			_ = m.machine.TransitionTo(StateCrashed, "plugin init failed: "+p.Name())
			return fmt.Errorf("initialize plugin %s: %w", p.Name(), err)
		}
		m.logger.Info("plugin initialized", log.String("plugin", p.Name()))
	}

	m.mu.Lock()
	m.runCtx = runCtx
	m.cancel = cancel
	m.mu.Unlock()

	if m.prober != nil {
		prober := m.prober
		m.machine.Go(func() {
			prober.Run(runCtx, m.network)
		})
	}

	m.armHeartbeat(runCtx)

	return m.machine.TransitionTo(StateRunning, "heartbeat armed")
}

// Stop cancels the heartbeat and every pending reconnect timer, waits for
// background workers and shuts plugins down in reverse order.
func (m *Manager) Stop() error {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	if !m.machine.CanStop() {
		return ErrNotRunning
	}
	if err := m.machine.TransitionTo(StateStopping, "Stop() called"); err != nil {
		return err
	}

	m.mu.Lock()
	if m.cancel != nil {
		m.cancel()
	}
	m.runCtx = nil
	m.cancel = nil
	m.stopTimersLocked()
	m.mu.Unlock()

	err := m.machine.WaitWithTimeout(m.cfg.ShutdownTimeout)

	m.shutdownPlugins(m.plugins)

	if err != nil {
		_ = m.machine.TransitionTo(StateCrashed, "shutdown timeout")
		return err
	}
	_ = m.machine.TransitionTo(StateStopped, "graceful shutdown")
	return nil
}

func (m *Manager) shutdownPlugins(plugins []Plugin) {
	ctx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			m.logger.Error("plugin shutdown failed",
				log.String("plugin", p.Name()),
				log.Err(err))
			continue
		}
		m.logger.Info("plugin shutdown complete", log.String("plugin", p.Name()))
	}
}

func (m *Manager) stopTimersLocked() {
	if m.heartbeat != nil {
		m.heartbeat.Stop()
		m.heartbeat = nil
	}
	for id, t := range m.timers {
		t.Stop()
		delete(m.timers, id)
	}
}

// State returns the lifecycle state.
func (m *Manager) State() State {
	return m.machine.State()
}

// Status returns the current connectivity view. HasPendingData reflects
// whether the backup repository holds a record.
func (m *Manager) Status() Status {
	st := m.snapshot()
	st.HasPendingData = m.hasPendingData(context.Background())
	return st
}

func (m *Manager) snapshot() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Status {
	st := Status{
		Online:               m.network.Online(),
		BackendConnected:     m.connected,
		ReconnectAttempts:    m.policy.Attempts(),
		MaxReconnectAttempts: m.policy.MaxAttempts(),
		State:                m.machine.State().String(),
	}
	if !m.lastSync.IsZero() {
		t := m.lastSync
		st.LastSuccessfulSync = &t
	}
	return st
}

func (m *Manager) hasPendingData(ctx context.Context) bool {
	ok, err := m.repo.Exists(ctx)
	if err != nil {
		m.logger.Warn("backup existence check failed", log.Err(err))
		return false
	}
	return ok
}

// Connected reports whether the last heartbeat succeeded.
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Online reports the last network reachability signal.
func (m *Manager) Online() bool {
	return m.network.Online()
}

// SetOnline pushes a network reachability signal, for hosts that learn
// about connectivity themselves.
func (m *Manager) SetOnline(online bool) {
	m.network.SetOnline(online)
}

// Changes returns the unsaved-changes tracker.
func (m *Manager) Changes() *ChangeTracker {
	return m.changes
}

// MarkUnsaved flags pending edits.
func (m *Manager) MarkUnsaved() {
	m.changes.MarkUnsaved()
}

// MarkSaved clears the pending edits flag.
func (m *Manager) MarkSaved() {
	m.changes.MarkSaved()
}

// Config returns the effective configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// AddListener registers l for all future notifications.
func (m *Manager) AddListener(l Listener) {
	m.listenersMu.Lock()
	m.listeners = append(m.listeners, l)
	m.listenersMu.Unlock()
}

func (m *Manager) listenersSnapshot() []Listener {
	m.listenersMu.RLock()
	defer m.listenersMu.RUnlock()
	return append([]Listener(nil), m.listeners...)
}

func (m *Manager) emitStatus(st Status) {
	st.HasPendingData = m.hasPendingData(context.Background())
	for _, l := range m.listenersSnapshot() {
		l.OnStatusChange(st)
	}
}

func (m *Manager) emitLost(ev ConnectionEvent) {
	for _, l := range m.listenersSnapshot() {
		l.OnConnectionLost(ev)
	}
}

func (m *Manager) emitRestored(ev ConnectionEvent) {
	for _, l := range m.listenersSnapshot() {
		l.OnConnectionRestored(ev)
	}
}

// onNetworkSignal is the netstatus callback. A became-reachable signal
// triggers an immediate check while running.
func (m *Manager) onNetworkSignal(online bool) {
	m.logger.Info("network status changed", log.Bool("online", online))
	m.emitStatus(m.snapshot())

	if !online {
		return
	}
	m.mu.Lock()
	ctx := m.runCtx
	m.mu.Unlock()
	if ctx == nil {
		return
	}
	go func() {
		_ = m.CheckConnection(ctx)
	}()
}

// baseContext returns the run context, or Background when not running.
func (m *Manager) baseContext() context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runCtx != nil {
		return m.runCtx
	}
	return context.Background()
}
