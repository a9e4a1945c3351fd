package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/connguard/pkg/log"
)

// Lifecycle errors.
var (
	ErrNotRunning      = errors.New("connguard: not running")
	ErrAlreadyRunning  = errors.New("connguard: already running")
	ErrShutdownTimeout = errors.New("connguard: shutdown timeout")
)

// Machine guards Start/Stop of a monitor and tracks its background workers.
type Machine struct {
	mu       sync.RWMutex
	state    State
	wg       sync.WaitGroup
	logger   log.Logger
	observer Observer
}

// NewMachine creates a machine in StateStopped. observer may be nil.
func NewMachine(logger log.Logger, observer Observer) *Machine {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Machine{
		state:    StateStopped,
		logger:   logger,
		observer: observer,
	}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// TransitionTo moves to next if the transition is legal.
// Illegal transitions leave the state untouched and return ErrNotRunning when
// leaving an idle state, ErrAlreadyRunning otherwise.
func (m *Machine) TransitionTo(next State, reason string) error {
	m.mu.Lock()
	prev := m.state
	if !CanTransition(prev, next) {
		m.mu.Unlock()
		if prev == StateStopped || prev == StateCrashed {
			return fmt.Errorf("%w: %s -> %s", ErrNotRunning, prev, next)
		}
		return fmt.Errorf("%w: %s -> %s", ErrAlreadyRunning, prev, next)
	}
	m.state = next
	m.mu.Unlock()

	if m.observer != nil {
		m.observer.OnStateChange(prev, next, reason)
	}

	m.logger.Info("state transition",
		log.String("from", prev.String()),
		log.String("to", next.String()),
		log.String("reason", reason),
	)
	return nil
}

// CanStart reports whether Start may be called.
func (m *Machine) CanStart() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateStopped || m.state == StateCrashed
}

// CanStop reports whether Stop may be called.
func (m *Machine) CanStop() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateRunning || m.state == StateStarting
}

// Go runs fn as a tracked worker.
func (m *Machine) Go(fn func()) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn()
	}()
}

// WaitWithTimeout waits for all workers started with Go.
func (m *Machine) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		m.logger.Warn("shutdown timeout, abandoning workers",
			log.Duration("timeout", timeout),
		)
		return ErrShutdownTimeout
	}
}
