package connguard

import (
	"sync"
	"time"

	"github.com/bft-labs/connguard/pkg/lifecycle"
)

// State is the lifecycle state of a Manager.
type State = lifecycle.State

// Lifecycle states.
const (
	StateStopped  = lifecycle.StateStopped
	StateStarting = lifecycle.StateStarting
	StateRunning  = lifecycle.StateRunning
	StateStopping = lifecycle.StateStopping
	StateCrashed  = lifecycle.StateCrashed
)

// Status is a point-in-time view of connectivity and backup state.
type Status struct {
	Online               bool       `json:"online"`
	BackendConnected     bool       `json:"backendConnected"`
	LastSuccessfulSync   *time.Time `json:"lastSuccessfulSync"`
	ReconnectAttempts    int        `json:"reconnectAttempts"`
	MaxReconnectAttempts int        `json:"maxReconnectAttempts"`
	HasPendingData       bool       `json:"hasPendingData"`
	State                string     `json:"state"`
}

// ConnectionEvent describes a connected/disconnected edge.
type ConnectionEvent struct {
	At       time.Time
	Err      error // cause of a loss; nil on restore
	Attempts int   // reconnect attempts at the time of the edge
	Online   bool  // network reachability at the time of the edge
}

// Listener receives connectivity notifications.
// The state starts unknown: the first heartbeat outcome only fires
// OnStatusChange, never OnConnectionLost or OnConnectionRestored.
// Callbacks run synchronously on the goroutine that observed the change and
// never while the Manager holds its lock. Implementations should return quickly.
type Listener interface {
	// OnStatusChange is called after every heartbeat outcome and network signal.
	OnStatusChange(status Status)

	// OnConnectionLost is called once per connected -> disconnected edge.
	OnConnectionLost(event ConnectionEvent)

	// OnConnectionRestored is called once per disconnected -> connected edge.
	OnConnectionRestored(event ConnectionEvent)
}

// BaseListener provides no-op implementations of all Listener methods.
// Embed it to implement only the callbacks you need.
type BaseListener struct{}

func (BaseListener) OnStatusChange(Status)                {}
func (BaseListener) OnConnectionLost(ConnectionEvent)     {}
func (BaseListener) OnConnectionRestored(ConnectionEvent) {}

// TeardownEvent is handed to HandleTeardown by the host when the application
// is about to exit. When a remote save is started the event is deferred and
// Done closes once that save settles.
type TeardownEvent struct {
	mu       sync.Mutex
	deferred bool
	done     chan struct{}
	once     sync.Once
}

// NewTeardownEvent creates an event that has not been deferred.
func NewTeardownEvent() *TeardownEvent {
	return &TeardownEvent{done: make(chan struct{})}
}

// Defer asks the host to hold teardown until Done closes.
func (e *TeardownEvent) Defer() {
	e.mu.Lock()
	e.deferred = true
	e.mu.Unlock()
}

// Deferred reports whether Defer was called.
func (e *TeardownEvent) Deferred() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.deferred
}

// Done is closed when all work started for this event has settled.
func (e *TeardownEvent) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until Done closes or timeout elapses. It reports whether the
// work settled in time.
func (e *TeardownEvent) Wait(timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-e.done:
		return true
	case <-t.C:
		return false
	}
}

func (e *TeardownEvent) settle() {
	e.once.Do(func() { close(e.done) })
}
