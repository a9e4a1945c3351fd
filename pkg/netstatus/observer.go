// Package netstatus tracks whether the host currently has network reachability.
//
// An Observer holds the last known value and notifies a callback on every
// signal. A Prober produces those signals by dialing a TCP address on an
// interval; embedding applications that already know their connectivity can
// call SetOnline directly instead.
package netstatus

import "sync"

// Observer holds the last reachability signal.
type Observer struct {
	mu       sync.RWMutex
	online   bool
	onChange func(online bool)
}

// NewObserver creates an Observer with an initial value. onChange runs after
// every signal, outside the Observer's lock, and may be nil.
func NewObserver(initial bool, onChange func(online bool)) *Observer {
	return &Observer{online: initial, onChange: onChange}
}

// Online returns the last known reachability.
func (o *Observer) Online() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.online
}

// SetOnline records a signal. It reports whether the value changed.
// The callback runs for every signal, matching the browser online/offline
// events which may repeat.
func (o *Observer) SetOnline(online bool) bool {
	o.mu.Lock()
	changed := o.online != online
	o.online = online
	cb := o.onChange
	o.mu.Unlock()

	if cb != nil {
		cb(online)
	}
	return changed
}
