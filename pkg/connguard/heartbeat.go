package connguard

import (
	"context"
	"errors"
	"fmt"

	"github.com/bft-labs/connguard/pkg/log"
)

const flightKey = "session"

// CheckConnection queries the backend session once, bounded by
// HeartbeatTimeout, and records the outcome. Concurrent callers share one
// in-flight query. The returned error is classified as ErrTimeout,
// ErrSessionLost or ErrNetwork; a cancelled ctx returns ctx.Err() and leaves
// the state untouched.
//
// A failure always consults the reconnect policy, which may arm a one-shot
// retry timer.
func (m *Manager) CheckConnection(ctx context.Context) error {
	_, err, _ := m.flight.Do(flightKey, func() (interface{}, error) {
		return nil, m.check(ctx)
	})
	return err
}

func (m *Manager) check(ctx context.Context) error {
	err := m.querySession(ctx)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		m.recordFailure(err)
		m.attemptReconnect()
		return err
	}
	m.recordSuccess()
	return nil
}

type sessionResult struct {
	session *Session
	err     error
}

// querySession races the session checker against HeartbeatTimeout.
func (m *Manager) querySession(ctx context.Context) error {
	qctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan sessionResult, 1)
	go func() {
		s, err := m.collab.Session.CheckSession(qctx)
		results <- sessionResult{session: s, err: err}
	}()

	expired := make(chan struct{})
	timer := m.clock.AfterFunc(m.cfg.HeartbeatTimeout, func() { close(expired) })
	defer timer.Stop()

	select {
	case r := <-results:
		return classify(r)
	case <-expired:
		return fmt.Errorf("%w after %s", ErrTimeout, m.cfg.HeartbeatTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func classify(r sessionResult) error {
	switch {
	case r.err == nil && r.session == nil:
		return ErrSessionLost
	case r.err == nil:
		return nil
	case errors.Is(r.err, ErrSessionLost), errors.Is(r.err, ErrTimeout), errors.Is(r.err, ErrNetwork):
		return r.err
	case errors.Is(r.err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTimeout, r.err)
	default:
		return fmt.Errorf("%w: %w", ErrNetwork, r.err)
	}
}

func (m *Manager) recordSuccess() {
	now := m.clock.Now()

	m.mu.Lock()
	restored := m.observed && !m.connected
	m.connected = true
	m.observed = true
	m.lastSync = now
	m.policy.Reset()
	st := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Debug("backend session valid")
	m.emitStatus(st)
	if restored {
		m.logger.Info("connection to backend restored")
		m.emitRestored(ConnectionEvent{At: now, Online: st.Online})
	}
}

func (m *Manager) recordFailure(cause error) {
	now := m.clock.Now()

	m.mu.Lock()
	lost := m.observed && m.connected
	m.connected = false
	m.observed = true
	attempts := m.policy.Attempts()
	st := m.snapshotLocked()
	m.mu.Unlock()

	m.logger.Warn("backend check failed",
		log.Err(cause),
		log.Int("reconnect_attempts", attempts))
	m.emitStatus(st)
	if lost {
		m.logger.Warn("connection to backend lost", log.Err(cause))
		m.emitLost(ConnectionEvent{At: now, Err: cause, Attempts: attempts, Online: st.Online})
	}
}

// attemptReconnect consumes one policy attempt and arms a retry timer.
// Once the cap is reached it only logs; the counter is reset by the next
// successful check.
func (m *Manager) attemptReconnect() {
	ctx := m.baseContext()

	m.mu.Lock()
	delay, attempt, ok := m.policy.Next()
	if !ok {
		maxAttempts := m.policy.MaxAttempts()
		m.mu.Unlock()
		m.logger.Error("reconnect attempts exhausted",
			log.Int("attempts", attempt),
			log.Int("max_attempts", maxAttempts))
		return
	}
	m.timerSeq++
	id := m.timerSeq
	m.timers[id] = m.clock.AfterFunc(delay, func() {
		m.mu.Lock()
		delete(m.timers, id)
		m.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		_ = m.CheckConnection(ctx)
	})
	maxAttempts := m.policy.MaxAttempts()
	m.mu.Unlock()

	m.logger.Info("reconnect scheduled",
		log.Int("attempt", attempt),
		log.Int("max_attempts", maxAttempts),
		log.Duration("delay", delay))
}

// armHeartbeat schedules the next tick for the run identified by ctx.
// It reports false when that run has ended.
func (m *Manager) armHeartbeat(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ctx.Err() != nil || m.runCtx != ctx {
		return false
	}
	m.heartbeat = m.clock.AfterFunc(m.cfg.HeartbeatInterval, func() {
		m.tick(ctx)
	})
	return true
}

func (m *Manager) tick(ctx context.Context) {
	if !m.armHeartbeat(ctx) {
		return
	}
	_ = m.CheckConnection(ctx)
}
