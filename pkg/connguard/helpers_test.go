package connguard_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bft-labs/connguard/pkg/backup"
	"github.com/bft-labs/connguard/pkg/connguard"
	"github.com/bft-labs/connguard/pkg/log"
)

// =============================================================================
// Test Utilities
// =============================================================================

// fakeClock runs timers only when Advance is called.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
	armed  []time.Duration
}

type fakeTimer struct {
	clock   *fakeClock
	id      int
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) connguard.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := &fakeTimer{clock: c, id: c.seq, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	c.armed = append(c.armed, d)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward, running due timers in order on the calling
// goroutine.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) || (t.at.Equal(next.at) && t.id < next.id) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		if next.at.After(c.now) {
			c.now = next.at
		}
		c.mu.Unlock()
		next.f()
	}
}

// Pending returns the number of timers that have neither fired nor stopped.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Armed returns the durations passed to AfterFunc, excluding skip.
func (c *fakeClock) Armed(skip ...time.Duration) []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []time.Duration
outer:
	for _, d := range c.armed {
		for _, s := range skip {
			if d == s {
				continue outer
			}
		}
		out = append(out, d)
	}
	return out
}

// fakeChecker answers session checks according to a swappable outcome.
type fakeChecker struct {
	mu    sync.Mutex
	err   error
	block bool
	calls atomic.Int32
}

func (f *fakeChecker) set(err error) {
	f.mu.Lock()
	f.err = err
	f.block = false
	f.mu.Unlock()
}

func (f *fakeChecker) hang() {
	f.mu.Lock()
	f.block = true
	f.mu.Unlock()
}

func (f *fakeChecker) CheckSession(ctx context.Context) (*connguard.Session, error) {
	f.calls.Add(1)
	f.mu.Lock()
	err, block := f.err, f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return &connguard.Session{UserID: "user-1"}, nil
}

// fakeSaver records forced saves.
type fakeSaver struct {
	mu     sync.Mutex
	err    error
	forced int
	calls  int

	// during runs inside Save, before it returns.
	during func()
}

func (s *fakeSaver) Save(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.during != nil {
		s.during()
	}
	s.calls++
	if force {
		s.forced++
	}
	return s.err
}

func (s *fakeSaver) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// recordingListener captures every notification.
type recordingListener struct {
	mu       sync.Mutex
	statuses []connguard.Status
	lost     []connguard.ConnectionEvent
	restored []connguard.ConnectionEvent
}

func (l *recordingListener) OnStatusChange(st connguard.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statuses = append(l.statuses, st)
}

func (l *recordingListener) OnConnectionLost(ev connguard.ConnectionEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lost = append(l.lost, ev)
}

func (l *recordingListener) OnConnectionRestored(ev connguard.ConnectionEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.restored = append(l.restored, ev)
}

func (l *recordingListener) counts() (statuses, lost, restored int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.statuses), len(l.lost), len(l.restored)
}

func (l *recordingListener) lastStatus() (connguard.Status, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.statuses) == 0 {
		return connguard.Status{}, false
	}
	return l.statuses[len(l.statuses)-1], true
}

// testLogger implements log.Logger and keeps entries for assertions.
type testLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level string
	msg   string
	err   error
}

func newTestLogger() *testLogger {
	return &testLogger{}
}

func (l *testLogger) Debug(msg string, fields ...log.Field) { l.log("DEBUG", msg, fields) }
func (l *testLogger) Info(msg string, fields ...log.Field)  { l.log("INFO", msg, fields) }
func (l *testLogger) Warn(msg string, fields ...log.Field)  { l.log("WARN", msg, fields) }
func (l *testLogger) Error(msg string, fields ...log.Field) { l.log("ERROR", msg, fields) }
func (l *testLogger) With(fields ...log.Field) log.Logger   { return l }

func (l *testLogger) log(level, msg string, fields []log.Field) {
	e := logEntry{level: level, msg: msg}
	for _, f := range fields {
		if err, ok := f.Value.(error); ok && f.Key == "error" {
			e.err = err
		}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
}

// loggedError reports whether an entry at level carries an error matching target.
func (l *testLogger) loggedError(level string, target error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.level == level && e.err != nil && errors.Is(e.err, target) {
			return true
		}
	}
	return false
}

func (l *testLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, fmt.Sprintf("[%s] %s", e.level, e.msg))
	}
	return out
}

var epoch = time.Date(2024, 5, 14, 9, 0, 0, 0, time.UTC)

type harness struct {
	m        *connguard.Manager
	clock    *fakeClock
	checker  *fakeChecker
	saver    *fakeSaver
	repo     *backup.MemoryRepository
	listener *recordingListener
	logger   *testLogger
	applied  []json.RawMessage
	snapshot json.RawMessage
	mu       sync.Mutex
}

func newHarness(t *testing.T, opts ...connguard.Option) *harness {
	t.Helper()
	h := &harness{
		clock:    newFakeClock(epoch),
		checker:  &fakeChecker{},
		saver:    &fakeSaver{},
		repo:     backup.NewMemoryRepository(),
		listener: &recordingListener{},
		logger:   newTestLogger(),
		snapshot: json.RawMessage(`{"entrate":[{"importo":1200}]}`),
	}
	collab := connguard.Collaborators{
		Session: h.checker,
		Saver:   h.saver,
		Snapshot: func() (json.RawMessage, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			return h.snapshot, nil
		},
		Apply: func(ctx context.Context, data json.RawMessage) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.applied = append(h.applied, data)
			return nil
		},
		Period: func() string { return "2024-05" },
	}
	base := []connguard.Option{
		connguard.WithClock(h.clock),
		connguard.WithRepository(h.repo),
		connguard.WithListener(h.listener),
		connguard.WithLogger(h.logger),
	}
	m, err := connguard.New(connguard.Config{}, collab, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	h.m = m
	return h
}

func (h *harness) appliedData() []json.RawMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]json.RawMessage(nil), h.applied...)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
