package lifecycle

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []transition
}

type transition struct {
	previous State
	current  State
	reason   string
}

func (r *recordingObserver) OnStateChange(previous, current State, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, transition{previous, current, reason})
}

func (r *recordingObserver) Events() []transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]transition{}, r.events...)
}

func TestNewMachine(t *testing.T) {
	m := NewMachine(nil, nil)
	if m.State() != StateStopped {
		t.Errorf("initial state = %v, want Stopped", m.State())
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateStopped, "Stopped"},
		{StateStarting, "Starting"},
		{StateRunning, "Running"},
		{StateStopping, "Stopping"},
		{StateCrashed, "Crashed"},
		{State(42), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestMachine_TransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		to      State
		wantErr error
	}{
		{"stopped to starting", StateStopped, StateStarting, nil},
		{"starting to running", StateStarting, StateRunning, nil},
		{"starting to stopping", StateStarting, StateStopping, nil},
		{"running to stopping", StateRunning, StateStopping, nil},
		{"running to crashed", StateRunning, StateCrashed, nil},
		{"stopping to stopped", StateStopping, StateStopped, nil},
		{"crashed to starting", StateCrashed, StateStarting, nil},
		{"stopped to running", StateStopped, StateRunning, ErrNotRunning},
		{"crashed to stopped", StateCrashed, StateStopped, ErrNotRunning},
		{"running to starting", StateRunning, StateStarting, ErrAlreadyRunning},
		{"stopping to running", StateStopping, StateRunning, ErrAlreadyRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(nil, nil)
			m.state = tt.from

			err := m.TransitionTo(tt.to, "test")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("TransitionTo() error = %v, want %v", err, tt.wantErr)
			}
			want := tt.to
			if tt.wantErr != nil {
				want = tt.from
			}
			if m.State() != want {
				t.Errorf("state = %v, want %v", m.State(), want)
			}
		})
	}
}

func TestMachine_ObserverSeesTransitions(t *testing.T) {
	obs := &recordingObserver{}
	m := NewMachine(nil, obs)

	_ = m.TransitionTo(StateStarting, "start")
	_ = m.TransitionTo(StateRunning, "up")
	_ = m.TransitionTo(StateStarting, "rejected")

	events := obs.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[1].previous != StateStarting || events[1].current != StateRunning || events[1].reason != "up" {
		t.Errorf("event 1 = %+v", events[1])
	}
}

func TestMachine_CanStartCanStop(t *testing.T) {
	tests := []struct {
		state     State
		wantStart bool
		wantStop  bool
	}{
		{StateStopped, true, false},
		{StateStarting, false, true},
		{StateRunning, false, true},
		{StateStopping, false, false},
		{StateCrashed, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			m := NewMachine(nil, nil)
			m.state = tt.state
			if got := m.CanStart(); got != tt.wantStart {
				t.Errorf("CanStart() = %v, want %v", got, tt.wantStart)
			}
			if got := m.CanStop(); got != tt.wantStop {
				t.Errorf("CanStop() = %v, want %v", got, tt.wantStop)
			}
		})
	}
}

func TestMachine_WaitWithTimeout(t *testing.T) {
	m := NewMachine(nil, nil)
	m.Go(func() { time.Sleep(10 * time.Millisecond) })
	if err := m.WaitWithTimeout(time.Second); err != nil {
		t.Fatalf("WaitWithTimeout() = %v, want nil", err)
	}

	release := make(chan struct{})
	m.Go(func() { <-release })
	if err := m.WaitWithTimeout(20 * time.Millisecond); !errors.Is(err, ErrShutdownTimeout) {
		t.Fatalf("WaitWithTimeout() = %v, want ErrShutdownTimeout", err)
	}
	close(release)
}
