package connguard

import (
	"context"
	"encoding/json"
)

// Session describes an authenticated backend session.
type Session struct {
	UserID    string
	ExpiresAt int64
}

// SessionChecker asks the backend whether the current session is valid.
// A nil Session with a nil error means the backend answered "no session".
type SessionChecker interface {
	CheckSession(ctx context.Context) (*Session, error)
}

// SessionCheckerFunc adapts a function to SessionChecker.
type SessionCheckerFunc func(ctx context.Context) (*Session, error)

func (f SessionCheckerFunc) CheckSession(ctx context.Context) (*Session, error) { return f(ctx) }

// Saver persists the application's current state to the backend.
// force asks the saver to write even when it believes nothing changed.
type Saver interface {
	Save(ctx context.Context, force bool) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(ctx context.Context, force bool) error

func (f SaverFunc) Save(ctx context.Context, force bool) error { return f(ctx, force) }

// SnapshotFunc captures the unsaved editable state as an opaque JSON value.
// It runs synchronously during teardown and must not block on the network.
type SnapshotFunc func() (json.RawMessage, error)

// ApplyFunc writes a previously captured snapshot back into live state.
type ApplyFunc func(ctx context.Context, data json.RawMessage) error

// PeriodFunc returns the identifier of the period currently being edited
// (for example "2024-05"), or "" when unknown.
type PeriodFunc func() string

// Collaborators are the application hooks a Manager drives. Only Session is
// required; leaving any other field nil disables the behaviour that needs it.
type Collaborators struct {
	Session  SessionChecker
	Saver    Saver
	Snapshot SnapshotFunc
	Apply    ApplyFunc
	Period   PeriodFunc
}
