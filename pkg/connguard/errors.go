package connguard

import (
	"errors"

	"github.com/bft-labs/connguard/pkg/lifecycle"
)

// Connectivity and backup errors. They are returned by CheckConnection and
// Restore and attached to log entries; none of them stop the Manager.
var (
	// ErrTimeout means the session check did not answer within HeartbeatTimeout.
	ErrTimeout = errors.New("connguard: session check timed out")

	// ErrSessionLost means the backend answered but reported no session.
	ErrSessionLost = errors.New("connguard: backend session lost")

	// ErrNetwork means the session check failed in transport.
	ErrNetwork = errors.New("connguard: network error")

	// ErrCorruptBackup means the pending-save record could not be parsed.
	ErrCorruptBackup = errors.New("connguard: corrupt backup")

	// ErrStaleBackup means the pending-save record is older than BackupFreshness.
	ErrStaleBackup = errors.New("connguard: stale backup")

	// ErrSnapshotUnavailable means no snapshot collaborator is configured or it failed.
	ErrSnapshotUnavailable = errors.New("connguard: snapshot unavailable")

	// ErrInvalidConfig is returned by New when configuration validation fails.
	ErrInvalidConfig = errors.New("connguard: invalid configuration")
)

// Lifecycle errors, re-exported so callers need only this package.
var (
	ErrAlreadyRunning  = lifecycle.ErrAlreadyRunning
	ErrNotRunning      = lifecycle.ErrNotRunning
	ErrShutdownTimeout = lifecycle.ErrShutdownTimeout
)
