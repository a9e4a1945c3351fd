package connguard

import (
	"context"
	"errors"
	"fmt"

	"github.com/bft-labs/connguard/pkg/backup"
	"github.com/bft-labs/connguard/pkg/log"
)

// ErrNoApply is returned by Restore when no Apply collaborator is configured.
var ErrNoApply = errors.New("connguard: no apply collaborator configured")

// Restore replays a fresh pending-save record into the application: it
// applies the data, forces a remote save and deletes the record. It reports
// whether a record was restored.
//
// Absent records return (false, nil). Corrupt records return an error
// wrapping ErrCorruptBackup and stale ones ErrStaleBackup; both are left in
// place. When Apply or the save fails the record is kept for the next start.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	rec, err := m.repo.Load(ctx)
	switch {
	case errors.Is(err, backup.ErrNotFound):
		return false, nil
	case errors.Is(err, backup.ErrCorrupt):
		return false, fmt.Errorf("%w: %w", ErrCorruptBackup, err)
	case err != nil:
		return false, fmt.Errorf("load backup: %w", err)
	}

	now := m.clock.Now()
	fresh, err := rec.FreshAt(now, m.cfg.BackupFreshness)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrCorruptBackup, err)
	}
	if !fresh {
		return false, fmt.Errorf("%w: written %s", ErrStaleBackup, rec.Timestamp)
	}

	if m.collab.Apply == nil {
		return false, ErrNoApply
	}
	if err := m.collab.Apply(ctx, rec.Data); err != nil {
		return false, fmt.Errorf("apply backup: %w", err)
	}
	m.changes.MarkUnsaved()
	rev := m.changes.Revision()

	if m.collab.Saver != nil {
		if err := m.collab.Saver.Save(ctx, true); err != nil {
			return false, fmt.Errorf("save restored backup: %w", err)
		}
		m.changes.MarkSavedAt(rev)
	}

	if err := m.repo.Delete(ctx); err != nil {
		m.logger.Warn("restored backup could not be deleted", log.Err(err))
	}
	return true, nil
}

// RestoreFromBackup runs Restore and logs the outcome. It is meant to be
// called once at startup.
func (m *Manager) RestoreFromBackup(ctx context.Context) bool {
	ok, err := m.Restore(ctx)
	switch {
	case err == nil && ok:
		m.logger.Info("pending save restored")
	case err == nil:
		m.logger.Debug("no pending save")
	case errors.Is(err, ErrStaleBackup):
		m.logger.Info("pending save ignored", log.Err(err))
	case errors.Is(err, ErrCorruptBackup):
		m.logger.Error("pending save unreadable", log.Err(err))
	default:
		m.logger.Error("pending save restore failed", log.Err(err))
	}
	return ok
}
