package connguard

import (
	"context"
	"fmt"

	"github.com/bft-labs/connguard/pkg/backup"
	"github.com/bft-labs/connguard/pkg/log"
)

// HandleTeardown is called by the host when the application is about to
// exit. With no unsaved changes it does nothing. Otherwise it writes the
// current snapshot to the backup repository before returning, then starts a
// forced remote save in the background and defers ev until that save
// settles. Failures are logged and never returned.
//
// ev may be nil when the host has no use for the deferral.
func (m *Manager) HandleTeardown(ev *TeardownEvent) {
	if ev == nil {
		ev = NewTeardownEvent()
	}
	if !m.changes.Unsaved() {
		m.logger.Debug("teardown with no unsaved changes")
		ev.settle()
		return
	}

	if err := m.writeBackup(context.Background()); err != nil {
		m.logger.Error("backup write failed", log.Err(err))
	}

	if m.collab.Saver == nil {
		ev.settle()
		return
	}

	rev := m.changes.Revision()
	ev.Defer()
	go func() {
		defer ev.settle()
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.SaveTimeout)
		defer cancel()
		if err := m.collab.Saver.Save(ctx, true); err != nil {
			m.logger.Error("teardown save failed", log.Err(err))
			return
		}
		if !m.changes.MarkSavedAt(rev) {
			m.logger.Info("teardown save complete, newer edits still unsaved")
			return
		}
		m.logger.Info("teardown save complete")
	}()
}

// writeBackup captures a snapshot and stores it as the pending-save record.
func (m *Manager) writeBackup(ctx context.Context) error {
	if m.collab.Snapshot == nil {
		return fmt.Errorf("%w: no snapshot collaborator", ErrSnapshotUnavailable)
	}
	data, err := m.collab.Snapshot()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSnapshotUnavailable, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty snapshot", ErrSnapshotUnavailable)
	}

	var period string
	if m.collab.Period != nil {
		period = m.collab.Period()
	}

	rec := backup.NewRecord(data, m.clock.Now(), period)
	if err := m.repo.Save(ctx, rec); err != nil {
		return fmt.Errorf("save backup: %w", err)
	}
	m.logger.Info("pending save written",
		log.String("timestamp", rec.Timestamp),
		log.String("period", period))
	return nil
}
