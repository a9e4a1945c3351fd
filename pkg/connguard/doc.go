// Package connguard keeps a client application resilient to losing its
// backend connection.
//
// A [Manager] tracks network reachability and backend session health, polls
// the session on an interval, retries with exponential backoff after a
// failure, writes unsaved state to a local backup when the application exits
// and replays that backup on the next start.
//
// # Basic Usage
//
//	m, err := connguard.New(connguard.Config{}, connguard.Collaborators{
//	    Session:  checker,
//	    Saver:    saver,
//	    Snapshot: drafts.Snapshot,
//	    Apply:    drafts.Apply,
//	    Period:   drafts.Period,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	m.RestoreFromBackup(ctx)
//	if err := m.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... on shutdown signal ...
//
//	ev := connguard.NewTeardownEvent()
//	m.HandleTeardown(ev)
//	ev.Wait(5 * time.Second)
//	_ = m.Stop()
//
// # Configuration
//
// All [Config] fields have defaults set via [Config.SetDefaults]: a 10s
// heartbeat bounded to 5s per check, reconnect retries after 3s, 6s, 12s,
// 24s and 48s, and a 30 minute freshness window for backups.
//
// # Collaborators
//
// Only [Collaborators].Session is required. A nil Snapshot makes teardown
// log [ErrSnapshotUnavailable]; a nil Saver skips the remote save; a nil
// Apply makes [Manager.Restore] return [ErrNoApply].
//
// # Listeners
//
// Implement [Listener] (or embed [BaseListener]) and register it with
// [WithListener] or [Manager.AddListener]. OnConnectionLost and
// OnConnectionRestored are edge-triggered and fire only after the first
// heartbeat outcome has been observed.
//
// # Backups
//
// The pending-save record is stored by a [backup.Repository], a JSON file
// under the user config directory unless [WithRepository] says otherwise.
// Corrupt and stale records are never deleted; the next teardown overwrites
// them.
//
// # Lifecycle States
//
// A Manager is in one of [StateStopped], [StateStarting], [StateRunning],
// [StateStopping] or [StateCrashed]. Use [Manager.State] to query it.
package connguard
