// Package backup stores the pending-save record that carries unsaved client
// state across a teardown.
//
// Exactly one record exists per storage key; writing a new record replaces
// the previous one. The JSON layout is shared with existing browser clients:
//
//	{"data": <opaque>, "timestamp": "2024-05-01T10:00:00.000Z", "periodo": "2024-05"}
//
// # Usage
//
//	repo := backup.NewFileRepository("/var/lib/connguard", backup.DefaultKey)
//	rec := backup.NewRecord(snapshot, time.Now(), "2024-05")
//	if err := repo.Save(ctx, rec); err != nil {
//	    return err
//	}
//
// # Version
//
// Current version: 2.0.0
// Minimum compatible version: 2.0.0
package backup
