package connguard

import (
	"sync"
	"time"
)

// ChangeTracker records whether the application holds edits that have not
// reached the backend. Every MarkUnsaved bumps a revision so a save that
// started before a newer edit does not clear it.
type ChangeTracker struct {
	mu        sync.Mutex
	unsaved   bool
	revision  uint64
	changedAt time.Time
}

// NewChangeTracker returns a tracker with no unsaved changes.
func NewChangeTracker() *ChangeTracker {
	return &ChangeTracker{}
}

// MarkUnsaved flags pending edits.
func (t *ChangeTracker) MarkUnsaved() {
	t.mu.Lock()
	t.revision++
	t.changedAt = time.Now()
	t.unsaved = true
	t.mu.Unlock()
}

// MarkSaved clears the flag unconditionally.
func (t *ChangeTracker) MarkSaved() {
	t.mu.Lock()
	t.unsaved = false
	t.mu.Unlock()
}

// Revision identifies the latest MarkUnsaved. Capture it before a save and
// pass it to MarkSavedAt afterwards.
func (t *ChangeTracker) Revision() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.revision
}

// MarkSavedAt clears the flag only if no edit happened since rev was read.
// It reports whether the flag was cleared.
func (t *ChangeTracker) MarkSavedAt(rev uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.revision != rev {
		return false
	}
	t.unsaved = false
	return true
}

// Unsaved reports whether edits are pending.
func (t *ChangeTracker) Unsaved() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.unsaved
}

// LastChange returns when MarkUnsaved was last called, or the zero time.
func (t *ChangeTracker) LastChange() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.changedAt
}
