// Package app binds the connguard Manager to the local draft and the
// backend: it supplies the snapshot, apply, period and save collaborators
// the Manager drives.
package app
