package netstatus

const (
	// Version is the current version of the netstatus module.
	Version = "1.0.0"

	// MinCompatibleVersion is the oldest version this module is compatible with.
	MinCompatibleVersion = "1.0.0"
)
