package backup

// Version information for the backup module.
const (
	// Version is the current version of the backup module.
	Version = "2.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "2.0.0"
)
