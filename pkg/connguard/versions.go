package connguard

import (
	"fmt"

	"github.com/bft-labs/connguard/pkg/backup"
	"github.com/bft-labs/connguard/pkg/lifecycle"
	"github.com/bft-labs/connguard/pkg/log"
	"github.com/bft-labs/connguard/pkg/netstatus"
	"github.com/bft-labs/connguard/pkg/reconnect"
)

// Version is the version of the connguard package.
const Version = "1.0.0"

// ModuleVersions returns the version of every sub-package.
func ModuleVersions() map[string]string {
	return map[string]string{
		"connguard": Version,
		"log":       log.Version,
		"lifecycle": lifecycle.Version,
		"backup":    backup.Version,
		"reconnect": reconnect.Version,
		"netstatus": netstatus.Version,
	}
}

// validateModuleVersions checks that all module versions are compatible.
func validateModuleVersions() error {
	modules := map[string]struct {
		version    string
		minVersion string
	}{
		"log":       {log.Version, log.MinCompatibleVersion},
		"lifecycle": {lifecycle.Version, lifecycle.MinCompatibleVersion},
		"backup":    {backup.Version, backup.MinCompatibleVersion},
		"reconnect": {reconnect.Version, reconnect.MinCompatibleVersion},
		"netstatus": {netstatus.Version, netstatus.MinCompatibleVersion},
	}

	for name, m := range modules {
		if !isVersionCompatible(m.version, m.minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.version, m.minVersion)
		}
	}
	return nil
}

// isVersionCompatible reports whether version >= minVersion.
// Both are "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
