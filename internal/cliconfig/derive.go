package cliconfig

import (
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DefaultHomeDir returns ~/.connguard, or "" when the home directory is unknown.
func DefaultHomeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".connguard")
	}
	return ""
}

// resolveDerived fills values that depend on other settings.
func resolveDerived(c *Config, backend *url.URL) error {
	c.DraftPath = expandHome(c.DraftPath)

	if c.BackupDir == "" {
		if home := DefaultHomeDir(); home != "" {
			c.BackupDir = filepath.Join(home, "backup")
		} else {
			c.BackupDir = filepath.Dir(c.DraftPath)
		}
	}
	c.BackupDir = expandHome(c.BackupDir)

	if c.SQLitePath == "" {
		c.SQLitePath = filepath.Join(c.BackupDir, "connguard.db")
	}
	c.SQLitePath = rootify(expandHome(c.SQLitePath), c.BackupDir)

	if c.ProbeAddr == "" {
		c.ProbeAddr = probeAddress(backend)
	}
	if c.RowID == "" {
		c.RowID = c.Period
	}
	return nil
}

// probeAddress returns host:port for TCP reachability probes.
func probeAddress(u *url.URL) string {
	if port := u.Port(); port != "" {
		return u.Host
	}
	port := "443"
	if u.Scheme == "http" {
		port = "80"
	}
	return net.JoinHostPort(u.Hostname(), port)
}

// rootify returns the path if absolute, otherwise it joins base and path.
func rootify(path, base string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(h, strings.TrimPrefix(path, "~"))
}
