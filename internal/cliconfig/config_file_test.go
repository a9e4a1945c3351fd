package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				BackendURL:           "https://file.supabase.co",
				AnonKey:              "file-key",
				HeartbeatInterval:    "20s",
				MaxReconnectAttempts: 3,
				BackupStore:          StoreSQLite,
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				BackendURL:           "https://file.supabase.co",
				AnonKey:              "file-key",
				HeartbeatInterval:    20 * time.Second,
				MaxReconnectAttempts: 3,
				BackupStore:          StoreSQLite,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				BackendURL: "https://file.supabase.co",
				AnonKey:    "file-key",
			},
			changed: map[string]bool{"backend-url": true},
			initial: Config{BackendURL: "https://flag.supabase.co"},
			expected: Config{
				BackendURL: "https://flag.supabase.co",
				AnonKey:    "file-key",
			},
		},
		{
			name:       "returns error for invalid duration",
			fileConfig: FileConfig{BackupFreshness: "half an hour"},
			changed:    map[string]bool{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)
			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.toml")

	tomlContent := `
backend_url = "https://xyz.supabase.co"
anon_key = "anon"
draft = "~/bilancio/draft.json"
period = "2024-05"
heartbeat_interval = "15s"
max_reconnect_attempts = 4
backup_store = "sqlite"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.BackendURL != "https://xyz.supabase.co" {
		t.Errorf("BackendURL = %v", fc.BackendURL)
	}
	if fc.DraftPath != "~/bilancio/draft.json" {
		t.Errorf("DraftPath = %v", fc.DraftPath)
	}
	if fc.HeartbeatInterval != "15s" {
		t.Errorf("HeartbeatInterval = %v, want 15s", fc.HeartbeatInterval)
	}
	if fc.MaxReconnectAttempts != 4 {
		t.Errorf("MaxReconnectAttempts = %v, want 4", fc.MaxReconnectAttempts)
	}
	if fc.BackupStore != StoreSQLite {
		t.Errorf("BackupStore = %v, want sqlite", fc.BackupStore)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
backend_url = "https://x"
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.Contains(path, ".connguard") {
		t.Errorf("DefaultConfigPath() = %v, should contain .connguard", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
