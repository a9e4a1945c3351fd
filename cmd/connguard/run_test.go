package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/connguard/internal/cliconfig"
	"github.com/bft-labs/connguard/pkg/connguard"
	"github.com/bft-labs/connguard/plugins/draftwatcher"
)

func TestDraftWatcherConfig(t *testing.T) {
	tests := []struct {
		name        string
		debounce    time.Duration
		wantDisable bool
	}{
		{name: "autosave on", debounce: 2 * time.Second, wantDisable: false},
		{name: "autosave off", debounce: 0, wantDisable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := cliconfig.DefaultConfig()
			cfg.DraftPath = "/tmp/draft.json"
			cfg.AutosaveDebounce = tt.debounce

			got := draftWatcherConfig(cfg)
			assert.Equal(t, "/tmp/draft.json", got.Path)
			assert.Equal(t, tt.wantDisable, got.DisableAutosave)
		})
	}
}

// With autosave off, a draft edit must still reach the teardown backup.
func TestRun_TeardownBacksUpEditsWithAutosaveOff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := cliconfig.DefaultConfig()
	cfg.BackendURL = srv.URL
	cfg.AnonKey = "anon"
	cfg.DraftPath = filepath.Join(dir, "draft.json")
	cfg.BackupDir = filepath.Join(dir, "backup")
	cfg.AutosaveDebounce = 0
	require.NoError(t, cfg.Validate())

	c := &cli{cfg: cfg, log: zerolog.Nop()}
	comp, err := c.build(draftwatcher.WithDraftWatcher(draftWatcherConfig(cfg)))
	require.NoError(t, err)
	defer comp.Close()

	m := comp.manager
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	draft := []byte(`{"periodo":"2024-05","data":{"entrate":[{"importo":1200}]}}`)
	require.NoError(t, os.WriteFile(cfg.DraftPath, draft, 0o600))

	require.Eventually(t, m.Changes().Unsaved, 3*time.Second, 10*time.Millisecond)

	ev := connguard.NewTeardownEvent()
	m.HandleTeardown(ev)

	assert.True(t, m.Status().HasPendingData, "teardown wrote no backup")
	assert.True(t, ev.Deferred(), "teardown started no save")
	assert.True(t, ev.Wait(3*time.Second), "teardown save did not settle")
}
