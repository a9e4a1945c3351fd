package main

import (
	"fmt"
	"net/http"

	"github.com/bft-labs/connguard/internal/adapters/fs"
	backendhttp "github.com/bft-labs/connguard/internal/adapters/http"
	"github.com/bft-labs/connguard/internal/adapters/sqlite"
	"github.com/bft-labs/connguard/internal/app"
	"github.com/bft-labs/connguard/internal/cliconfig"
	"github.com/bft-labs/connguard/pkg/backup"
	"github.com/bft-labs/connguard/pkg/connguard"
	"github.com/bft-labs/connguard/pkg/log"
	"github.com/bft-labs/connguard/pkg/netstatus"
)

// components is everything a subcommand needs around a Manager.
type components struct {
	manager *connguard.Manager
	drafts  *app.Drafts
	logger  log.Logger
	closers []func() error
}

func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// openRepository returns the pending-save store selected by cfg.
func openRepository(cfg cliconfig.Config) (backup.Repository, func() error, error) {
	switch cfg.BackupStore {
	case cliconfig.StoreSQLite:
		repo, err := sqlite.Open(cfg.SQLitePath, cfg.BackupKey)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite backup: %w", err)
		}
		return repo, repo.Close, nil
	default:
		return backup.NewFileRepository(cfg.BackupDir, cfg.BackupKey), func() error { return nil }, nil
	}
}

// build assembles the Manager and its collaborators. extra options are
// appended after the defaults.
func (c *cli) build(extra ...connguard.Option) (*components, error) {
	cfg := c.cfg
	logger := log.NewZerologAdapterWithLogger(c.log)

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		return nil, err
	}

	backend := backendhttp.NewBackend(backendhttp.Config{
		BaseURL:     cfg.BackendURL,
		AnonKey:     cfg.AnonKey,
		AccessToken: cfg.AccessToken,
		Table:       cfg.Table,
	}, &http.Client{Timeout: cfg.HTTPTimeout}, logger)

	changes := connguard.NewChangeTracker()
	drafts := app.NewDrafts(app.DraftsConfig{RowID: cfg.RowID, Period: cfg.Period},
		fs.NewDraftFile(cfg.DraftPath), backend, changes, logger)

	opts := []connguard.Option{
		connguard.WithLogger(logger),
		connguard.WithRepository(repo),
		connguard.WithChangeTracker(changes),
	}
	if cfg.ProbeAddr != "" {
		opts = append(opts, connguard.WithProber(&netstatus.Prober{
			Address:  cfg.ProbeAddr,
			Interval: cfg.ProbeInterval,
		}))
	}
	opts = append(opts, extra...)

	m, err := connguard.New(connguard.Config{
		HeartbeatInterval:    cfg.HeartbeatInterval,
		HeartbeatTimeout:     cfg.HeartbeatTimeout,
		ReconnectBaseDelay:   cfg.ReconnectBaseDelay,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
		BackupFreshness:      cfg.BackupFreshness,
		SaveTimeout:          cfg.HTTPTimeout,
	}, drafts.Collaborators(backend), opts...)
	if err != nil {
		closeRepo()
		return nil, fmt.Errorf("create connguard: %w", err)
	}

	return &components{
		manager: m,
		drafts:  drafts,
		logger:  logger,
		closers: []func() error{closeRepo},
	}, nil
}
