package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/connguard/internal/adapters/amqp"
	"github.com/bft-labs/connguard/internal/adapters/metrics"
	"github.com/bft-labs/connguard/internal/cliconfig"
	"github.com/bft-labs/connguard/pkg/connguard"
	"github.com/bft-labs/connguard/pkg/log"
	"github.com/bft-labs/connguard/plugins/draftwatcher"
)

func (c *cli) runCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Watch the draft, heartbeat the backend and back up on shutdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}
			return c.run()
		},
	}
}

// draftWatcherConfig maps the CLI settings onto the watcher. The watcher is
// the agent's only source of MarkUnsaved, so it runs even with autosave off.
func draftWatcherConfig(cfg cliconfig.Config) draftwatcher.Config {
	return draftwatcher.Config{
		Path:            cfg.DraftPath,
		DebounceDelay:   cfg.AutosaveDebounce,
		RetryInterval:   cfg.HeartbeatInterval,
		SaveTimeout:     cfg.HTTPTimeout,
		DisableAutosave: cfg.AutosaveDebounce == 0,
	}
}

func (c *cli) run() error {
	cfg := c.cfg

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	extra := []connguard.Option{
		draftwatcher.WithDraftWatcher(draftWatcherConfig(cfg)),
	}

	var prom *metrics.Listener
	if cfg.MetricsAddr != "" {
		prom = metrics.NewListener()
		extra = append(extra, connguard.WithListener(prom))
	}

	var events *amqp.Listener
	if cfg.AMQPURL != "" {
		client, err := amqp.Dial(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		defer client.Close()
		events = amqp.NewListener(client, log.NewZerologAdapterWithLogger(c.log))
		extra = append(extra, connguard.WithListener(events))
	}

	comp, err := c.build(extra...)
	if err != nil {
		return err
	}
	defer comp.Close()
	m := comp.manager

	if events != nil {
		go events.Run(ctx)
	}

	if prom != nil {
		srv := metrics.NewServer(cfg.MetricsAddr, prom.Registry(), comp.logger)
		if err := srv.Start(); err != nil {
			return err
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer stopCancel()
			srv.Stop(stopCtx)
		}()
	}

	if m.RestoreFromBackup(ctx) {
		now := time.Now()
		if prom != nil {
			prom.Recovered()
		}
		if events != nil {
			events.Recovered(now)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if err := m.Start(ctx); err != nil {
		return fmt.Errorf("start connguard: %w", err)
	}
	if err := m.CheckConnection(ctx); err != nil {
		c.log.Warn().Err(err).Msg("initial session check failed")
	}

	sig := <-sigCh
	c.log.Info().Str("signal", sig.String()).Msg("received signal, stopping...")

	ev := connguard.NewTeardownEvent()
	m.HandleTeardown(ev)
	if ev.Deferred() && !ev.Wait(cfg.UnloadGrace) {
		c.log.Warn().Dur("grace", cfg.UnloadGrace).Msg("final save still running, backup kept")
	}

	if err := m.Stop(); err != nil {
		return fmt.Errorf("stop connguard: %w", err)
	}
	return nil
}
