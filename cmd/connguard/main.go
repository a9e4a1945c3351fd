package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/connguard/internal/cliconfig"
)

const helpDescription = `
Keep a locally edited budget draft safe while the backend comes and goes.

Highlights:
  - Heartbeats the backend session and reconnects with exponential backoff.
  - Writes a pending-save backup on shutdown and restores it on next start.
  - Autosaves the draft whenever it changes and the backend is reachable.
  - Configure via file, environment (CONNGUARD_*) or flags.
`

var exampleUsage = strings.TrimSpace(`
  connguard run --backend-url https://xyz.supabase.co --anon-key <key> --draft ~/budget/draft.json
  connguard status --config $HOME/.connguard/config.toml
  connguard restore --draft ~/budget/draft.json
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// cli carries the configuration shared by every subcommand.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	log     zerolog.Logger
}

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	c := &cli{
		cfg: cliconfig.DefaultConfig(),
		log: cliconfig.Logger("info"),
	}

	root := &cobra.Command{
		Use:           "connguard",
		Short:         "Guard unsaved drafts against backend connectivity loss",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	c.bindFlags(root.PersistentFlags())
	root.AddCommand(c.runCommand(), c.statusCommand(), c.restoreCommand())

	if err := root.Execute(); err != nil {
		c.log.Error().Err(err).Msg("connguard")
		os.Exit(1)
	}
}

func (c *cli) bindFlags(fs *pflag.FlagSet) {
	cfg := &c.cfg

	fs.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.connguard/config.toml)")

	fs.StringVar(&cfg.BackendURL, "backend-url", cfg.BackendURL, "backend base URL")
	fs.StringVar(&cfg.AnonKey, "anon-key", cfg.AnonKey, "backend anonymous API key")
	fs.StringVar(&cfg.AccessToken, "access-token", cfg.AccessToken, "user access token")
	fs.StringVar(&cfg.Table, "table", cfg.Table, "REST table holding period documents")
	fs.StringVar(&cfg.RowID, "row-id", cfg.RowID, "row id to upsert (defaults to the period)")

	fs.StringVar(&cfg.DraftPath, "draft", cfg.DraftPath, "path to the local draft JSON file")
	fs.StringVar(&cfg.Period, "period", cfg.Period, "period being edited, e.g. 2024-05")

	fs.DurationVar(&cfg.HeartbeatInterval, "heartbeat-interval", cfg.HeartbeatInterval, "session check period")
	fs.DurationVar(&cfg.HeartbeatTimeout, "heartbeat-timeout", cfg.HeartbeatTimeout, "timeout of one session check")
	fs.DurationVar(&cfg.ReconnectBaseDelay, "reconnect-delay", cfg.ReconnectBaseDelay, "first reconnect delay (doubles per attempt)")
	fs.IntVar(&cfg.MaxReconnectAttempts, "max-reconnect-attempts", cfg.MaxReconnectAttempts, "reconnect attempts before giving up (1-30)")
	fs.DurationVar(&cfg.BackupFreshness, "backup-freshness", cfg.BackupFreshness, "maximum age of a restorable backup")
	fs.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")
	fs.DurationVar(&cfg.UnloadGrace, "unload-grace", cfg.UnloadGrace, "how long shutdown waits for the final save")
	fs.DurationVar(&cfg.AutosaveDebounce, "autosave-debounce", cfg.AutosaveDebounce, "quiet period before autosaving a changed draft (0 disables autosave; edits are still backed up on shutdown)")

	fs.StringVar(&cfg.BackupStore, "backup-store", cfg.BackupStore, "pending-save store: file or sqlite")
	fs.StringVar(&cfg.BackupDir, "backup-dir", cfg.BackupDir, "directory for the pending-save backup")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", cfg.SQLitePath, "SQLite database path (sqlite store)")
	fs.StringVar(&cfg.BackupKey, "backup-key", cfg.BackupKey, "storage key of the pending save")

	fs.StringVar(&cfg.ProbeAddr, "probe-addr", cfg.ProbeAddr, "host:port dialled to detect network connectivity")
	fs.DurationVar(&cfg.ProbeInterval, "probe-interval", cfg.ProbeInterval, "network probe period")

	fs.StringVar(&cfg.AMQPURL, "amqp-url", cfg.AMQPURL, "publish connectivity events to this AMQP broker (optional)")
	fs.StringVar(&cfg.AMQPExchange, "amqp-exchange", cfg.AMQPExchange, "AMQP topic exchange for events")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve Prometheus metrics on this address (optional)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
}

// loadConfig layers file, environment and flags (highest wins) and validates
// the result.
func (c *cli) loadConfig(cmd *cobra.Command) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, changed); err != nil {
		return err
	}

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	c.log = cliconfig.Logger(c.cfg.LogLevel)

	logCfg := c.cfg
	if logCfg.AnonKey != "" {
		logCfg.AnonKey = "*****"
	}
	if logCfg.AccessToken != "" {
		logCfg.AccessToken = "*****"
	}
	if logCfg.AMQPURL != "" {
		logCfg.AMQPURL = "*****"
	}
	c.log.Debug().Interface("config", logCfg).Msg("configuration")
	return nil
}
