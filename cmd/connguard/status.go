package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bft-labs/connguard/pkg/connguard"
)

func (c *cli) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the backend session once and print the connection status as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}

			comp, err := c.build()
			if err != nil {
				return err
			}
			defer comp.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), c.cfg.HeartbeatTimeout+c.cfg.HTTPTimeout)
			defer cancel()

			if err := comp.manager.CheckConnection(ctx); err != nil {
				c.log.Debug().Err(err).Msg("session check failed")
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(comp.manager.Status()); err != nil {
				return fmt.Errorf("encode status: %w", err)
			}
			return nil
		},
	}
}

func (c *cli) restoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore a fresh pending-save backup into the draft and push it to the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(cmd); err != nil {
				return err
			}

			comp, err := c.build()
			if err != nil {
				return err
			}
			defer comp.Close()

			restored, err := comp.manager.Restore(cmd.Context())
			if errors.Is(err, connguard.ErrStaleBackup) {
				fmt.Fprintln(os.Stdout, "pending save is too old, left in place")
				return nil
			}
			if err != nil {
				return err
			}
			if !restored {
				fmt.Fprintln(os.Stdout, "no pending save to restore")
				return nil
			}
			fmt.Fprintln(os.Stdout, "pending save restored")
			return nil
		},
	}
}
