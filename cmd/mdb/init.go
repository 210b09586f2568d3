package main

import (
	"fmt"

	"github.com/dylanjw/mdb/internal/persistence"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an empty backing file if none exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		created, err := persistence.Init(cfg.DBFile)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", cfg.DBFile, err)
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", cfg.DBFile)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", cfg.DBFile)
		}
		return nil
	},
}
