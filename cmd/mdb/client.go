package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dylanjw/mdb/internal/client"
	"github.com/spf13/cobra"
)

var timeout time.Duration

var getCmd = &cobra.Command{
	Use:   "get KEY [KEY...]",
	Short: "Fetch keys from a running server",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		values, err := c.Get(args...)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set KEY VALUE [KEY VALUE...]",
	Short: "Store key/value pairs on a running server",
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 || len(args)%2 != 0 {
			return fmt.Errorf("expected KEY VALUE pairs, got %d arguments", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := c.Set(args...); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "success")
		return nil
	},
}

func init() {
	getCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Request timeout")
	setCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Request timeout")
}

func newClient(cmd *cobra.Command) (*client.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return client.New(cfg.Addr(), timeout), nil
}
