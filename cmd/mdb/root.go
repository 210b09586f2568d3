package main

import (
	"fmt"
	"os"

	"github.com/dylanjw/mdb/internal/config"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	host        string
	port        int
	dbFile      string
	metricsAddr string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "mdb",
	Short: "A minimal key-value store spoken over an HTTP-like text protocol",
	Long: `mdb keeps string keys and values in memory, mirrors every write to a
JSON file, and answers /get?k1&k2 and /set?k=v requests over TCP.`,
	SilenceUsage: true,
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mdb:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to a TOML or YAML config file")
	flags.StringVar(&host, "host", "", "Host to listen on or connect to")
	flags.IntVarP(&port, "port", "p", 0, "Port to listen on or connect to")
	flags.StringVar(&dbFile, "db", "", "Backing JSON file")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "Address for the /metrics and /health listener")
	flags.StringVar(&logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	rootCmd.AddCommand(serveCmd, initCmd, getCmd, setCmd)
}

// loadConfig applies defaults, then the config file, then any flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.New()
	if configFile != "" {
		if err := cfg.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = host
	}
	if flags.Changed("port") {
		cfg.Port = port
	}
	if flags.Changed("db") {
		cfg.DBFile = dbFile
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:  "mdb",
		Level: hclog.LevelFromString(cfg.LogLevel),
	})
}
