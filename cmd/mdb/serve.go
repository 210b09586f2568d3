package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dylanjw/mdb/internal/admin"
	"github.com/dylanjw/mdb/internal/handler"
	"github.com/dylanjw/mdb/internal/metrics"
	"github.com/dylanjw/mdb/internal/server"
	"github.com/dylanjw/mdb/internal/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the store-backed server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// --- Configuration ---
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	// --- Store ---
	// The backing file must already exist; `mdb init` creates an empty one.
	st, err := store.Open(cfg.DBFile, logger.Named("store"))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	m := metrics.New()
	st.SetObserver(m)
	logger.Info("store loaded", "path", cfg.DBFile, "keys", st.Len())

	// --- Handlers and server ---
	db := handler.NewDatabase(st, m, logger.Named("db"))
	dispatcher := handler.NewDispatcher(db.Table(), logger.Named("dispatch"))
	srv := server.New(server.Options{
		Addr:           cfg.Addr(),
		ReadBufferSize: cfg.ReadBuffer,
		ReadTimeout:    time.Duration(cfg.ReadTimeout),
	}, dispatcher, m, logger.Named("server"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Optional admin listener ---
	if cfg.MetricsAddr != "" {
		adm := admin.New(cfg.MetricsAddr, st, m.Handler(), logger.Named("admin"))
		go func() {
			if err := adm.Start(); err != nil {
				logger.Error("admin listener failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			adm.Shutdown(shutdownCtx)
		}()
	}

	if err := srv.ListenAndServe(ctx); err != nil {
		return err
	}
	logger.Info("shut down cleanly")
	return nil
}
