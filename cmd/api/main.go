package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farm-platform/internal/infrastructure/config"
	"farm-platform/internal/infrastructure/db"
	"farm-platform/internal/infrastructure/logging"
	httpapi "farm-platform/internal/interface/http"

	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "api",
		Short: "Start the farm platform HTTP API",
		RunE:  runServer,
	}
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "config.yaml", "path to config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Pretty)
	logger.Info("configuration loaded", "addr", cfg.HTTP.Addr, "timezone", cfg.Report.Timezone)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := db.Connect(connectCtx, cfg.DB)
	cancel()
	switch {
	case err != nil:
		logger.Warn("database connection failed, falling back to in-memory store", "error", err.Error())
		pool = nil
	case pool == nil:
		logger.Info("no DB_DSN provided, running with in-memory store")
	default:
		defer pool.Close()
		logger.Info("database connected")
	}

	srv := httpapi.NewServer(cfg, pool, logger)
	logger.Info("starting HTTP server", "addr", cfg.HTTP.Addr)
	if err := srv.ListenAndServe(ctx, cfg.HTTP.Addr); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	logger.Info("server shut down")
	return nil
}
