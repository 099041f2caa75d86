package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/phishtrail/phishtrail/internal/api"
	"github.com/phishtrail/phishtrail/internal/orchestrator"
)

var flagServeAddr string

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local JSON API for browser companions",
		RunE:  runServe,
	}

	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "Listen address (default from config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	shutdownTelemetry, err := initTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTelemetry()

	sessions, err := openSession(ctx, cfg)
	if err != nil {
		return err
	}
	defer sessions.Close()

	orch := orchestrator.New(newScanner(cfg), sessions)
	server := api.NewServer(orch, sessions, slog.Default())

	addr := flagServeAddr
	if addr == "" {
		addr = cfg.Serve.Addr
	}
	return server.Start(ctx, addr)
}
