package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func init() {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate statistics for the scan history",
		RunE:  runStats,
	}

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
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

	formatter, err := newOutputFormatter()
	if err != nil {
		return err
	}
	rendered, err := formatter.Stats(sessions.Stats())
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	printRendered(rendered)
	return nil
}
