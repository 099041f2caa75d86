package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/phishtrail/phishtrail/internal/history"
)

var (
	flagHistoryDelete string
	flagHistoryClear  bool
)

func init() {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show the scan history, newest first",
		RunE:  runHistory,
	}

	historyCmd.Flags().StringVar(&flagHistoryDelete, "delete", "", "Delete the scan with the given id")
	historyCmd.Flags().BoolVar(&flagHistoryClear, "clear", false, "Delete the entire scan history")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if flagHistoryDelete != "" && flagHistoryClear {
		return fmt.Errorf("--delete and --clear cannot be combined")
	}

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

	index := history.NewIndex(sessions)

	switch {
	case flagHistoryClear:
		index.Clear(ctx)
	case flagHistoryDelete != "":
		if _, ok := index.ByID(flagHistoryDelete); !ok {
			return fmt.Errorf("no scan with id %s", flagHistoryDelete)
		}
		index.Delete(ctx, flagHistoryDelete)
	}

	formatter, err := newOutputFormatter()
	if err != nil {
		return err
	}
	rendered, err := formatter.History(index.Entries(), time.Now())
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	printRendered(rendered)
	return nil
}
