package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phishtrail/phishtrail/internal/orchestrator"
	"github.com/phishtrail/phishtrail/internal/scan"
)

func init() {
	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a URL, email, QR image, or URL batch for phishing risk",
	}

	scanURLCmd := &cobra.Command{
		Use:   "url <url>",
		Short: "Scan a single URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runScanURL,
	}

	scanEmailCmd := &cobra.Command{
		Use:   "email [file]",
		Short: "Scan email content from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScanEmail,
	}

	scanQRCmd := &cobra.Command{
		Use:   "qr <image>",
		Short: "Scan a QR code image",
		Args:  cobra.ExactArgs(1),
		RunE:  runScanQR,
	}

	scanBulkCmd := &cobra.Command{
		Use:   "bulk [file]",
		Short: "Scan up to 10 URLs, one per line, from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScanBulk,
	}

	scanCmd.AddCommand(scanURLCmd, scanEmailCmd, scanQRCmd, scanBulkCmd)
	rootCmd.AddCommand(scanCmd)
}

func runScanURL(cmd *cobra.Command, args []string) error {
	return runScan(orchestrator.ModeURL, func(ctx context.Context, orch *orchestrator.Orchestrator) (*orchestrator.Outcome, error) {
		return orch.ScanURL(ctx, args[0])
	})
}

func runScanEmail(cmd *cobra.Command, args []string) error {
	content, err := readInput(args)
	if err != nil {
		return err
	}
	return runScan(orchestrator.ModeEmail, func(ctx context.Context, orch *orchestrator.Orchestrator) (*orchestrator.Outcome, error) {
		return orch.ScanEmail(ctx, content)
	})
}

func runScanQR(cmd *cobra.Command, args []string) error {
	image, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading QR image: %w", err)
	}
	filename := filepath.Base(args[0])
	return runScan(orchestrator.ModeQR, func(ctx context.Context, orch *orchestrator.Orchestrator) (*orchestrator.Outcome, error) {
		return orch.ScanQR(ctx, filename, image)
	})
}

func runScanBulk(cmd *cobra.Command, args []string) error {
	content, err := readInput(args)
	if err != nil {
		return err
	}
	urls := orchestrator.SplitBulkInput(content)
	return runScan(orchestrator.ModeBulk, func(ctx context.Context, orch *orchestrator.Orchestrator) (*orchestrator.Outcome, error) {
		return orch.ScanBulk(ctx, urls)
	})
}

// runScan wires config, telemetry, the session store, and the orchestrator
// around a single dispatch, then renders the outcome.
func runScan(mode orchestrator.Mode, dispatch func(context.Context, *orchestrator.Orchestrator) (*orchestrator.Outcome, error)) error {
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

	out, err := dispatch(ctx, orch)
	if err != nil {
		slog.Debug("scan failed", "mode", mode, "err", err)
		return errors.New(orchestrator.UserMessage(mode, err))
	}

	formatter, err := newOutputFormatter()
	if err != nil {
		return err
	}

	var rendered []byte
	if out.Bulk != nil {
		rendered, err = formatter.Bulk(*out.Bulk)
	} else {
		rendered, err = formatter.Result(displayResult(out))
	}
	if err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	printRendered(rendered)
	return nil
}

// displayResult prefers the saved entry, which carries the store-assigned id
// and timestamp.
func displayResult(out *orchestrator.Outcome) scan.Result {
	if len(out.Saved) > 0 {
		return out.Saved[0]
	}
	return *out.Result
}
