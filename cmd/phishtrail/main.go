package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/phishtrail/phishtrail/internal/output"
)

var (
	// Version information injected by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagQuiet   bool
	flagVerbose bool
	flagDebug   bool
	flagFormat  string
	flagAPIURL  string
)

var rootCmd = &cobra.Command{
	Use:     "phishtrail",
	Short:   "Phishing risk scanner for URLs, emails, and QR codes",
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(output.SetupLogger(flagQuiet, flagVerbose, flagDebug, os.Stderr))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("phishtrail %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built at: %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagQuiet, "quiet", false, "Suppress all log output")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable info-level logs")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug-level logs")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "", "Output format: json or text (default: text on a TTY, json when piped)")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Scanning service base URL (overrides config and PHISHTRAIL_API_URL)")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
