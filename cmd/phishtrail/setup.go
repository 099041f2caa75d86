package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phishtrail/phishtrail/internal/client"
	"github.com/phishtrail/phishtrail/internal/config"
	"github.com/phishtrail/phishtrail/internal/output"
	"github.com/phishtrail/phishtrail/internal/store"
	"github.com/phishtrail/phishtrail/internal/telemetry"
)

// loadConfig loads the tiered configuration and applies root flag overrides.
func loadConfig() (*config.Config, error) {
	machineConfig := os.ExpandEnv("$HOME/.config/phishtrail/config.yaml")
	projectConfig := ".phishtrail/config.yaml"
	cfg, err := config.LoadTiered(machineConfig, projectConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if flagAPIURL != "" {
		cfg.API.BaseURL = flagAPIURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// dataDir resolves the directory for persistent backends, defaulting to the
// per-user data directory.
func dataDir(cfg *config.Config) (string, error) {
	if cfg.Storage.Dir != "" {
		return cfg.Storage.Dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "phishtrail"), nil
}

// openBackend builds the configured storage backend.
func openBackend(cfg *config.Config) (store.Backend, error) {
	switch cfg.Storage.Backend {
	case "memory":
		return store.NewMemoryBackend(), nil
	case "file":
		dir, err := dataDir(cfg)
		if err != nil {
			return nil, err
		}
		return store.NewFileBackend(dir), nil
	case "sqlite":
		dir, err := dataDir(cfg)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return store.NewSQLiteBackend(filepath.Join(dir, "phishtrail.db"))
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}

// openSession opens the scan history in the configured backend. A backend
// that cannot be read leaves the session usable in memory-only mode.
func openSession(ctx context.Context, cfg *config.Config) (*store.SessionStore, error) {
	backend, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	var opts []store.Option
	if cfg.Storage.Record != "" {
		opts = append(opts, store.WithRecordName(cfg.Storage.Record))
	}

	sessions := store.New(backend, opts...)
	if err := sessions.Open(ctx); err != nil {
		return nil, fmt.Errorf("opening scan history: %w", err)
	}
	return sessions, nil
}

// newScanner builds the scanning service client from config.
func newScanner(cfg *config.Config) *client.Client {
	return client.New(cfg.API.BaseURL,
		client.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second),
		client.WithUserAgent("phishtrail/"+version),
	)
}

// initTelemetry starts OTel providers and returns a shutdown func suitable
// for defer.
func initTelemetry(ctx context.Context, cfg *config.Config) (func(), error) {
	shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: telemetry shutdown error: %v", err)
		}
	}, nil
}

// newOutputFormatter resolves the output format from the --format flag and
// whether stdout is a terminal.
func newOutputFormatter() (output.Formatter, error) {
	isTTY := false
	if fi, err := os.Stdout.Stat(); err == nil {
		isTTY = fi.Mode()&os.ModeCharDevice != 0
	}
	return output.NewFormatter(output.ResolveFormat(flagFormat, isTTY))
}

// printRendered writes formatter output followed by exactly one newline.
func printRendered(rendered []byte) {
	fmt.Println(strings.TrimRight(string(rendered), "\n"))
}

// readInput returns the contents of the file argument, or stdin when no
// argument (or "-") is given.
func readInput(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}
