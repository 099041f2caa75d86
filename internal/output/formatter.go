// Package output renders scan results, history, and session stats for the
// CLI in different output formats (JSON, plain terminal text) and configures
// logging.
package output

import (
	"fmt"
	"time"

	"github.com/phishtrail/phishtrail/internal/scan"
	"github.com/phishtrail/phishtrail/internal/store"
)

// Formatter renders phishtrail payloads into a byte slice in a specific format.
type Formatter interface {
	Result(r scan.Result) ([]byte, error)
	Bulk(b scan.BulkResponse) ([]byte, error)
	History(entries []scan.Result, now time.Time) ([]byte, error)
	Stats(s store.Stats) ([]byte, error)
}

// ResolveFormat determines the output format to use. If flagValue is non-empty,
// it is returned directly. Otherwise, "text" is returned for TTY output and
// "json" for non-TTY (piped) output.
func ResolveFormat(flagValue string, stdoutIsTTY bool) string {
	if flagValue != "" {
		return flagValue
	}
	if stdoutIsTTY {
		return "text"
	}
	return "json"
}

// NewFormatter returns a Formatter for the given format name.
// Supported formats: "json", "text".
// Returns an error for unknown format names.
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "json":
		return &JSONFormatter{}, nil
	case "text":
		return &TextFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %q (supported: json, text)", format)
	}
}
