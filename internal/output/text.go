package output

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/phishtrail/phishtrail/internal/history"
	"github.com/phishtrail/phishtrail/internal/scan"
	"github.com/phishtrail/phishtrail/internal/store"
)

// TextFormatter renders human-readable terminal output suitable for
// interactive use. Machine consumers should use JSONFormatter instead.
type TextFormatter struct{}

// labelBanner returns the display form of a verdict label. Failed bulk items
// carry no label and render as "-".
func labelBanner(l scan.Label) string {
	if l == "" {
		return "-"
	}
	return strings.ToUpper(string(l))
}

// severityTag returns the bracketed display tag for an indicator severity.
func severityTag(s scan.Severity) string {
	switch s {
	case scan.SeverityHigh:
		return "[high]"
	case scan.SeverityMedium:
		return "[medium]"
	case scan.SeverityLow:
		return "[low]"
	default:
		return "[" + string(s) + "]"
	}
}

// scoreCell renders a score column entry, "-" when no score is present.
func scoreCell(r scan.Result) string {
	if v, ok := r.Score(); ok {
		return strconv.Itoa(v)
	}
	return "-"
}

func (f *TextFormatter) Result(r scan.Result) ([]byte, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  %s/100  %s\n", labelBanner(r.Label), scoreCell(r), r.ScannedInput))

	if r.QRExtractedURL != "" {
		b.WriteString(fmt.Sprintf("QR decodes to: %s\n", r.QRExtractedURL))
		if r.QRFinalURL != "" && r.QRFinalURL != r.QRExtractedURL {
			b.WriteString(fmt.Sprintf("Resolves to:   %s (%d redirects)\n", r.QRFinalURL, r.QRRedirectCount))
		}
	}

	if len(r.ExtractedURLs) > 0 {
		b.WriteString("\nURLs found in message:\n")
		for _, u := range r.ExtractedURLs {
			b.WriteString(fmt.Sprintf("  %s\n", u))
		}
	}

	if len(r.Indicators) > 0 {
		b.WriteString("\nIndicators:\n")
		for _, ind := range r.Indicators {
			b.WriteString(fmt.Sprintf("  %-9s %s\n", severityTag(ind.Severity), ind.Name))
			if ind.Explanation != "" {
				b.WriteString(fmt.Sprintf("            %s\n", ind.Explanation))
			}
		}
	}

	if len(r.Education) > 0 {
		b.WriteString("\nLearn why:\n")
		for _, e := range r.Education {
			b.WriteString(fmt.Sprintf("  %s: %s\n", e.Title, e.Content))
		}
	}

	return []byte(b.String()), nil
}

func (f *TextFormatter) Bulk(resp scan.BulkResponse) ([]byte, error) {
	var b strings.Builder

	s := resp.Summary
	b.WriteString(fmt.Sprintf("Scanned %d of %d URLs", s.Scanned, s.Total))
	if s.Errors > 0 {
		b.WriteString(fmt.Sprintf(" (%d failed)", s.Errors))
	}
	b.WriteString(fmt.Sprintf("  avg %d/100  highest %d/100\n", s.AvgScore, s.HighestRisk))
	b.WriteString(fmt.Sprintf("safe %d | suspicious %d | dangerous %d\n\n",
		s.Distribution.Safe, s.Distribution.Suspicious, s.Distribution.Dangerous))

	for _, r := range resp.Results {
		if r.Error != "" {
			b.WriteString(fmt.Sprintf("%-11s %3s  %s  (%s)\n", labelBanner(r.Label), "-", r.ScannedInput, r.Error))
			continue
		}
		b.WriteString(fmt.Sprintf("%-11s %3s  %s\n", labelBanner(r.Label), scoreCell(r), r.ScannedInput))
	}

	return []byte(b.String()), nil
}

func (f *TextFormatter) History(entries []scan.Result, now time.Time) ([]byte, error) {
	if len(entries) == 0 {
		return []byte("No scans yet.\n"), nil
	}

	var b strings.Builder
	for _, r := range entries {
		b.WriteString(fmt.Sprintf("%-12s %-11s %3s  %-5s %-60s %s\n",
			history.RelativeTime(now, r.Timestamp),
			labelBanner(r.Label),
			scoreCell(r),
			r.ScanType,
			truncate(r.ScannedInput, 60),
			r.ID))
	}
	return []byte(b.String()), nil
}

func (f *TextFormatter) Stats(s store.Stats) ([]byte, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Total scans: %d   Average score: %d/100\n", s.TotalScans, s.AverageScore))

	b.WriteString("\nDistribution:\n")
	b.WriteString(fmt.Sprintf("  %-11s %d\n", "safe", s.Distribution.Safe))
	b.WriteString(fmt.Sprintf("  %-11s %d\n", "suspicious", s.Distribution.Suspicious))
	b.WriteString(fmt.Sprintf("  %-11s %d\n", "dangerous", s.Distribution.Dangerous))

	if len(s.ByType) > 0 {
		types := make([]string, 0, len(s.ByType))
		for t := range s.ByType {
			types = append(types, t)
		}
		sort.Strings(types)
		b.WriteString("\nBy type:\n")
		for _, t := range types {
			b.WriteString(fmt.Sprintf("  %-6s %d\n", t, s.ByType[t]))
		}
	}

	if len(s.IndicatorFrequency) > 0 {
		type indicatorRow struct {
			name  string
			count int
		}
		rows := make([]indicatorRow, 0, len(s.IndicatorFrequency))
		for name, count := range s.IndicatorFrequency {
			rows = append(rows, indicatorRow{name, count})
		}
		// Highest count first; ties broken by name so output is stable.
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].count != rows[j].count {
				return rows[i].count > rows[j].count
			}
			return rows[i].name < rows[j].name
		})
		b.WriteString("\nTop indicators:\n")
		for _, row := range rows {
			b.WriteString(fmt.Sprintf("  %3d  %s\n", row.count, row.name))
		}
	}

	return []byte(b.String()), nil
}

// truncate shortens a string to maxLen characters, appending "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
