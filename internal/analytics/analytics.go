// Package analytics computes dashboard views from a history snapshot. Every
// view is recomputed fully on each call; history size is bounded by local
// storage quota, not scale, so incremental state would buy nothing.
package analytics

import (
	"math"
	"sort"

	"github.com/phishtrail/phishtrail/internal/scan"
)

// DefaultTopIndicators is the dashboard's indicator table size.
const DefaultTopIndicators = 6

// LabelCount is one verdict tier and how many results carry it.
type LabelCount struct {
	Label scan.Label `json:"label"`
	Count int        `json:"count"`
}

// IndicatorCount is one indicator name and how often it appeared across the
// history.
type IndicatorCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Report is the dashboard payload.
type Report struct {
	TotalScans    int              `json:"total_scans"`
	AverageScore  int              `json:"average_score"`
	Distribution  []LabelCount     `json:"distribution"`
	TopIndicators []IndicatorCount `json:"top_indicators"`
}

// Distribution counts results per verdict, one entry per non-zero label in
// safe, suspicious, dangerous order.
func Distribution(results []scan.Result) []LabelCount {
	var dist scan.Distribution
	for _, r := range results {
		dist.Add(r.Label)
	}

	out := make([]LabelCount, 0, 3)
	for _, lc := range []LabelCount{
		{Label: scan.LabelSafe, Count: dist.Safe},
		{Label: scan.LabelSuspicious, Count: dist.Suspicious},
		{Label: scan.LabelDangerous, Count: dist.Dangerous},
	} {
		if lc.Count > 0 {
			out = append(out, lc)
		}
	}
	return out
}

// TopIndicators returns the n most frequent indicator names in descending
// order. Ties keep the order the names first appeared in the history.
func TopIndicators(results []scan.Result, n int) []IndicatorCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for _, r := range results {
		for _, ind := range r.Indicators {
			if _, seen := counts[ind.Name]; !seen {
				firstSeen[ind.Name] = len(firstSeen)
			}
			counts[ind.Name]++
		}
	}

	ranked := make([]IndicatorCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, IndicatorCount{Name: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Name] < firstSeen[ranked[j].Name]
	})

	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// Build assembles the full dashboard payload from a snapshot.
func Build(results []scan.Result) Report {
	report := Report{
		TotalScans:    len(results),
		Distribution:  Distribution(results),
		TopIndicators: TopIndicators(results, DefaultTopIndicators),
	}

	sum, scored := 0, 0
	for _, r := range results {
		if v, ok := r.Score(); ok {
			sum += v
			scored++
		}
	}
	if scored > 0 {
		report.AverageScore = int(math.Round(float64(sum) / float64(scored)))
	}
	return report
}
