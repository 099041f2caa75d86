package scan

// BulkResponse is the service's answer to a multi-URL scan. Results keeps
// the request order; failed items carry a nil score and an Error string.
type BulkResponse struct {
	Summary BulkSummary `json:"summary"`
	Results []Result    `json:"results"`
}

// BulkSummary aggregates the scored items of a bulk response. Failed items
// count toward Total and Errors only.
type BulkSummary struct {
	Total        int          `json:"total"`
	Scanned      int          `json:"scanned"`
	Errors       int          `json:"errors"`
	AvgScore     int          `json:"avg_score"`
	HighestRisk  int          `json:"highest_risk"`
	Distribution Distribution `json:"distribution"`
}
