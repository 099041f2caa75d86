// Package scan defines the result shapes exchanged with the remote risk
// analyzer and persisted in the local session store. Field names mirror the
// service's JSON payloads; older persisted records may omit any of the
// optional fields and must still load cleanly.
package scan

import "time"

// Result is one scan outcome. ID and Timestamp are assigned by the session
// store at save time and are empty on results fresh off the wire.
type Result struct {
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`

	ScanType     string `json:"scan_type"`
	ScannedInput string `json:"scanned_input"`

	// OverallScore is nil only on failed bulk items; persisted results
	// always carry a score in [0,100].
	OverallScore *int  `json:"overall_score"`
	Label        Label `json:"label"`

	SubScores  SubScores   `json:"sub_scores,omitempty"`
	Indicators []Indicator `json:"indicators,omitempty"`
	Intel      *Intel      `json:"intel,omitempty"`
	Education  []Education `json:"education,omitempty"`

	APIStatus map[string]string `json:"api_status,omitempty"`
	MLStatus  string            `json:"ml_status,omitempty"`

	// Error is set on failed bulk items in place of a score.
	Error string `json:"error,omitempty"`

	// Set when the service decoded a QR image (scan_type "qr").
	QRExtractedURL  string `json:"qr_extracted_url,omitempty"`
	QRFinalURL      string `json:"qr_final_url,omitempty"`
	QRRedirectCount int    `json:"qr_redirect_count,omitempty"`

	// Set on email scans when the service extracted embedded URLs.
	ExtractedURLs []string `json:"extracted_urls,omitempty"`
}

// Score returns the overall score and whether one is present.
func (r Result) Score() (int, bool) {
	if r.OverallScore == nil {
		return 0, false
	}
	return *r.OverallScore, true
}

// SubScores break the overall score into the service's four layers.
type SubScores struct {
	Domain        int `json:"domain"`
	Structural    int `json:"structural"`
	Language      int `json:"language"`
	APIReputation int `json:"api_reputation"`
}

// Indicator is a named threat signal with a severity tier.
type Indicator struct {
	Name        string   `json:"name"`
	Severity    Severity `json:"severity"`
	Explanation string   `json:"explanation,omitempty"`
}

// Education is a learn-why tip the service attaches to a result.
type Education struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
