package scan

// Label is the service's verdict tier for a scored result.
type Label string

const (
	LabelSafe       Label = "safe"
	LabelSuspicious Label = "suspicious"
	LabelDangerous  Label = "dangerous"

	// LabelError marks a failed bulk item; it never appears on a
	// persisted single-scan result.
	LabelError Label = "error"
)

// Valid reports whether l is one of the scored verdict tiers.
func (l Label) Valid() bool {
	switch l {
	case LabelSafe, LabelSuspicious, LabelDangerous:
		return true
	}
	return false
}

// Severity tiers an indicator. The service derives it from the indicator's
// weight: high at 0.7 and above, medium at 0.4, low below that.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Distribution counts results per verdict tier. Failed bulk items are not
// persisted and therefore never counted.
type Distribution struct {
	Safe       int `json:"safe"`
	Suspicious int `json:"suspicious"`
	Dangerous  int `json:"dangerous"`
}

// Add increments the bucket for l. Unknown labels are ignored so old
// records with unexpected verdicts cannot skew the tally.
func (d *Distribution) Add(l Label) {
	switch l {
	case LabelSafe:
		d.Safe++
	case LabelSuspicious:
		d.Suspicious++
	case LabelDangerous:
		d.Dangerous++
	}
}

// Total returns the number of counted results.
func (d Distribution) Total() int {
	return d.Safe + d.Suspicious + d.Dangerous
}
