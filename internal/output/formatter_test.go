package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/phishtrail/phishtrail/internal/scan"
	"github.com/phishtrail/phishtrail/internal/store"
)

// --- ResolveFormat tests ---

func TestResolveFormat_ExplicitFlag(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		tty      bool
		expected string
	}{
		{"json flag with tty", "json", true, "json"},
		{"json flag without tty", "json", false, "json"},
		{"text flag with tty", "text", true, "text"},
		{"text flag without tty", "text", false, "text"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveFormat(tc.flag, tc.tty)
			if got != tc.expected {
				t.Errorf("ResolveFormat(%q, %v) = %q, want %q", tc.flag, tc.tty, got, tc.expected)
			}
		})
	}
}

func TestResolveFormat_AutoDetect(t *testing.T) {
	if got := ResolveFormat("", true); got != "text" {
		t.Errorf("expected tty default 'text', got %q", got)
	}
	if got := ResolveFormat("", false); got != "json" {
		t.Errorf("expected piped default 'json', got %q", got)
	}
}

// --- NewFormatter tests ---

func TestNewFormatter_ValidFormats(t *testing.T) {
	for _, f := range []string{"json", "text"} {
		t.Run(f, func(t *testing.T) {
			formatter, err := NewFormatter(f)
			if err != nil {
				t.Fatalf("NewFormatter(%q) returned error: %v", f, err)
			}
			if formatter == nil {
				t.Fatalf("NewFormatter(%q) returned nil formatter", f)
			}
		})
	}
}

func TestNewFormatter_InvalidFormat(t *testing.T) {
	for _, f := range []string{"xml", "pretty", "", "unknown"} {
		t.Run(f, func(t *testing.T) {
			formatter, err := NewFormatter(f)
			if err == nil {
				t.Fatalf("NewFormatter(%q) expected error, got nil", f)
			}
			if formatter != nil {
				t.Fatalf("NewFormatter(%q) expected nil formatter on error, got %v", f, formatter)
			}
		})
	}
}

// --- fixtures ---

func intPtr(v int) *int { return &v }

func sampleResult() scan.Result {
	return scan.Result{
		ID:           "11111111-2222-3333-4444-555555555555",
		Timestamp:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		ScanType:     "url",
		ScannedInput: "http://paypal-secure.tk/login",
		OverallScore: intPtr(92),
		Label:        scan.LabelDangerous,
		Indicators: []scan.Indicator{
			{Name: "Suspicious TLD", Severity: scan.SeverityHigh, Explanation: ".tk domains are frequently abused"},
			{Name: "Brand name in subdomain", Severity: scan.SeverityMedium},
		},
		Education: []scan.Education{
			{Title: "Check the domain", Content: "Attackers imitate brands in subdomains."},
		},
	}
}

// --- JSONFormatter tests ---

func TestJSONFormatter_ResultRoundTrips(t *testing.T) {
	f := &JSONFormatter{}
	out, err := f.Result(sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	var got scan.Result
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got.Label != scan.LabelDangerous {
		t.Errorf("expected label preserved, got %q", got.Label)
	}
	if got.OverallScore == nil || *got.OverallScore != 92 {
		t.Errorf("expected score 92, got %v", got.OverallScore)
	}
	if !strings.HasPrefix(string(out), "{\n  ") {
		t.Error("expected indented JSON output")
	}
}

func TestJSONFormatter_HistoryIsArray(t *testing.T) {
	f := &JSONFormatter{}
	out, err := f.History([]scan.Result{sampleResult()}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	var got []scan.Result
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 entry, got %d", len(got))
	}
}

// --- TextFormatter tests ---

func TestTextFormatter_Result(t *testing.T) {
	f := &TextFormatter{}
	out, err := f.Result(sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)

	for _, want := range []string{
		"DANGEROUS  92/100  http://paypal-secure.tk/login",
		"[high]",
		"Suspicious TLD",
		".tk domains are frequently abused",
		"[medium]",
		"Learn why:",
		"Check the domain",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, text)
		}
	}
}

func TestTextFormatter_ResultQRChain(t *testing.T) {
	r := sampleResult()
	r.ScanType = "qr"
	r.QRExtractedURL = "http://bit.ly/abc"
	r.QRFinalURL = "http://evil.example/login"
	r.QRRedirectCount = 2

	f := &TextFormatter{}
	out, err := f.Result(r)
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)
	if !strings.Contains(text, "QR decodes to: http://bit.ly/abc") {
		t.Errorf("expected QR line, got:\n%s", text)
	}
	if !strings.Contains(text, "http://evil.example/login (2 redirects)") {
		t.Errorf("expected redirect line, got:\n%s", text)
	}
}

func TestTextFormatter_ResultWithoutScore(t *testing.T) {
	r := scan.Result{ScannedInput: "http://unreachable.example", Error: "timeout"}
	f := &TextFormatter{}
	out, err := f.Result(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "-  -/100") {
		t.Errorf("expected placeholder label and score, got:\n%s", out)
	}
}

func TestTextFormatter_Bulk(t *testing.T) {
	resp := scan.BulkResponse{
		Summary: scan.BulkSummary{
			Total:        3,
			Scanned:      2,
			Errors:       1,
			AvgScore:     51,
			HighestRisk:  92,
			Distribution: scan.Distribution{Safe: 1, Dangerous: 1},
		},
		Results: []scan.Result{
			{ScannedInput: "https://example.com", OverallScore: intPtr(10), Label: scan.LabelSafe},
			{ScannedInput: "http://evil.tk", OverallScore: intPtr(92), Label: scan.LabelDangerous},
			{ScannedInput: "http://unreachable.example", Error: "timeout"},
		},
	}

	f := &TextFormatter{}
	out, err := f.Bulk(resp)
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)

	for _, want := range []string{
		"Scanned 2 of 3 URLs (1 failed)  avg 51/100  highest 92/100",
		"safe 1 | suspicious 0 | dangerous 1",
		"SAFE",
		"DANGEROUS",
		"(timeout)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, text)
		}
	}
}

func TestTextFormatter_HistoryEmpty(t *testing.T) {
	f := &TextFormatter{}
	out, err := f.History(nil, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "No scans yet.\n" {
		t.Errorf("unexpected empty-history output: %q", out)
	}
}

func TestTextFormatter_HistoryShowsRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := sampleResult()
	r.Timestamp = now.Add(-2 * time.Hour)

	f := &TextFormatter{}
	out, err := f.History([]scan.Result{r}, now)
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)
	if !strings.Contains(text, "2h ago") {
		t.Errorf("expected relative time, got:\n%s", text)
	}
	if !strings.Contains(text, r.ID) {
		t.Errorf("expected full id in row, got:\n%s", text)
	}
}

func TestTextFormatter_Stats(t *testing.T) {
	s := store.Stats{
		TotalScans:   4,
		AverageScore: 48,
		Distribution: scan.Distribution{Safe: 2, Suspicious: 1, Dangerous: 1},
		ByType:       map[string]int{"url": 3, "email": 1},
		IndicatorFrequency: map[string]int{
			"Suspicious TLD":      3,
			"Brand impersonation": 3,
			"No HTTPS":            1,
		},
	}

	f := &TextFormatter{}
	out, err := f.Stats(s)
	if err != nil {
		t.Fatal(err)
	}
	text := string(out)

	if !strings.Contains(text, "Total scans: 4   Average score: 48/100") {
		t.Errorf("expected header line, got:\n%s", text)
	}
	// Ties sort by name, so Brand impersonation precedes Suspicious TLD.
	brand := strings.Index(text, "Brand impersonation")
	tld := strings.Index(text, "Suspicious TLD")
	https := strings.Index(text, "No HTTPS")
	if brand == -1 || tld == -1 || https == -1 {
		t.Fatalf("expected all indicators listed, got:\n%s", text)
	}
	if !(brand < tld && tld < https) {
		t.Errorf("expected count-desc name-asc order, got:\n%s", text)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 60); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	long := strings.Repeat("a", 80)
	got := truncate(long, 60)
	if len(got) != 60 || !strings.HasSuffix(got, "...") {
		t.Errorf("expected 60-char truncation with ellipsis, got %q (len %d)", got, len(got))
	}
}
