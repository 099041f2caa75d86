package orchestrator

import (
	"strings"
)

// maxBulkURLs is the most URLs one bulk request may carry.
const maxBulkURLs = 10

// minEmailLength is the shortest email body worth analyzing.
const minEmailLength = 10

// ValidationError is a local pre-flight rejection. It never reaches the
// scanning service.
type ValidationError struct {
	Mode   Mode
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// SplitBulkInput turns newline-separated text into the URL list a bulk scan
// takes. Lines are trimmed and empty lines dropped.
func SplitBulkInput(text string) []string {
	var urls []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}

func validateURL(raw string) (string, *ValidationError) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &ValidationError{Mode: ModeURL, Reason: "URL cannot be empty"}
	}
	return trimmed, nil
}

func validateEmail(content string) (string, *ValidationError) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", &ValidationError{Mode: ModeEmail, Reason: "Email content cannot be empty"}
	}
	if len(trimmed) < minEmailLength {
		return "", &ValidationError{Mode: ModeEmail, Reason: "Email content is too short to analyze meaningfully"}
	}
	return trimmed, nil
}

func validateQR(filename string, image []byte) *ValidationError {
	if filename == "" || len(image) == 0 {
		return &ValidationError{Mode: ModeQR, Reason: "No QR image provided"}
	}
	return nil
}

func validateBulk(urls []string) ([]string, *ValidationError) {
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil, &ValidationError{Mode: ModeBulk, Reason: "URL list cannot be empty"}
	}
	if len(cleaned) > maxBulkURLs {
		return nil, &ValidationError{Mode: ModeBulk, Reason: "Maximum 10 URLs per bulk scan"}
	}
	return cleaned, nil
}
