// internal/client/client_test.go
package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phishtrail/phishtrail/internal/scan"
)

func TestClient_ScanURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/scan/url" {
			t.Errorf("Expected /scan/url, got %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Error("Expected Content-Type: application/json header")
		}

		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["url"] != "https://suspicious.example" {
			t.Errorf("unexpected url in request: %q", req["url"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"scan_type":     "url",
			"scanned_input": "https://suspicious.example",
			"overall_score": 72,
			"label":         "dangerous",
			"sub_scores":    map[string]int{"domain": 80, "structural": 60, "language": 0, "api_reputation": 75},
			"indicators": []map[string]string{
				{"name": "suspicious_tld", "severity": "high", "explanation": "TLD is frequently abused"},
			},
			"api_status": map[string]string{"virustotal": "available"},
		})
	}))
	defer server.Close()

	c := New(server.URL)
	got, err := c.ScanURL(context.Background(), "https://suspicious.example")
	if err != nil {
		t.Fatalf("ScanURL() error = %v", err)
	}

	score, ok := got.Score()
	if !ok || score != 72 {
		t.Errorf("Score() = %d, %v, want 72, true", score, ok)
	}
	if got.Label != scan.LabelDangerous {
		t.Errorf("Label = %s, want dangerous", got.Label)
	}
	if got.SubScores.Domain != 80 {
		t.Errorf("SubScores.Domain = %d, want 80", got.SubScores.Domain)
	}
	if len(got.Indicators) != 1 || got.Indicators[0].Severity != scan.SeverityHigh {
		t.Errorf("unexpected indicators: %+v", got.Indicators)
	}
	if got.APIStatus["virustotal"] != "available" {
		t.Errorf("unexpected api_status: %v", got.APIStatus)
	}
}

func TestClient_ScanEmail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scan/email" {
			t.Errorf("Expected /scan/email, got %s", r.URL.Path)
		}
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if !strings.Contains(req["content"], "verify your account") {
			t.Errorf("unexpected content in request: %q", req["content"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"scan_type":      "email",
			"scanned_input":  "Dear user, verify your account...",
			"overall_score":  55,
			"label":          "suspicious",
			"extracted_urls": []string{"http://phish.example/login"},
		})
	}))
	defer server.Close()

	c := New(server.URL)
	got, err := c.ScanEmail(context.Background(), "Dear user, verify your account now or it will be closed")
	if err != nil {
		t.Fatalf("ScanEmail() error = %v", err)
	}
	if got.ScanType != "email" {
		t.Errorf("ScanType = %s, want email", got.ScanType)
	}
	if len(got.ExtractedURLs) != 1 {
		t.Errorf("expected 1 extracted url, got %d", len(got.ExtractedURLs))
	}
}

func TestClient_ScanQR(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scan/qr" {
			t.Errorf("Expected /scan/qr, got %s", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("expected multipart file field: %v", err)
		}
		defer file.Close()

		if header.Filename != "code.png" {
			t.Errorf("filename = %s, want code.png", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
			t.Errorf("part content type = %s, want image/*", ct)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"scan_type":         "qr",
			"scanned_input":     "https://final.example",
			"overall_score":     35,
			"label":             "suspicious",
			"qr_extracted_url":  "https://short.example/x",
			"qr_final_url":      "https://final.example",
			"qr_redirect_count": 2,
		})
	}))
	defer server.Close()

	c := New(server.URL)
	got, err := c.ScanQR(context.Background(), "code.png", []byte{0x89, 'P', 'N', 'G'})
	if err != nil {
		t.Fatalf("ScanQR() error = %v", err)
	}
	if got.ScanType != "qr" {
		t.Errorf("ScanType = %s, want qr", got.ScanType)
	}
	if got.QRFinalURL != "https://final.example" || got.QRRedirectCount != 2 {
		t.Errorf("unexpected qr fields: %+v", got)
	}
}

func TestClient_ScanBulk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scan/bulk" {
			t.Errorf("Expected /scan/bulk, got %s", r.URL.Path)
		}
		var req map[string][]string
		json.NewDecoder(r.Body).Decode(&req)
		if len(req["urls"]) != 2 {
			t.Errorf("expected 2 urls, got %d", len(req["urls"]))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"summary": {
				"total": 2, "scanned": 1, "errors": 1,
				"avg_score": 20, "highest_risk": 20,
				"distribution": {"safe": 1, "suspicious": 0, "dangerous": 0}
			},
			"results": [
				{"scan_type": "url", "scanned_input": "https://ok.example", "overall_score": 20, "label": "safe"},
				{"scan_type": "url", "scanned_input": "://broken", "overall_score": null, "label": "error", "error": "Invalid URL format"}
			]
		}`))
	}))
	defer server.Close()

	c := New(server.URL)
	got, err := c.ScanBulk(context.Background(), []string{"https://ok.example", "://broken"})
	if err != nil {
		t.Fatalf("ScanBulk() error = %v", err)
	}

	if got.Summary.Total != 2 || got.Summary.Errors != 1 {
		t.Errorf("unexpected summary: %+v", got.Summary)
	}
	if got.Summary.Distribution.Safe != 1 {
		t.Errorf("unexpected distribution: %+v", got.Summary.Distribution)
	}
	if len(got.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got.Results))
	}
	if _, ok := got.Results[0].Score(); !ok {
		t.Error("first result should carry a score")
	}
	if _, ok := got.Results[1].Score(); ok {
		t.Error("failed item should have no score")
	}
	if got.Results[1].Error != "Invalid URL format" {
		t.Errorf("failed item error = %q", got.Results[1].Error)
	}
}

func TestClient_ServerError_DetailString(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"detail": "scan engine temporarily unavailable"}`))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.ScanURL(context.Background(), "https://example.com")

	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if se.Status != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want 503", se.Status)
	}
	if se.Message != "scan engine temporarily unavailable" {
		t.Errorf("Message = %q", se.Message)
	}
}

func TestClient_ServerError_DetailArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail": [{"msg": "URL cannot be empty"}, {"msg": "second problem"}]}`))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.ScanURL(context.Background(), "")

	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if se.Message != "URL cannot be empty" {
		t.Errorf("Message = %q, want first detail msg", se.Message)
	}
	if len(se.Detail) != 2 {
		t.Errorf("Detail = %v, want 2 messages", se.Detail)
	}
}

func TestClient_ServerError_UnparseableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.ScanURL(context.Background(), "https://example.com")

	var se *ServerError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServerError, got %v", err)
	}
	if se.Message != "" {
		t.Errorf("Message = %q, want empty for unparseable body", se.Message)
	}
}

func TestClient_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse all connections

	c := New(server.URL)
	_, err := c.ScanURL(context.Background(), "https://example.com")

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Errorf("Expected /, got %s", r.URL.Path)
		}
		w.Write([]byte(`{"status": "ok"}`))
	}))
	defer server.Close()

	c := New(server.URL)
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestClient_Ping_Down(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := New(server.URL)
	if err := c.Ping(context.Background()); err == nil {
		t.Error("Ping() expected error for non-200 response")
	}
}
