// Package client talks to the remote phishing analysis service. It assigns
// no scores and interprets no results; it only moves requests and responses
// across the wire and normalizes failures into a small error taxonomy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
	"time"

	"github.com/phishtrail/phishtrail/internal/scan"
)

// Client is an HTTP client for the analysis service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent sets the User-Agent header on outgoing requests
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type urlScanRequest struct {
	URL string `json:"url"`
}

type emailScanRequest struct {
	Content string `json:"content"`
}

type bulkScanRequest struct {
	URLs []string `json:"urls"`
}

// ScanURL submits a single URL for analysis.
func (c *Client) ScanURL(ctx context.Context, rawURL string) (*scan.Result, error) {
	var result scan.Result
	if err := c.postJSON(ctx, "/scan/url", urlScanRequest{URL: rawURL}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ScanEmail submits email text for analysis.
func (c *Client) ScanEmail(ctx context.Context, content string) (*scan.Result, error) {
	var result scan.Result
	if err := c.postJSON(ctx, "/scan/email", emailScanRequest{Content: content}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ScanBulk submits up to ten URLs in one request. Per-URL failures come back
// inside the response, not as an error.
func (c *Client) ScanBulk(ctx context.Context, urls []string) (*scan.BulkResponse, error) {
	var resp scan.BulkResponse
	if err := c.postJSON(ctx, "/scan/bulk", bulkScanRequest{URLs: urls}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScanQR uploads a QR code image. The service decodes it, follows the
// redirect chain, and scans the destination.
func (c *Client) ScanQR(ctx context.Context, filename string, image []byte) (*scan.Result, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	// The service rejects parts without an image content type, so the
	// stock CreateFormFile (application/octet-stream) is not enough.
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if !strings.HasPrefix(contentType, "image/") {
		contentType = "image/png"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("encoding upload: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("encoding upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("encoding upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scan/qr", &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	c.setUserAgent(req)

	var result scan.Result
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ping checks if the service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	c.setUserAgent(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service returned status %d", resp.StatusCode)
	}
	return nil
}

// BaseURL returns the configured service address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// postJSON sends payload to path and decodes a 200 response into out.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.setUserAgent(req)

	return c.do(req, out)
}

// do executes req and decodes the response, mapping failures onto the
// TransportError/ServerError taxonomy.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return parseServerError(resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) setUserAgent(req *http.Request) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
