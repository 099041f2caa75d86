package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phishtrail/phishtrail/internal/analytics"
	"github.com/phishtrail/phishtrail/internal/client"
	"github.com/phishtrail/phishtrail/internal/orchestrator"
	"github.com/phishtrail/phishtrail/internal/scan"
	"github.com/phishtrail/phishtrail/internal/store"
)

const maxQRUploadBytes = 10 << 20

type handlerFunc func(http.ResponseWriter, *http.Request) error

type errorResponse struct {
	Error string `json:"error"`
}

// scanResponse is the payload for a completed scan. History is fetched
// separately; Saved carries the entries committed by this scan with their
// store-assigned ids.
type scanResponse struct {
	Result    *scan.Result       `json:"result,omitempty"`
	Bulk      *scan.BulkResponse `json:"bulk,omitempty"`
	Saved     []scan.Result      `json:"saved"`
	Persisted bool               `json:"persisted"`
}

// httpError is a handler failure with an explicit status and user-facing
// message.
type httpError struct {
	status  int
	message string
	err     error
}

func (e *httpError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return e.message
}

func (e *httpError) Unwrap() error { return e.err }

func badRequest(message string) *httpError {
	return &httpError{status: http.StatusBadRequest, message: message}
}

// scanError pairs a failed dispatch with its mode so the response carries the
// same message the CLI would show for it.
func scanError(mode orchestrator.Mode, err error) *httpError {
	if errors.Is(err, orchestrator.ErrScanInFlight) {
		return &httpError{status: http.StatusConflict, message: err.Error(), err: err}
	}
	return &httpError{
		status:  statusFor(err),
		message: orchestrator.UserMessage(mode, err),
		err:     err,
	}
}

func statusFor(err error) int {
	var ve *orchestrator.ValidationError
	var te *client.TransportError
	var se *client.ServerError
	switch {
	case errors.Is(err, orchestrator.ErrScanInFlight):
		return http.StatusConflict
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &te), errors.As(err, &se):
		return http.StatusBadGateway
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		he := &httpError{status: http.StatusInternalServerError, message: err.Error(), err: err}
		if !errors.As(err, &he) {
			he.status = statusFor(err)
		}

		s.logger.Warn("request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"status", he.status,
			"err", err,
		)
		s.writeJSON(w, he.status, errorResponse{Error: he.message})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encoding response", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"service":   "phishtrail",
		"persisted": s.store.Persisted(),
	})
}

func (s *Server) handleScanURL(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid request body")
	}

	out, err := s.orch.ScanURL(req.Context(), body.URL)
	if err != nil {
		return scanError(orchestrator.ModeURL, err)
	}
	s.writeJSON(w, http.StatusOK, outcomeResponse(out))
	return nil
}

func (s *Server) handleScanEmail(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid request body")
	}

	out, err := s.orch.ScanEmail(req.Context(), body.Content)
	if err != nil {
		return scanError(orchestrator.ModeEmail, err)
	}
	s.writeJSON(w, http.StatusOK, outcomeResponse(out))
	return nil
}

func (s *Server) handleScanQR(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxQRUploadBytes)

	file, header, err := req.FormFile("file")
	if err != nil {
		return badRequest("No QR image provided")
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		return badRequest("could not read uploaded file")
	}

	out, err := s.orch.ScanQR(req.Context(), header.Filename, image)
	if err != nil {
		return scanError(orchestrator.ModeQR, err)
	}
	s.writeJSON(w, http.StatusOK, outcomeResponse(out))
	return nil
}

func (s *Server) handleScanBulk(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		URLs []string `json:"urls"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest("invalid request body")
	}

	out, err := s.orch.ScanBulk(req.Context(), body.URLs)
	if err != nil {
		return scanError(orchestrator.ModeBulk, err)
	}
	s.writeJSON(w, http.StatusOK, outcomeResponse(out))
	return nil
}

func outcomeResponse(out *orchestrator.Outcome) scanResponse {
	return scanResponse{
		Result:    out.Result,
		Bulk:      out.Bulk,
		Saved:     out.Saved,
		Persisted: out.Persisted,
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, req *http.Request) error {
	s.writeJSON(w, http.StatusOK, s.index.Entries())
	return nil
}

func (s *Server) handleDeleteScan(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if _, ok := s.index.ByID(id); !ok {
		return &httpError{status: http.StatusNotFound, message: "scan not found", err: store.ErrNotFound}
	}

	remaining := s.index.Delete(req.Context(), id)
	s.writeJSON(w, http.StatusOK, remaining)
	return nil
}

func (s *Server) handleClearHistory(w http.ResponseWriter, req *http.Request) error {
	s.index.Clear(req.Context())
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (s *Server) handleStats(w http.ResponseWriter, req *http.Request) error {
	s.writeJSON(w, http.StatusOK, s.store.Stats())
	return nil
}

func (s *Server) handleAnalytics(w http.ResponseWriter, req *http.Request) error {
	s.writeJSON(w, http.StatusOK, analytics.Build(s.store.All()))
	return nil
}
