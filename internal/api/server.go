// Package api serves the companion's local JSON surface. Handlers delegate
// to the orchestrator and the session store and translate domain errors into
// status codes; no scan semantics live here.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phishtrail/phishtrail/internal/history"
	"github.com/phishtrail/phishtrail/internal/orchestrator"
	"github.com/phishtrail/phishtrail/internal/store"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	orch   *orchestrator.Orchestrator
	store  *store.SessionStore
	index  *history.Index
	logger *slog.Logger
	router *chi.Mux
}

// NewServer wires the router and subscribes the history index to scan
// completions so GET /v1/history always reflects the latest saves.
func NewServer(orch *orchestrator.Orchestrator, sessions *store.SessionStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	index := history.NewIndex(sessions)
	orch.OnComplete(func(orchestrator.Outcome) { index.Refresh() })

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	s := &Server{
		orch:   orch,
		store:  sessions,
		index:  index,
		logger: logger,
		router: r,
	}

	s.routes()
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler { return s.router }

func requestLogger(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Info("request completed",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration", time.Since(start),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func (s *Server) routes() {
	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/scan/url", s.wrap(s.handleScanURL))
		r.Post("/scan/email", s.wrap(s.handleScanEmail))
		r.Post("/scan/qr", s.wrap(s.handleScanQR))
		r.Post("/scan/bulk", s.wrap(s.handleScanBulk))

		r.Get("/history", s.wrap(s.handleHistory))
		r.Delete("/history", s.wrap(s.handleClearHistory))
		r.Delete("/history/{id}", s.wrap(s.handleDeleteScan))

		r.Get("/stats", s.wrap(s.handleStats))
		r.Get("/analytics", s.wrap(s.handleAnalytics))
	})
}

// Start serves on addr until ctx is done, then drains in-flight requests.
// A graceful shutdown returns nil.
func (s *Server) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("server shutdown failed", "err", err)
		}
	}()

	s.logger.Info("starting server", "addr", addr)

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
