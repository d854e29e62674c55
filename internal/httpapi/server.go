// Package httpapi exposes the small ops surface: a liveness probe and a
// stats endpoint. It is not a product API.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"encoding/json/v2"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/shelftalk/shelftalk-bot/internal/store"
)

// Server is the ops HTTP server.
type Server struct {
	store  store.Store
	logger *slog.Logger
	srv    *http.Server
}

// New creates the server listening on the given address.
func New(st store.Store, logger *slog.Logger, addr string) *Server {
	s := &Server{store: st, logger: logger}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", s.handleStats)
	})
	return r
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("ops http server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.Counts(r.Context())
	if err != nil {
		s.logger.Error("stats query failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": map[string]string{"code": "STORAGE", "message": "stats unavailable"},
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"data": counts})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.MarshalWrite(w, body); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}
