package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/evanofslack/domain-sync/internal/domain"
	"github.com/evanofslack/domain-sync/internal/metrics"
)

// Store is the read-only slice of storage the HTTP surface serves from.
type Store interface {
	AllDomains(ctx context.Context) ([]domain.Record, error)
	Notifications(ctx context.Context) ([]domain.Notification, error)
}

type Server struct {
	store Store
	http  *http.Server
}

func New(addr string, store Store, metrics *metrics.Metrics) *Server {
	s := &Server{store: store}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/api/domains", s.handleDomains)
	r.Get("/api/notifications", s.handleNotifications)
	r.Get("/domains.ics", s.handleCalendar)
	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", metrics.Handler())

	s.http = &http.Server{Addr: addr, Handler: r}
	return s
}

// Handler exposes the route tree, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) Start() error {
	slog.Info("Starting HTTP server", "address", s.http.Addr)
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	domains, err := s.store.AllDomains(r.Context())
	if err != nil {
		slog.Error("Failed to load domains", "error", err)
		http.Error(w, "failed to load domains", http.StatusInternalServerError)
		return
	}
	writeJSON(w, domains)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := s.store.Notifications(r.Context())
	if err != nil {
		slog.Error("Failed to load notifications", "error", err)
		http.Error(w, "failed to load notifications", http.StatusInternalServerError)
		return
	}
	writeJSON(w, notifications)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	domains, err := s.store.AllDomains(r.Context())
	if err != nil {
		slog.Error("Failed to load domains", "error", err)
		http.Error(w, "failed to load domains", http.StatusInternalServerError)
		return
	}

	cal := buildCalendar(domains)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="domains.ics"`)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write([]byte(cal.Serialize()))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
