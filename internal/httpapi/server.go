// Package httpapi exposes the latest solved schedule over HTTP: a
// read-only view for dashboards and integrations, never a mutation
// surface. Grounded on cmd/claude-monitor/server.go's embedded
// gorilla/mux server, scoped down from a daemon's full route table to
// two endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/anescall/callsched/internal/config"
	"github.com/anescall/callsched/internal/reporting"
)

// Server is the embedded read-only API server.
type Server struct {
	cfg    config.ServerConfig
	router *mux.Router
	server *http.Server

	mu   sync.RWMutex
	latest *reporting.SolvedDocument
}

// New builds a Server listening per cfg. The server starts with no
// solved document; PublishLatest makes one available to /schedule/latest.
func New(cfg config.ServerConfig) *Server {
	s := &Server{cfg: cfg}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/schedule/latest", s.handleLatest).Methods("GET")
}

// PublishLatest replaces the document served at /schedule/latest.
func (s *Server) PublishLatest(doc *reporting.SolvedDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = doc
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	doc := s.latest
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if doc == nil {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "no schedule has been solved yet"})
		return
	}
	if err := json.NewEncoder(w).Encode(doc); err != nil {
		log.Printf("httpapi: encode latest schedule: %v", err)
	}
}

// Start runs the server until the process exits or Shutdown is called. It
// blocks; callers typically invoke it in its own goroutine.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	log.Printf("httpapi: listening on %s", s.cfg.ListenAddr)
	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server within the configured shutdown
// timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
