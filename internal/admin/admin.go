// Package admin serves operational endpoints next to the data port.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/hashicorp/go-hclog"
)

// KeyCounter reports the number of stored keys.
type KeyCounter interface {
	Len() int
}

// Server is the HTTP admin listener.
type Server struct {
	router  *mux.Router
	http    *http.Server
	store   KeyCounter
	metrics http.Handler
	logger  hclog.Logger
}

// New creates an admin server for addr. metrics may be nil.
func New(addr string, store KeyCounter, metrics http.Handler, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	s := &Server{
		router:  mux.NewRouter(),
		store:   store,
		metrics: metrics,
		logger:  logger,
	}
	s.setupRoutes()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ServeHTTP makes Server a standard http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics).Methods(http.MethodGet)
	}
}

// Start blocks serving until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("admin listener starting", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"keys":   s.store.Len(),
	})
	if err != nil {
		s.logger.Warn("health response write failed", "error", err)
	}
}
