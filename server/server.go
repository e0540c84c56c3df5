package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server serves the latest reading of one sensor.
type Server struct {
	name   string
	latest *Latest
	log    *zap.SugaredLogger
	http   *http.Server
}

// New creates a server listening on port. latest is shared with the poll loop.
func New(name string, port int, latest *Latest, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	s := &Server{name: name, latest: latest, log: log}
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Routes returns the router with all endpoints.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/departure", s.handleDeparture)
	r.Get("/api/attributes", s.handleAttributes)
	return r
}

// Start listens in the background. Listener failures other than a shutdown are sent
// to errc.
func (s *Server) Start(errc chan<- error) {
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("server error: %w", err)
		}
	}()
	s.log.Infow("Server listening", "addr", s.http.Addr)
}

// Shutdown stops accepting requests and waits for active ones until ctx is done.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.log.Infow("Server shut down")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	r, ok := s.latest.Get()
	if !ok {
		writeJSON(w, http.StatusOK, healthResponse{Status: "starting"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "ok",
		Connection: r.Connection.String(),
		LastTick:   r.At.Format(time.RFC3339),
	})
}

func (s *Server) handleDeparture(w http.ResponseWriter, _ *http.Request) {
	r, ok := s.latest.Get()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no reading yet"})
		return
	}
	writeJSON(w, http.StatusOK, NewDepartureResponse(s.name, r))
}

func (s *Server) handleAttributes(w http.ResponseWriter, _ *http.Request) {
	r, ok := s.latest.Get()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "no reading yet"})
		return
	}
	writeJSON(w, http.StatusOK, r.Attributes())
}
