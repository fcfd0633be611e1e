// Package web hosts the generated status page over HTTP.
//
// The server uses the chi router with the usual middleware stack (request
// IDs, real client IPs, request logging, panic recovery and timeouts). The
// page itself is produced by a PageSource on every request so a refreshed
// CSV shows up without a restart.

package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/cabewaldrop/statuspage/internal/view"
)

// PageSource writes the current status page.
type PageSource func(w io.Writer) error

// ShutdownTimeout bounds how long in-flight requests may take once the
// server is asked to stop.
const ShutdownTimeout = 5 * time.Second

// Server serves the status page and its inspection API.
type Server struct {
	router *chi.Mux
	addr   string
	page   PageSource
	opts   view.Options
	log    logr.Logger
}

// NewServer creates a server listening on addr. opts configures the
// headless view used by the /api/view endpoint.
func NewServer(addr string, page PageSource, opts view.Options, log logr.Logger) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(WithLogger(log))

	s := &Server{
		router: r,
		addr:   addr,
		page:   page,
		opts:   opts,
		log:    log,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/health", s.handleHealth)
	s.staticRoutes()

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Get("/view", s.handleView)
	})
}

// Router returns the chi router for testing purposes.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		s.log.Info("starting server", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		s.log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return err
	}
	s.log.Info("server stopped")
	return nil
}
