// Package api serves the HTTP API used to inspect and trigger commits.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/helixml/autocommit"
	apimiddleware "github.com/helixml/autocommit/infrastructure/api/middleware"
	v1 "github.com/helixml/autocommit/infrastructure/api/v1"
)

// APIServer provides an HTTP API backed by an autocommit Client.
type APIServer struct {
	client *autocommit.Client
	logger *slog.Logger

	mu       sync.Mutex
	server   *Server
	shutdown bool
}

// NewAPIServer creates a new APIServer wired to the given Client.
func NewAPIServer(client *autocommit.Client) *APIServer {
	return &APIServer{
		client: client,
		logger: client.Logger(),
	}
}

// mountRoutes wires up the health check and all v1 API routes.
func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Mount("/status", v1.NewStatusRouter(c).Routes())
		r.Mount("/commits", v1.NewCommitsRouter(c, c, a.logger).Routes())
	})
}

// ListenAndServe starts the HTTP server on the given address and blocks
// until it is shut down. It returns immediately after Shutdown.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.mountRoutes(server.Router())

	a.mu.Lock()
	if a.shutdown {
		a.mu.Unlock()
		return nil
	}
	a.server = &server
	a.mu.Unlock()

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	a.shutdown = true
	server := a.server
	a.mu.Unlock()

	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

// Handler returns the routes as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	server := NewServer("", a.logger)
	a.mountRoutes(server.Router())
	return server.Router()
}
