// Package http owns the HTTP server lifecycle and route registration.
// All handlers are injected through the Handlers interface so the site
// server and the tests can provide their own implementations.
package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/soireehq/soiree/internal/config"
)

// shutdownTimeout bounds connection draining on context cancellation.
const shutdownTimeout = 30 * time.Second

// Handlers defines every HTTP handler the router wires up.
type Handlers interface {
	HandleIndex(w http.ResponseWriter, r *http.Request)
	HandleSection(w http.ResponseWriter, r *http.Request)
	HandleRSVPSubmit(w http.ResponseWriter, r *http.Request)
	HandleContactSubmit(w http.ResponseWriter, r *http.Request)
	HandleHealth(w http.ResponseWriter, r *http.Request)
	HandleStatic(w http.ResponseWriter, r *http.Request)
	HandleWebSocket(w http.ResponseWriter, r *http.Request)
}

// MiddlewareProvider wraps the assembled mux with the middleware chain.
type MiddlewareProvider interface {
	Apply(handler http.Handler) http.Handler
}

// Router manages the HTTP server and its routes.
//
// Invariants:
//   - mux and handlers are never nil after construction
//   - httpServer is nil only after Shutdown
//   - isShutdown is protected by serverMutex
type Router struct {
	config     *config.Config
	httpServer *http.Server
	mux        *http.ServeMux
	handlers   Handlers

	serverMutex sync.RWMutex
	isShutdown  bool
}

// NewRouter builds a router with all routes registered and the
// middleware chain applied. Nil dependencies are a programming error.
func NewRouter(cfg *config.Config, handlers Handlers, middleware MiddlewareProvider) *Router {
	if cfg == nil {
		panic("http: config cannot be nil")
	}
	if handlers == nil {
		panic("http: handlers cannot be nil")
	}
	if middleware == nil {
		panic("http: middleware cannot be nil")
	}

	router := &Router{
		config:   cfg,
		mux:      http.NewServeMux(),
		handlers: handlers,
	}
	router.registerRoutes()

	router.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: middleware.Apply(router.mux),
	}
	return router
}

func (r *Router) registerRoutes() {
	r.mux.HandleFunc("/ws", r.handlers.HandleWebSocket)
	r.mux.HandleFunc("/health", r.handlers.HandleHealth)
	r.mux.HandleFunc("/static/", r.handlers.HandleStatic)
	r.mux.HandleFunc("/section/", r.handlers.HandleSection)
	r.mux.HandleFunc("/api/rsvp", r.handlers.HandleRSVPSubmit)
	r.mux.HandleFunc("/api/contact", r.handlers.HandleContactSubmit)
	r.mux.HandleFunc("/", r.handlers.HandleIndex)
}

// Handler exposes the fully assembled handler for httptest servers.
func (r *Router) Handler() http.Handler {
	return r.httpServer.Handler
}

// Start runs the server until the context is cancelled or the listener
// fails. Cancellation triggers a graceful shutdown with a bounded drain.
func (r *Router) Start(ctx context.Context) error {
	r.serverMutex.RLock()
	server := r.httpServer
	isShutdown := r.isShutdown
	r.serverMutex.RUnlock()

	if server == nil || isShutdown {
		return fmt.Errorf("http: router has been shut down")
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http: server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return r.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Shutdown drains connections and stops the server. Idempotent.
func (r *Router) Shutdown(ctx context.Context) error {
	r.serverMutex.Lock()
	defer r.serverMutex.Unlock()

	if r.isShutdown {
		return nil
	}
	r.isShutdown = true

	if r.httpServer != nil {
		if err := r.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("http: shutdown failed: %w", err)
		}
	}
	return nil
}

// Addr returns the bind address.
func (r *Router) Addr() string {
	r.serverMutex.RLock()
	defer r.serverMutex.RUnlock()
	if r.httpServer != nil {
		return r.httpServer.Addr
	}
	return fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
}

// IsShutdown reports whether Shutdown has completed.
func (r *Router) IsShutdown() bool {
	r.serverMutex.RLock()
	defer r.serverMutex.RUnlock()
	return r.isShutdown
}
