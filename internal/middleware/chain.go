// Package middleware composes the HTTP middleware stack. Middlewares
// execute in reverse order of addition: the last added wraps closest to
// the handler, so requests flow outer to inner.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/soireehq/soiree/internal/config"
	"github.com/soireehq/soiree/internal/logging"
)

// Middleware wraps an HTTP handler.
type Middleware func(http.Handler) http.Handler

// Chain is the ordered middleware stack applied around the router mux.
type Chain struct {
	config      *config.Config
	logger      logging.Logger
	middlewares []Middleware
}

// NewChain builds the default stack: request logging (outermost), panic
// recovery, CORS, then security headers.
func NewChain(cfg *config.Config, logger logging.Logger) *Chain {
	if cfg == nil {
		panic("middleware: config cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	chain := &Chain{
		config: cfg,
		logger: logger.WithComponent("http"),
	}
	chain.Add(chain.loggingMiddleware())
	chain.Add(chain.recoveryMiddleware())
	chain.Add(chain.corsMiddleware())
	chain.Add(securityHeaders())
	return chain
}

// Add appends a middleware to the chain.
func (c *Chain) Add(mw Middleware) {
	c.middlewares = append(c.middlewares, mw)
}

// Apply wraps the handler with the full stack.
func (c *Chain) Apply(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		wrapped = c.middlewares[i](wrapped)
	}
	return wrapped
}

// statusRecorder captures the response code for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (c *Chain) loggingMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			c.logger.Info(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration", time.Since(start),
			)
		})
	}
}

func (c *Chain) recoveryMiddleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					c.logger.Error(r.Context(), fmt.Errorf("panic: %v", rec),
						"handler panicked", "path", r.URL.Path)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func (c *Chain) corsMiddleware() Middleware {
	allowed := make(map[string]struct{}, len(c.config.Server.AllowedOrigins))
	for _, origin := range c.config.Server.AllowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" {
				if _, ok := allowed[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				}
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func securityHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			next.ServeHTTP(w, r)
		})
	}
}
