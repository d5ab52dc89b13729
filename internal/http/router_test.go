package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soireehq/soiree/internal/config"
)

// stubHandlers records which handler served each request.
type stubHandlers struct {
	served []string
}

func (s *stubHandlers) mark(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.served = append(s.served, name)
		w.WriteHeader(http.StatusOK)
	}
}

func (s *stubHandlers) HandleIndex(w http.ResponseWriter, r *http.Request) { s.mark("index")(w, r) }
func (s *stubHandlers) HandleSection(w http.ResponseWriter, r *http.Request) {
	s.mark("section")(w, r)
}
func (s *stubHandlers) HandleRSVPSubmit(w http.ResponseWriter, r *http.Request) {
	s.mark("rsvp")(w, r)
}
func (s *stubHandlers) HandleContactSubmit(w http.ResponseWriter, r *http.Request) {
	s.mark("contact")(w, r)
}
func (s *stubHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) { s.mark("health")(w, r) }
func (s *stubHandlers) HandleStatic(w http.ResponseWriter, r *http.Request) { s.mark("static")(w, r) }
func (s *stubHandlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.mark("ws")(w, r)
}

type passthroughMiddleware struct{}

func (passthroughMiddleware) Apply(handler http.Handler) http.Handler { return handler }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, Host: "localhost", Environment: "test"},
	}
}

func TestRouterRoutes(t *testing.T) {
	handlers := &stubHandlers{}
	router := NewRouter(testConfig(), handlers, passthroughMiddleware{})

	ts := httptest.NewServer(router.Handler())
	defer ts.Close()

	paths := map[string]string{
		"/":                "index",
		"/section/rsvp":    "section",
		"/api/rsvp":        "rsvp",
		"/api/contact":     "contact",
		"/health":          "health",
		"/static/site.css": "static",
		"/ws":              "ws",
	}
	for path, want := range paths {
		handlers.served = nil
		resp, err := ts.Client().Get(ts.URL + path)
		require.NoError(t, err, path)
		resp.Body.Close()
		require.Len(t, handlers.served, 1, path)
		assert.Equal(t, want, handlers.served[0], path)
	}
}

func TestRouterAddr(t *testing.T) {
	router := NewRouter(testConfig(), &stubHandlers{}, passthroughMiddleware{})
	assert.Equal(t, "localhost:8080", router.Addr())
}

func TestRouterShutdownIsIdempotent(t *testing.T) {
	router := NewRouter(testConfig(), &stubHandlers{}, passthroughMiddleware{})

	require.NoError(t, router.Shutdown(context.Background()))
	require.NoError(t, router.Shutdown(context.Background()))
	assert.True(t, router.IsShutdown())

	// A shut-down router refuses to start.
	assert.Error(t, router.Start(context.Background()))
}

func TestRouterRequiresDependencies(t *testing.T) {
	assert.Panics(t, func() { NewRouter(nil, &stubHandlers{}, passthroughMiddleware{}) })
	assert.Panics(t, func() { NewRouter(testConfig(), nil, passthroughMiddleware{}) })
	assert.Panics(t, func() { NewRouter(testConfig(), &stubHandlers{}, nil) })
}
