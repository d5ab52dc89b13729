// Package server composes the site engine: configuration loading,
// section navigation, page rendering, form handling, submission backup
// and delivery, and live reload for development.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/afero"

	"github.com/soireehq/soiree/internal/bus"
	"github.com/soireehq/soiree/internal/config"
	"github.com/soireehq/soiree/internal/email"
	httpx "github.com/soireehq/soiree/internal/http"
	"github.com/soireehq/soiree/internal/invite"
	"github.com/soireehq/soiree/internal/logging"
	"github.com/soireehq/soiree/internal/middleware"
	"github.com/soireehq/soiree/internal/render"
	"github.com/soireehq/soiree/internal/router"
	"github.com/soireehq/soiree/internal/storage"
	"github.com/soireehq/soiree/internal/watch"
)

// Server wires every component of the site engine together.
type Server struct {
	config   *config.Config
	logger   logging.Logger
	events   *bus.Bus
	loader   *invite.Loader
	engine   *render.Engine
	sections *router.Router
	store    *storage.Store
	sender   email.Sender
	hub      *Hub
	watcher  *watch.Watcher
	router   *httpx.Router
}

// New composes a server from configuration. The filesystem parameter
// exists for tests; pass nil for the operating system filesystem.
func New(cfg *config.Config, fs afero.Fs, logger logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	log := logger.WithComponent("server")

	events := bus.New(bus.WithLogger(logger))
	placeholders := invite.NewPlaceholders(cfg.Placeholders)
	loader := invite.NewLoader(fs, logger, invite.WithPlaceholders(placeholders))

	engine, err := render.New(cfg.Features, logger)
	if err != nil {
		return nil, err
	}

	sender, err := email.NewSender(cfg.Email, &http.Client{Timeout: 15 * time.Second}, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:   cfg,
		logger:   log,
		events:   events,
		loader:   loader,
		engine:   engine,
		sections: router.New(events, router.NewMemoryBinder(), logger),
		store:    storage.New(fs, cfg.Storage.Dir, logger),
		sender:   sender,
		hub:      NewHub(cfg, logger),
	}

	if cfg.Development.HotReload {
		watcher, err := watch.New(events, logger, watch.DefaultDebounce, cfg.EventFile)
		if err != nil {
			return nil, err
		}
		watcher.OnChange(func(change watch.Change) error {
			s.loader.Invalidate()
			s.hub.Broadcast("reload")
			return nil
		})
		s.watcher = watcher
	}

	// Failed navigation hooks surface in the log, not the response.
	_, _, err = events.Subscribe(router.EventNavigationError, func(ctx context.Context, data any) error {
		log.Warn(ctx, nil, "navigation error", "detail", data)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.router = httpx.NewRouter(cfg, s, middleware.NewChain(cfg, logger))
	return s, nil
}

// Events exposes the event bus for command-level wiring.
func (s *Server) Events() *bus.Bus {
	return s.events
}

// Handler returns the fully assembled HTTP handler for tests.
func (s *Server) Handler() http.Handler {
	return s.router.Handler()
}

// Addr returns the configured bind address.
func (s *Server) Addr() string {
	return s.router.Addr()
}

// Run starts the hub, the config watcher, and the HTTP server, blocking
// until the context is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)
	if s.watcher != nil {
		s.watcher.Start(ctx)
		defer s.watcher.Close()
	}

	s.logger.Info(ctx, "server starting",
		"addr", s.router.Addr(),
		"hot_reload", s.config.Development.HotReload,
	)
	return s.router.Start(ctx)
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.router.Shutdown(ctx)
}

// retention converts the configured retention days into a TTL for
// submission backups.
func (s *Server) retention() time.Duration {
	days := s.config.Storage.RetentionDays
	if days <= 0 {
		return storage.DefaultRetention
	}
	return time.Duration(days) * 24 * time.Hour
}
