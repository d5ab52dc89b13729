// Package router implements the section router: it maps a navigable
// section name to a visible page region and keeps the navigation history
// in sync. The set of sections is fixed at startup and immutable for the
// engine's life.
//
// The router never touches markup directly. Visibility flips go through
// the ViewBinder interface so the state machine stays testable without
// any rendering environment.
package router

import (
	"context"
	"sync"
	"time"

	"github.com/soireehq/soiree/internal/bus"
	siteerrors "github.com/soireehq/soiree/internal/errors"
	"github.com/soireehq/soiree/internal/logging"
)

// The five fixed sections of the invitation page.
const (
	SectionHome    = "home"
	SectionDetails = "details"
	SectionGallery = "gallery"
	SectionRSVP    = "rsvp"
	SectionContact = "contact"
)

// Sections lists the fixed sections in display order.
var Sections = []string{SectionHome, SectionDetails, SectionGallery, SectionRSVP, SectionContact}

// Bus event types published during navigation.
const (
	EventNavigationStart    = "navigation.start"
	EventNavigationComplete = "navigation.complete"
	EventNavigationChange   = "navigation.change"
	EventNavigationError    = "navigation.error"
)

// DefaultHistoryCap bounds the navigation history ring buffer.
const DefaultHistoryCap = 50

// Hook runs before or after a section transition. The router awaits its
// completion before proceeding; this is the only place the engine
// deliberately serializes on a transition effect.
type Hook func(ctx context.Context) error

// Route describes one navigable section.
type Route struct {
	Name        string
	Target      string // page region identifier, e.g. "#section-home"
	Title       string
	BeforeEnter Hook
	AfterEnter  Hook
}

// Change is the payload of EventNavigationChange, consumed by feature
// components reacting to section entry.
type Change struct {
	From      string
	To        string
	Title     string
	Target    string
	Timestamp time.Time
}

// HistoryEntry records one completed navigation.
type HistoryEntry struct {
	From      string
	To        string
	Timestamp time.Time
}

// ViewBinder abstracts the page regions the router controls. SetActive
// must leave exactly the named section visible and every other section
// hidden.
type ViewBinder interface {
	SetActive(section string)
}

// Router is the section state machine.
type Router struct {
	mu         sync.Mutex
	routes     map[string]*Route
	current    string
	history    []HistoryEntry
	historyCap int

	events *bus.Bus
	binder ViewBinder
	logger logging.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithHistoryCap overrides the history ring buffer capacity.
func WithHistoryCap(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.historyCap = n
		}
	}
}

// WithHooks attaches transition hooks to a named section. Unknown names
// are ignored.
func WithHooks(section string, before, after Hook) Option {
	return func(r *Router) {
		if route, ok := r.routes[section]; ok {
			route.BeforeEnter = before
			route.AfterEnter = after
		}
	}
}

// New creates a router over the fixed section set, starting at home.
func New(events *bus.Bus, binder ViewBinder, logger logging.Logger, opts ...Option) *Router {
	if logger == nil {
		logger = logging.NewNop()
	}
	if binder == nil {
		binder = NewMemoryBinder()
	}
	if events == nil {
		events = bus.New()
	}

	r := &Router{
		routes:     make(map[string]*Route, len(Sections)),
		current:    SectionHome,
		historyCap: DefaultHistoryCap,
		events:     events,
		binder:     binder,
		logger:     logger.WithComponent("router"),
	}

	titles := map[string]string{
		SectionHome:    "Welcome",
		SectionDetails: "Event Details",
		SectionGallery: "Gallery",
		SectionRSVP:    "RSVP",
		SectionContact: "Contact",
	}
	for _, name := range Sections {
		r.routes[name] = &Route{
			Name:   name,
			Target: "#section-" + name,
			Title:  titles[name],
		}
	}

	for _, opt := range opts {
		opt(r)
	}

	binder.SetActive(r.current)
	return r
}

// Current returns the active section.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Route returns the route metadata for a section.
func (r *Router) Route(section string) (*Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.routes[section]
	return route, ok
}

// History returns a copy of the navigation history, oldest first.
func (r *Router) History() []HistoryEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]HistoryEntry, len(r.history))
	copy(out, r.history)
	return out
}

// Navigate transitions to a section. Unknown sections log and return
// false without changing state. Hook failures are caught, reported via
// EventNavigationError, and return false; no rollback of whatever the
// failing hook already did is attempted.
//
// updateHistory=false skips the history append, used for reload-driven
// navigation so back-navigation does not accumulate duplicate entries.
func (r *Router) Navigate(ctx context.Context, section string, updateHistory bool) bool {
	r.mu.Lock()
	route, known := r.routes[section]
	from := r.current
	r.mu.Unlock()

	if !known {
		r.logger.Warn(ctx, nil, "navigation to unknown section ignored", "section", section)
		return false
	}

	r.events.Publish(ctx, EventNavigationStart, Change{From: from, To: section, Timestamp: time.Now()})

	if err := r.runHook(ctx, route.BeforeEnter); err != nil {
		r.fail(ctx, from, section, "before-enter hook failed", err)
		return false
	}

	r.mu.Lock()
	r.current = section
	if updateHistory {
		r.history = append(r.history, HistoryEntry{From: from, To: section, Timestamp: time.Now()})
		if len(r.history) > r.historyCap {
			r.history = r.history[len(r.history)-r.historyCap:]
		}
	}
	r.mu.Unlock()

	// Exactly one section visible at a time.
	r.binder.SetActive(section)

	if err := r.runHook(ctx, route.AfterEnter); err != nil {
		r.fail(ctx, from, section, "after-enter hook failed", err)
		return false
	}

	now := time.Now()
	r.events.Publish(ctx, EventNavigationComplete, Change{From: from, To: section, Timestamp: now})
	r.events.Publish(ctx, EventNavigationChange, Change{
		From:      from,
		To:        section,
		Title:     route.Title,
		Target:    route.Target,
		Timestamp: now,
	})

	r.logger.Debug(ctx, "navigated", "from", from, "to", section)
	return true
}

// GoBack re-navigates to the section visited before the current one,
// without pushing new history so back/forward cannot oscillate. With
// fewer than two history entries it falls back to home, or no-ops when
// already there.
func (r *Router) GoBack(ctx context.Context) bool {
	r.mu.Lock()
	if len(r.history) < 2 {
		r.mu.Unlock()
		if r.Current() == SectionHome {
			return false
		}
		return r.Navigate(ctx, SectionHome, false)
	}

	// Drop the current entry and the one we are returning to; the
	// re-navigation re-establishes state without re-pushing.
	previous := r.history[len(r.history)-2].To
	r.history = r.history[:len(r.history)-2]
	r.mu.Unlock()

	return r.Navigate(ctx, previous, false)
}

func (r *Router) runHook(ctx context.Context, hook Hook) error {
	if hook == nil {
		return nil
	}
	return hook(ctx)
}

func (r *Router) fail(ctx context.Context, from, to, msg string, cause error) {
	navErr := siteerrors.NewNavigationError("nav_hook", msg, cause).
		WithContext("from", from).
		WithContext("to", to)
	r.logger.Error(ctx, navErr, "navigation failed", "from", from, "to", to)
	r.events.Publish(ctx, EventNavigationError, navErr)
}

// Valid reports whether a section name is part of the fixed set.
func Valid(section string) bool {
	for _, s := range Sections {
		if s == section {
			return true
		}
	}
	return false
}
