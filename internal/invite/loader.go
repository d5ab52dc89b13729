package invite

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"

	siteerrors "github.com/soireehq/soiree/internal/errors"
	"github.com/soireehq/soiree/internal/logging"
)

// Loader reads and parses the user event document, merging it over the
// built-in defaults. Concurrent callers of Load share one read through
// singleflight, and the merged result is cached so subsequent calls
// return without touching the filesystem.
type Loader struct {
	fs           afero.Fs
	logger       logging.Logger
	placeholders Placeholders
	flight       singleflight.Group

	mu     sync.RWMutex
	cached *Document
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPlaceholders attaches developer placeholder overrides to every
// document the loader produces.
func WithPlaceholders(p Placeholders) LoaderOption {
	return func(l *Loader) { l.placeholders = p }
}

// NewLoader creates a loader over the given filesystem. Tests pass an
// in-memory afero.Fs.
func NewLoader(fs afero.Fs, logger logging.Logger, opts ...LoaderOption) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	l := &Loader{
		fs:     fs,
		logger: logger.WithComponent("invite"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the merged event document for path. The first successful
// load is memoized; a failed load is not, so a fixed file is picked up on
// the next call.
func (l *Loader) Load(ctx context.Context, path string) (*Document, error) {
	l.mu.RLock()
	cached := l.cached
	l.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	result, err, shared := l.flight.Do(path, func() (any, error) {
		return l.loadOnce(ctx, path)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l.logger.Debug(ctx, "concurrent load shared one read", "path", path)
	}

	doc := result.(*Document)

	l.mu.Lock()
	l.cached = doc
	l.mu.Unlock()

	return doc, nil
}

// loadOnce performs the actual read+parse+merge.
func (l *Loader) loadOnce(ctx context.Context, path string) (*Document, error) {
	raw, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, siteerrors.NewConfigError("config_read",
			fmt.Sprintf("reading event document %q", path), err)
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, siteerrors.NewConfigError("config_parse",
			fmt.Sprintf("parsing event document %q", path), err)
	}
	if parsed == nil {
		return nil, siteerrors.NewConfigError("config_shape",
			fmt.Sprintf("event document %q is not a mapping", path), nil)
	}

	merged := Merge(Defaults(), parsed)
	l.logger.Info(ctx, "event document loaded", "path", path, "keys", len(parsed))

	return NewDocument(merged).WithPlaceholders(l.placeholders), nil
}

// Fallback returns the built-in defaults carrying the loader's
// placeholder overrides. Used when the event document cannot be loaded.
func (l *Loader) Fallback() *Document {
	return DefaultDocument().WithPlaceholders(l.placeholders)
}

// Cached returns the memoized document, if any.
func (l *Loader) Cached() (*Document, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cached, l.cached != nil
}

// Invalidate drops the memoized document so the next Load re-reads the
// file. Called by the config watcher on change.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.cached = nil
	l.mu.Unlock()
}
