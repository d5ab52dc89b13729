// Package bus provides the in-process publish/subscribe event bus that
// decouples the site engine's components. Delivery is fire-and-forget
// with isolated failure domains: a panicking or erroring listener never
// blocks the others.
//
// Two delivery modes exist because consumers have different needs:
// synchronous publish preserves registration order (navigation relies on
// this), asynchronous publish runs listeners concurrently under a
// per-listener timeout (side effects that tolerate reordering).
package bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/soireehq/soiree/internal/logging"
)

// DefaultMaxListeners is the soft ceiling on listeners per event type.
// Exceeding it logs a warning but does not fail: it is a leak guard, not
// a hard limit.
const DefaultMaxListeners = 100

// DefaultAsyncTimeout bounds each listener during asynchronous publish.
const DefaultAsyncTimeout = 5 * time.Second

// ErrNilHandler is returned when subscribing with a nil handler.
var ErrNilHandler = errors.New("bus: handler must not be nil")

// Handler processes a published event payload.
type Handler func(ctx context.Context, data any) error

// Result records the outcome of one listener invocation during a
// synchronous publish.
type Result struct {
	ListenerID string
	Success    bool
	Panicked   bool
	Err        error
	Duration   time.Duration
}

type listener struct {
	id   string
	fn   Handler
	once bool
}

// Bus is an in-memory event bus. The zero value is not usable; construct
// with New.
type Bus struct {
	mu           sync.RWMutex
	listeners    map[string][]*listener
	maxListeners int
	asyncTimeout time.Duration
	logger       logging.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithMaxListeners overrides the per-event listener ceiling.
func WithMaxListeners(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.maxListeners = n
		}
	}
}

// WithAsyncTimeout overrides the per-listener timeout for PublishAsync.
func WithAsyncTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.asyncTimeout = d
		}
	}
}

// WithLogger sets the logger used for listener failures and leak warnings.
func WithLogger(logger logging.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger.WithComponent("bus")
		}
	}
}

// New creates an event bus with the given options.
func New(opts ...Option) *Bus {
	b := &Bus{
		listeners:    make(map[string][]*listener),
		maxListeners: DefaultMaxListeners,
		asyncTimeout: DefaultAsyncTimeout,
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a handler for an event type. It returns the
// subscription id and an unsubscribe function that removes exactly this
// registration. Subscribing a nil handler is an error.
func (b *Bus) Subscribe(eventType string, fn Handler) (string, func(), error) {
	if fn == nil {
		return "", nil, ErrNilHandler
	}

	l := &listener{id: uuid.NewString(), fn: fn}

	b.mu.Lock()
	b.listeners[eventType] = append(b.listeners[eventType], l)
	count := len(b.listeners[eventType])
	b.mu.Unlock()

	if count > b.maxListeners {
		b.logger.Warn(context.Background(), nil, "listener ceiling exceeded",
			"event_type", eventType,
			"count", count,
			"max", b.maxListeners,
		)
	}

	unsubscribe := func() { b.Unsubscribe(eventType, l.id) }
	return l.id, unsubscribe, nil
}

// SubscribeOnce registers a one-shot listener and returns a channel that
// receives the payload of the first publish for the event type. The
// listener is removed automatically after delivery.
func (b *Bus) SubscribeOnce(eventType string) <-chan any {
	ch := make(chan any, 1)
	var deliver sync.Once

	l := &listener{
		id:   uuid.NewString(),
		once: true,
		fn: func(_ context.Context, data any) error {
			deliver.Do(func() {
				ch <- data
				close(ch)
			})
			return nil
		},
	}

	b.mu.Lock()
	b.listeners[eventType] = append(b.listeners[eventType], l)
	b.mu.Unlock()

	return ch
}

// WaitFor blocks until the event type is published or the context is
// cancelled. On cancellation the one-shot listener is cleaned up.
func (b *Bus) WaitFor(ctx context.Context, eventType string) (any, error) {
	ch := make(chan any, 1)
	var deliver sync.Once

	l := &listener{
		id:   uuid.NewString(),
		once: true,
		fn: func(_ context.Context, data any) error {
			deliver.Do(func() { ch <- data })
			return nil
		},
	}

	b.mu.Lock()
	b.listeners[eventType] = append(b.listeners[eventType], l)
	b.mu.Unlock()

	select {
	case data := <-ch:
		return data, nil
	case <-ctx.Done():
		b.Unsubscribe(eventType, l.id)
		return nil, ctx.Err()
	}
}

// Unsubscribe removes a listener by id. It reports whether a listener was
// actually removed.
func (b *Bus) Unsubscribe(eventType, id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.listeners[eventType]
	for i, l := range current {
		if l.id == id {
			b.listeners[eventType] = append(current[:i:i], current[i+1:]...)
			if len(b.listeners[eventType]) == 0 {
				delete(b.listeners, eventType)
			}
			return true
		}
	}
	return false
}

// ListenerCount returns the number of listeners for an event type.
func (b *Bus) ListenerCount(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[eventType])
}

// Publish delivers an event synchronously to all current listeners in
// registration order. Listener errors and panics are recovered and
// logged, never propagated: the returned slice holds one Result per
// listener so callers can inspect outcomes. Publishing with no listeners
// returns an empty slice.
func (b *Bus) Publish(ctx context.Context, eventType string, data any) []Result {
	snapshot := b.snapshot(eventType)
	if len(snapshot) == 0 {
		return nil
	}

	results := make([]Result, 0, len(snapshot))
	for _, l := range snapshot {
		results = append(results, b.invoke(ctx, eventType, l, data))
		if l.once {
			b.Unsubscribe(eventType, l.id)
		}
	}
	return results
}

// PublishAsync delivers an event to all current listeners concurrently,
// each bounded by the bus async timeout. It returns an aggregate error
// when any listener failed or timed out. Publishing with no listeners
// returns nil immediately.
func (b *Bus) PublishAsync(ctx context.Context, eventType string, data any) error {
	snapshot := b.snapshot(eventType)
	if len(snapshot) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, len(snapshot))

	for i, l := range snapshot {
		wg.Add(1)
		go func(i int, l *listener) {
			defer wg.Done()

			timeoutCtx, cancel := context.WithTimeout(ctx, b.asyncTimeout)
			defer cancel()

			done := make(chan Result, 1)
			go func() {
				done <- b.invoke(timeoutCtx, eventType, l, data)
			}()

			select {
			case res := <-done:
				if !res.Success {
					errs[i] = fmt.Errorf("bus: listener %s for %q failed: %w", l.id, eventType, res.Err)
				}
			case <-timeoutCtx.Done():
				errs[i] = fmt.Errorf("bus: listener %s for %q timed out after %s", l.id, eventType, b.asyncTimeout)
			}

			if l.once {
				b.Unsubscribe(eventType, l.id)
			}
		}(i, l)
	}

	wg.Wait()
	return errors.Join(errs...)
}

// invoke runs a single listener, converting panics into failed results.
func (b *Bus) invoke(ctx context.Context, eventType string, l *listener, data any) (res Result) {
	res = Result{ListenerID: l.id}
	start := time.Now()

	defer func() {
		res.Duration = time.Since(start)
		if r := recover(); r != nil {
			res.Panicked = true
			res.Err = fmt.Errorf("listener panicked: %v", r)
			b.logger.Error(ctx, res.Err, "listener panic recovered",
				"event_type", eventType,
				"listener_id", l.id,
			)
		}
	}()

	if err := l.fn(ctx, data); err != nil {
		res.Err = err
		b.logger.Warn(ctx, err, "listener returned error",
			"event_type", eventType,
			"listener_id", l.id,
		)
		return res
	}

	res.Success = true
	return res
}

// snapshot copies the listener list so publishes see a stable view even
// when listeners subscribe/unsubscribe mid-delivery.
func (b *Bus) snapshot(eventType string) []*listener {
	b.mu.RLock()
	defer b.mu.RUnlock()

	current := b.listeners[eventType]
	if len(current) == 0 {
		return nil
	}
	out := make([]*listener, len(current))
	copy(out, current)
	return out
}
