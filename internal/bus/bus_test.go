package bus

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soireehq/soiree/internal/logging"
)

func TestSubscribe(t *testing.T) {
	t.Run("nil handler is rejected", func(t *testing.T) {
		b := New()
		_, _, err := b.Subscribe("nav.change", nil)
		assert.ErrorIs(t, err, ErrNilHandler)
	})

	t.Run("unsubscribe function removes exactly this registration", func(t *testing.T) {
		b := New()

		_, unsub1, err := b.Subscribe("nav.change", func(context.Context, any) error { return nil })
		require.NoError(t, err)
		_, _, err = b.Subscribe("nav.change", func(context.Context, any) error { return nil })
		require.NoError(t, err)

		require.Equal(t, 2, b.ListenerCount("nav.change"))
		unsub1()
		assert.Equal(t, 1, b.ListenerCount("nav.change"))
	})

	t.Run("listener ceiling warns but does not fail", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := logging.NewLogger(&logging.LoggerConfig{
			Level:  logging.LevelWarn,
			Format: "json",
			Output: buf,
		})
		b := New(WithMaxListeners(2), WithLogger(logger))

		for i := 0; i < 3; i++ {
			_, _, err := b.Subscribe("leaky", func(context.Context, any) error { return nil })
			require.NoError(t, err)
		}

		assert.Equal(t, 3, b.ListenerCount("leaky"))
		assert.Contains(t, buf.String(), "listener ceiling exceeded")
	})
}

func TestUnsubscribe(t *testing.T) {
	b := New()

	id, _, err := b.Subscribe("theme.change", func(context.Context, any) error { return nil })
	require.NoError(t, err)

	assert.True(t, b.Unsubscribe("theme.change", id))
	assert.False(t, b.Unsubscribe("theme.change", id), "second removal is a no-op")
	assert.False(t, b.Unsubscribe("never.registered", "missing"))
}

func TestPublishSync(t *testing.T) {
	t.Run("no listeners is a no-op", func(t *testing.T) {
		b := New()
		results := b.Publish(context.Background(), "silence", nil)
		assert.Empty(t, results)
	})

	t.Run("registration order is delivery order", func(t *testing.T) {
		b := New()
		var order []int
		for i := 0; i < 5; i++ {
			i := i
			_, _, err := b.Subscribe("ordered", func(context.Context, any) error {
				order = append(order, i)
				return nil
			})
			require.NoError(t, err)
		}

		b.Publish(context.Background(), "ordered", nil)
		assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	})

	t.Run("one panicking listener does not block the rest", func(t *testing.T) {
		b := New()
		invoked := 0
		_, _, err := b.Subscribe("risky", func(context.Context, any) error {
			invoked++
			return nil
		})
		require.NoError(t, err)
		_, _, err = b.Subscribe("risky", func(context.Context, any) error {
			panic("listener bug")
		})
		require.NoError(t, err)
		_, _, err = b.Subscribe("risky", func(context.Context, any) error {
			invoked++
			return nil
		})
		require.NoError(t, err)

		results := b.Publish(context.Background(), "risky", nil)

		require.Len(t, results, 3, "one result per listener")
		assert.Equal(t, 2, invoked)
		assert.True(t, results[0].Success)
		assert.True(t, results[1].Panicked)
		assert.False(t, results[1].Success)
		assert.True(t, results[2].Success)
	})

	t.Run("listener error is recorded not propagated", func(t *testing.T) {
		b := New()
		wantErr := errors.New("handler failed")
		_, _, err := b.Subscribe("errs", func(context.Context, any) error { return wantErr })
		require.NoError(t, err)

		results := b.Publish(context.Background(), "errs", nil)
		require.Len(t, results, 1)
		assert.ErrorIs(t, results[0].Err, wantErr)
	})

	t.Run("payload reaches listeners", func(t *testing.T) {
		b := New()
		var got any
		_, _, err := b.Subscribe("payload", func(_ context.Context, data any) error {
			got = data
			return nil
		})
		require.NoError(t, err)

		b.Publish(context.Background(), "payload", "hello")
		assert.Equal(t, "hello", got)
	})
}

func TestSubscribeOnce(t *testing.T) {
	b := New()
	ch := b.SubscribeOnce("config.loaded")

	b.Publish(context.Background(), "config.loaded", 42)

	select {
	case v := <-ch:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("one-shot listener never delivered")
	}

	// Auto-unsubscribed: subsequent publishes reach nobody.
	assert.Equal(t, 0, b.ListenerCount("config.loaded"))
}

func TestWaitFor(t *testing.T) {
	t.Run("resolves on first publish", func(t *testing.T) {
		b := New()

		var wg sync.WaitGroup
		wg.Add(1)
		var got any
		go func() {
			defer wg.Done()
			v, err := b.WaitFor(context.Background(), "ready")
			assert.NoError(t, err)
			got = v
		}()

		// Publish until the waiter is registered.
		for {
			if len(b.Publish(context.Background(), "ready", "ok")) > 0 {
				break
			}
			time.Sleep(time.Millisecond)
		}

		wg.Wait()
		assert.Equal(t, "ok", got)
	})

	t.Run("cancellation cleans up the listener", func(t *testing.T) {
		b := New()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := b.WaitFor(ctx, "never")
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, b.ListenerCount("never"))
	})
}

func TestPublishAsync(t *testing.T) {
	t.Run("no listeners resolves immediately", func(t *testing.T) {
		b := New()
		assert.NoError(t, b.PublishAsync(context.Background(), "silence", nil))
	})

	t.Run("listeners run and errors aggregate", func(t *testing.T) {
		b := New()
		var mu sync.Mutex
		invoked := 0

		_, _, err := b.Subscribe("async", func(context.Context, any) error {
			mu.Lock()
			invoked++
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)

		wantErr := errors.New("async failure")
		_, _, err = b.Subscribe("async", func(context.Context, any) error { return wantErr })
		require.NoError(t, err)

		err = b.PublishAsync(context.Background(), "async", nil)
		assert.ErrorContains(t, err, "async failure")

		mu.Lock()
		assert.Equal(t, 1, invoked)
		mu.Unlock()
	})

	t.Run("slow listener times out", func(t *testing.T) {
		b := New(WithAsyncTimeout(20 * time.Millisecond))

		_, _, err := b.Subscribe("slow", func(ctx context.Context, _ any) error {
			select {
			case <-time.After(time.Second):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		require.NoError(t, err)

		err = b.PublishAsync(context.Background(), "slow", nil)
		assert.ErrorContains(t, err, "timed out")
	})
}
