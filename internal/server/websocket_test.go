package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHubShutdownReleasesPumps(t *testing.T) {
	hub := NewHub(testConfig(""), nil)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop on context cancellation")
	}

	// A read pump finishing after shutdown must not block handing its
	// connection back; nobody reads unregister anymore.
	released := make(chan struct{})
	go func() {
		hub.drop(nil)
		close(released)
	}()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("drop blocked after hub shutdown")
	}

	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubDropWhileRunning(t *testing.T) {
	hub := NewHub(testConfig(""), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	// Unknown connections unregister as a no-op.
	released := make(chan struct{})
	go func() {
		hub.drop(nil)
		close(released)
	}()
	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("drop blocked while hub was running")
	}
}
