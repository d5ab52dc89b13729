package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soireehq/soiree/internal/bus"
)

func waitForChange(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case change := <-ch:
		return change
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change notification")
		return Change{}
	}
}

func TestWatcherNotifiesOnTrackedFile(t *testing.T) {
	dir := t.TempDir()
	eventFile := filepath.Join(dir, "event.yml")
	require.NoError(t, os.WriteFile(eventFile, []byte("event:\n  title: One\n"), 0o644))

	watcher, err := New(nil, nil, 50*time.Millisecond, eventFile)
	require.NoError(t, err)
	defer watcher.Close()

	changes := make(chan Change, 1)
	watcher.OnChange(func(change Change) error {
		select {
		case changes <- change:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher.Start(ctx)

	require.NoError(t, os.WriteFile(eventFile, []byte("event:\n  title: Two\n"), 0o644))

	change := waitForChange(t, changes)
	require.Len(t, change.Paths, 1)
	assert.Equal(t, eventFile, change.Paths[0])
	assert.False(t, change.Timestamp.IsZero())
}

func TestWatcherIgnoresUntrackedFiles(t *testing.T) {
	dir := t.TempDir()
	eventFile := filepath.Join(dir, "event.yml")

	watcher, err := New(nil, nil, 50*time.Millisecond, eventFile)
	require.NoError(t, err)
	defer watcher.Close()

	changes := make(chan Change, 1)
	watcher.OnChange(func(change Change) error {
		changes <- change
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher.Start(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	select {
	case change := <-changes:
		t.Fatalf("unexpected notification for untracked file: %v", change.Paths)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherDebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	eventFile := filepath.Join(dir, "event.yml")

	watcher, err := New(nil, nil, 150*time.Millisecond, eventFile)
	require.NoError(t, err)
	defer watcher.Close()

	changes := make(chan Change, 10)
	watcher.OnChange(func(change Change) error {
		changes <- change
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher.Start(ctx)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(eventFile, []byte("event:\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	waitForChange(t, changes)

	// The burst collapses into a single notification.
	select {
	case change := <-changes:
		t.Fatalf("expected one debounced notification, got a second: %v", change.Paths)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherPublishesBusEvent(t *testing.T) {
	dir := t.TempDir()
	eventFile := filepath.Join(dir, "event.yml")

	events := bus.New()
	watcher, err := New(events, nil, 50*time.Millisecond, eventFile)
	require.NoError(t, err)
	defer watcher.Close()

	received := events.SubscribeOnce(EventConfigChanged)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher.Start(ctx)

	require.NoError(t, os.WriteFile(eventFile, []byte("event:\n"), 0o644))

	select {
	case payload := <-received:
		change, ok := payload.(Change)
		require.True(t, ok)
		assert.Contains(t, change.Paths, eventFile)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for bus event")
	}
}

func TestWatcherRequiresPaths(t *testing.T) {
	_, err := New(nil, nil, 0)
	assert.Error(t, err)
}

func TestWatcherCloseIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	watcher, err := New(nil, nil, 0, filepath.Join(dir, "event.yml"))
	require.NoError(t, err)

	assert.NoError(t, watcher.Close())
	assert.NoError(t, watcher.Close())
}
