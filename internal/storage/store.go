// Package storage provides the engine's local persistent key-value
// store: theme preference, RSVP/contact submission backups, and user
// preferences, all namespaced under one fixed prefix. Entries may carry
// an expiry; submission backups default to 30 days.
//
// The store is afero-backed so tests run against an in-memory
// filesystem. Failures degrade gracefully: callers log and move on, the
// page never depends on storage working.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	siteerrors "github.com/soireehq/soiree/internal/errors"
	"github.com/soireehq/soiree/internal/logging"
)

// Prefix namespaces every entry the engine writes.
const Prefix = "soiree"

// DefaultRetention is how long submission backups are kept.
const DefaultRetention = 30 * 24 * time.Hour

// entry is the on-disk envelope around a stored value.
type entry struct {
	Value     json.RawMessage `json:"value"`
	StoredAt  time.Time       `json:"stored_at"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// Store is a file-backed key-value store.
type Store struct {
	mu     sync.Mutex
	fs     afero.Fs
	dir    string
	logger logging.Logger
}

// New creates a store rooted at dir. The directory is created lazily on
// first write.
func New(fs afero.Fs, dir string, logger logging.Logger) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		fs:     fs,
		dir:    dir,
		logger: logger.WithComponent("storage"),
	}
}

// Set stores a value without expiry.
func (s *Store) Set(key string, value any) error {
	return s.write(key, value, nil)
}

// SetWithTTL stores a value that expires after ttl.
func (s *Store) SetWithTTL(key string, value any, ttl time.Duration) error {
	expires := time.Now().Add(ttl)
	return s.write(key, value, &expires)
}

// Get reads a value into dest and reports whether a live entry was
// found. An expired entry is removed and reported as absent, so callers
// fall back exactly as if it had never been stored.
func (s *Store) Get(key string, dest any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := afero.ReadFile(s.fs, s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, siteerrors.NewStorageError("storage_read",
			fmt.Sprintf("reading entry %q", key), err)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// Corrupt entry: remove it rather than failing every future read.
		_ = s.fs.Remove(s.path(key))
		return false, siteerrors.NewStorageError("storage_decode",
			fmt.Sprintf("decoding entry %q", key), err)
	}

	if e.ExpiresAt != nil && time.Now().After(*e.ExpiresAt) {
		_ = s.fs.Remove(s.path(key))
		s.logger.Debug(context.Background(), "expired entry removed", "key", key)
		return false, nil
	}

	if dest != nil {
		if err := json.Unmarshal(e.Value, dest); err != nil {
			return false, siteerrors.NewStorageError("storage_decode",
				fmt.Sprintf("decoding value %q", key), err)
		}
	}
	return true, nil
}

// Delete removes an entry. Missing entries are not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return siteerrors.NewStorageError("storage_delete",
			fmt.Sprintf("removing entry %q", key), err)
	}
	return nil
}

// Keys lists the stored keys under the namespace prefix.
func (s *Store) Keys() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, siteerrors.NewStorageError("storage_list", "listing entries", err)
	}

	var keys []string
	for _, info := range infos {
		name := info.Name()
		if info.IsDir() || !strings.HasPrefix(name, Prefix+".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(strings.TrimPrefix(name, Prefix+"."), ".json"))
	}
	return keys, nil
}

// Purge removes every expired entry and returns how many were dropped.
func (s *Store) Purge() (int, error) {
	keys, err := s.Keys()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, key := range keys {
		before := s.exists(key)
		if _, err := s.Get(key, nil); err != nil {
			continue
		}
		if before && !s.exists(key) {
			removed++
		}
	}
	return removed, nil
}

func (s *Store) exists(key string) bool {
	ok, err := afero.Exists(s.fs, s.path(key))
	return err == nil && ok
}

func (s *Store) write(key string, value any, expires *time.Time) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return siteerrors.NewStorageError("storage_encode",
			fmt.Sprintf("encoding value %q", key), err)
	}

	e := entry{
		Value:     raw,
		StoredAt:  time.Now(),
		ExpiresAt: expires,
	}
	blob, err := json.Marshal(e)
	if err != nil {
		return siteerrors.NewStorageError("storage_encode",
			fmt.Sprintf("encoding entry %q", key), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(s.dir, 0750); err != nil {
		return siteerrors.NewStorageError("storage_mkdir",
			fmt.Sprintf("creating storage dir %q", s.dir), err)
	}
	if err := afero.WriteFile(s.fs, s.path(key), blob, 0600); err != nil {
		return siteerrors.NewStorageError("storage_write",
			fmt.Sprintf("writing entry %q", key), err)
	}
	return nil
}

// path maps a key to its namespaced file. Key characters outside
// [a-zA-Z0-9._-] are replaced so keys can never escape the storage dir.
func (s *Store) path(key string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(s.dir, Prefix+"."+sanitized+".json")
}
