package router

import "sync"

// MemoryBinder is the default ViewBinder: an in-memory visibility map.
// The HTTP layer reads it to decide which region gets the visible/hidden
// and aria-hidden attributes when rendering; tests read it to assert the
// exactly-one-visible invariant.
type MemoryBinder struct {
	mu      sync.RWMutex
	visible map[string]bool
}

// NewMemoryBinder creates a binder with every section hidden.
func NewMemoryBinder() *MemoryBinder {
	return &MemoryBinder{visible: make(map[string]bool, len(Sections))}
}

// SetActive marks the named section visible and all others hidden.
func (b *MemoryBinder) SetActive(section string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, name := range Sections {
		b.visible[name] = name == section
	}
}

// Visible reports whether a section is currently visible.
func (b *MemoryBinder) Visible(section string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.visible[section]
}

// VisibleCount returns how many sections are visible. The router keeps
// this at exactly one.
func (b *MemoryBinder) VisibleCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	count := 0
	for _, v := range b.visible {
		if v {
			count++
		}
	}
	return count
}
