package invite

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a merged event configuration. It is created once by the
// loader and read-only afterwards; many components read it concurrently
// without coordination because nothing writes after the merge.
type Document struct {
	data         map[string]any
	placeholders Placeholders
}

// NewDocument wraps an already-merged mapping.
func NewDocument(data map[string]any) *Document {
	if data == nil {
		data = map[string]any{}
	}
	return &Document{data: data}
}

// DefaultDocument returns the built-in defaults as a Document. Used when
// no user configuration exists or loading it failed.
func DefaultDocument() *Document {
	return NewDocument(Defaults())
}

// WithPlaceholders attaches a placeholder resolver so developer overrides
// travel with the document into every Get fallback. Returns the document
// for chaining.
func (d *Document) WithPlaceholders(p Placeholders) *Document {
	d.placeholders = p
	return d
}

// Placeholders returns the document's placeholder resolver. The zero
// value resolves through the built-in rules.
func (d *Document) Placeholders() Placeholders {
	return d.placeholders
}

// Data returns the underlying mapping. Callers must treat it as
// read-only.
func (d *Document) Data() map[string]any {
	return d.data
}

// Lookup resolves a dotted path ("event.title", "gallery.images.0.src")
// and reports whether a non-nil leaf was found. Numeric segments index
// into lists.
func (d *Document) Lookup(path string) (any, bool) {
	var current any = d.data

	for _, segment := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[segment]
			if !ok {
				return nil, false
			}
			current = next
		case map[any]any:
			m, ok := asStringMap(node)
			if !ok {
				return nil, false
			}
			next, ok := m[segment]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}

	if current == nil {
		return nil, false
	}
	return current, true
}

// Get returns the string value at a dotted path. A missing key, explicit
// null, or empty string yields the caller's fallback when provided,
// otherwise a context-sensitive placeholder derived from the path. The
// result is never empty.
func (d *Document) Get(path string, fallback ...string) string {
	value, ok := d.Lookup(path)
	if ok {
		switch v := value.(type) {
		case string:
			if v != "" {
				return v
			}
		case bool, int, int64, uint64, float32, float64:
			return fmt.Sprint(v)
		}
	}

	if len(fallback) > 0 && fallback[0] != "" {
		return fallback[0]
	}
	return d.placeholders.For(path)
}

// GetBool returns the boolean at a dotted path, or the fallback when the
// leaf is absent or not a bool.
func (d *Document) GetBool(path string, fallback bool) bool {
	value, ok := d.Lookup(path)
	if !ok {
		return fallback
	}
	b, ok := value.(bool)
	if !ok {
		return fallback
	}
	return b
}

// Decode converts the merged mapping into the typed Invitation model used
// by the template engine. The YAML round trip keeps one set of field
// tags authoritative for both parsing and decoding.
func (d *Document) Decode() (*Invitation, error) {
	raw, err := yaml.Marshal(d.data)
	if err != nil {
		return nil, fmt.Errorf("encoding merged document: %w", err)
	}

	var inv Invitation
	if err := yaml.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("decoding merged document: %w", err)
	}
	return &inv, nil
}
