//go:build property
// +build property

package invite

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestMergeProperties checks invariants of the asymmetric deep merge.
func TestMergeProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Property: merging an empty user document is the identity.
	properties.Property("empty overlay is identity", prop.ForAll(
		func(key, value string) bool {
			dst := map[string]any{key: value}
			merged := Merge(dst, map[string]any{})
			return merged[key] == value
		},
		gen.Identifier(),
		gen.AnyString(),
	))

	// Property: a user scalar always wins over the default.
	properties.Property("overlay scalar wins", prop.ForAll(
		func(key, defaultVal, userVal string) bool {
			dst := map[string]any{key: defaultVal}
			src := map[string]any{key: userVal}
			return Merge(dst, src)[key] == userVal
		},
		gen.Identifier(),
		gen.AnyString(),
		gen.AnyString(),
	))

	// Property: keys present only in the default always survive.
	properties.Property("default-only keys survive", prop.ForAll(
		func(defaultKey, userKey, value string) bool {
			if defaultKey == userKey {
				return true // Overlap handled by other properties
			}
			dst := map[string]any{defaultKey: value}
			src := map[string]any{userKey: "other"}
			merged := Merge(dst, src)
			return merged[defaultKey] == value && merged[userKey] == "other"
		},
		gen.Identifier(),
		gen.Identifier(),
		gen.AnyString(),
	))

	// Property: merge is idempotent for the overlay.
	properties.Property("re-merging same overlay is stable", prop.ForAll(
		func(key, value string) bool {
			src := map[string]any{key: value}
			once := Merge(Defaults(), src)
			twice := Merge(once, src)
			return NewDocument(once).Get(key, "a") == NewDocument(twice).Get(key, "a")
		},
		gen.Identifier(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
