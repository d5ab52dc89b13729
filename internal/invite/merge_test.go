package invite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	t.Run("single override preserves every other default", func(t *testing.T) {
		user := map[string]any{
			"event": map[string]any{"title": "X"},
		}

		merged := Merge(Defaults(), user)
		doc := NewDocument(merged)

		assert.Equal(t, "X", doc.Get("event.title"))
		// Untouched siblings survive.
		assert.Equal(t, "Join us for a special celebration", doc.Get("event.tagline"))
		assert.Equal(t, "hello@example.com", doc.Get("organizer.email"))
		assert.True(t, doc.GetBool("rsvp.enabled", false))
	})

	t.Run("nested mappings merge recursively", func(t *testing.T) {
		dst := map[string]any{
			"a": map[string]any{"x": 1, "y": 2},
		}
		src := map[string]any{
			"a": map[string]any{"y": 3, "z": 4},
		}

		merged := Merge(dst, src)
		a := merged["a"].(map[string]any)
		assert.Equal(t, 1, a["x"])
		assert.Equal(t, 3, a["y"])
		assert.Equal(t, 4, a["z"])
	})

	t.Run("arrays are replaced wholesale", func(t *testing.T) {
		dst := map[string]any{
			"schedule": []any{
				map[string]any{"time": "10:00", "title": "Welcome"},
				map[string]any{"time": "11:00", "title": "Brunch"},
			},
		}
		src := map[string]any{
			"schedule": []any{
				map[string]any{"time": "18:00", "title": "Dinner"},
			},
		}

		merged := Merge(dst, src)
		schedule := merged["schedule"].([]any)
		require.Len(t, schedule, 1, "user list replaces the default list entirely")
		assert.Equal(t, "Dinner", schedule[0].(map[string]any)["title"])
	})

	t.Run("scalar replaces mapping and vice versa", func(t *testing.T) {
		dst := map[string]any{"v": map[string]any{"nested": true}}
		src := map[string]any{"v": "flat"}
		assert.Equal(t, "flat", Merge(dst, src)["v"])

		dst = map[string]any{"v": "flat"}
		src = map[string]any{"v": map[string]any{"nested": true}}
		assert.Equal(t, map[string]any{"nested": true}, Merge(dst, src)["v"])
	})

	t.Run("inputs are not mutated", func(t *testing.T) {
		dst := map[string]any{"a": map[string]any{"x": 1}}
		src := map[string]any{"a": map[string]any{"x": 2}}

		merged := Merge(dst, src)
		merged["a"].(map[string]any)["x"] = 99

		assert.Equal(t, 1, dst["a"].(map[string]any)["x"])
		assert.Equal(t, 2, src["a"].(map[string]any)["x"])
	})

	t.Run("non-string keys are copied, not aliased", func(t *testing.T) {
		inner := map[any]any{1: "one"}
		dst := map[string]any{"a": inner}

		merged := Merge(dst, map[string]any{})
		merged["a"].(map[any]any)[1] = "mutated"

		assert.Equal(t, "one", inner[1], "merged copy must not share the input map")
	})

	t.Run("legacy map key shape merges", func(t *testing.T) {
		// yaml.v2-era parsers produce map[any]any; the merge normalizes it.
		dst := map[string]any{"a": map[string]any{"x": 1}}
		src := map[string]any{"a": map[any]any{"y": 2}}

		merged := Merge(dst, src)
		a := merged["a"].(map[string]any)
		assert.Equal(t, 1, a["x"])
		assert.Equal(t, 2, a["y"])
	})
}
