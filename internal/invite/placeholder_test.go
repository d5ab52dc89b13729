package invite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceholderFor(t *testing.T) {
	t.Run("first matching keyword wins", func(t *testing.T) {
		// "deadline" sits above "date" so rsvp.deadline does not fall
		// through to the generic date text by accident.
		assert.Equal(t, "Date to be announced", PlaceholderFor("rsvp.deadline"))
		assert.Equal(t, "hello@example.com", PlaceholderFor("organizer.email"))
		assert.Equal(t, "/static/img/placeholder.svg", PlaceholderFor("gallery.images.3.src"))
	})

	t.Run("unknown path gets generic text", func(t *testing.T) {
		assert.Equal(t, "Coming soon", PlaceholderFor("some.unknown.leaf"))
	})

	t.Run("never empty", func(t *testing.T) {
		assert.NotEmpty(t, PlaceholderFor(""))
	})
}

func TestPlaceholderOverrides(t *testing.T) {
	t.Run("exact path beats keyword", func(t *testing.T) {
		p := NewPlaceholders(map[string]string{
			"event.date": "Save the date!",
			"date":       "TBD",
		})
		assert.Equal(t, "Save the date!", p.For("event.date"))
		assert.Equal(t, "TBD", p.For("rsvp.date"))
	})

	t.Run("keyword override beats built-in rule", func(t *testing.T) {
		p := NewPlaceholders(map[string]string{"email": "rsvp@party.example.com"})
		assert.Equal(t, "rsvp@party.example.com", p.For("organizer.email"))
		// Unrelated paths still use the built-in table.
		assert.Equal(t, "Date to be announced", p.For("event.date"))
	})

	t.Run("longer keyword wins over shorter", func(t *testing.T) {
		p := NewPlaceholders(map[string]string{
			"mail":  "write to us",
			"email": "rsvp@party.example.com",
		})
		assert.Equal(t, "rsvp@party.example.com", p.For("organizer.email"))
		assert.Equal(t, "write to us", p.For("contact.mailing"))
	})

	t.Run("empty override text is dropped", func(t *testing.T) {
		p := NewPlaceholders(map[string]string{"title": ""})
		assert.Equal(t, "Coming soon", p.For("event.title"))
	})

	t.Run("keys match case-insensitively", func(t *testing.T) {
		p := NewPlaceholders(map[string]string{"Theme": "garden"})
		assert.Equal(t, "garden", p.For("customization.theme"))
	})
}

func TestDocumentPlaceholders(t *testing.T) {
	doc := NewDocument(nil).WithPlaceholders(NewPlaceholders(map[string]string{
		"event.title": "Party details coming soon",
	}))

	assert.Equal(t, "Party details coming soon", doc.Get("event.title"))
	// Present values and caller fallbacks are unaffected.
	assert.Equal(t, "custom", doc.Get("event.title", "custom"))
	assert.Equal(t, "hello@example.com", doc.Get("organizer.email"))
}
