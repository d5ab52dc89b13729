package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiteErrorFormatting(t *testing.T) {
	t.Run("code and message", func(t *testing.T) {
		err := NewConfigError("config_parse", "invalid YAML document", nil)

		assert.Contains(t, err.Error(), "[config_parse]")
		assert.Contains(t, err.Error(), "invalid YAML document")
	})

	t.Run("cause is appended and unwrapped", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := NewSubmissionError("submit_post", "provider unreachable", cause)

		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, cause, errors.Unwrap(err))
	})

	t.Run("component and field context", func(t *testing.T) {
		err := NewValidationError("field_required", "value is required").
			WithComponent("rsvp").
			WithField("guest_name")

		assert.Contains(t, err.Error(), "component:rsvp")
		assert.Contains(t, err.Error(), "field:guest_name")
	})
}

func TestSiteErrorIs(t *testing.T) {
	err := NewNavigationError("nav_unknown", "unknown section", nil)
	target := NewNavigationError("nav_unknown", "different message", nil)

	assert.True(t, errors.Is(err, target))
	assert.False(t, errors.Is(err, NewNavigationError("nav_hook", "hook failed", nil)))
}

func TestIsType(t *testing.T) {
	storageErr := NewStorageError("storage_write", "disk full", nil)
	wrapped := fmt.Errorf("saving backup: %w", storageErr)

	assert.True(t, IsType(wrapped, ErrorTypeStorage))
	assert.False(t, IsType(wrapped, ErrorTypeConfig))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeStorage))
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, IsRecoverable(NewConfigError("config_fetch", "not found", nil)))
	assert.False(t, IsRecoverable(NewInternalError("internal", "bug", nil)))
	// Unknown errors never take the page down.
	assert.True(t, IsRecoverable(errors.New("mystery")))
}
