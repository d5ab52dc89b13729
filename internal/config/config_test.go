package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "development", cfg.Server.Environment)

	assert.True(t, cfg.Features.Schedule)
	assert.True(t, cfg.Features.Gallery)
	assert.True(t, cfg.Features.RSVP)
	assert.True(t, cfg.Features.Contact)

	assert.Equal(t, "formspree", cfg.Email.Provider)
	assert.Equal(t, ".soiree/storage", cfg.Storage.Dir)
	assert.Equal(t, 30, cfg.Storage.RetentionDays)
	assert.True(t, cfg.Development.HotReload, "hot reload on in development")
	assert.Equal(t, "event.yml", cfg.EventFile)
}

func TestLoadOverrides(t *testing.T) {
	resetViper(t)

	viper.Set("server.port", 3000)
	viper.Set("server.environment", "production")
	viper.Set("features.gallery", false)
	viper.Set("email.provider", "netlify")
	viper.Set("email.endpoint", "https://example.com/forms")
	viper.Set("event_file", "party.yml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.False(t, cfg.Features.Gallery)
	assert.True(t, cfg.Features.RSVP, "untouched flags stay enabled")
	assert.Equal(t, "netlify", cfg.Email.Provider)
	assert.Equal(t, "party.yml", cfg.EventFile)
	assert.False(t, cfg.Development.HotReload, "hot reload off in production")
}

func TestValidateServerConfig(t *testing.T) {
	t.Run("port out of range", func(t *testing.T) {
		err := validateServerConfig(&ServerConfig{Port: 70000, Host: "localhost"})
		assert.Error(t, err)
	})

	t.Run("dangerous host characters", func(t *testing.T) {
		err := validateServerConfig(&ServerConfig{Port: 8080, Host: "localhost;rm -rf"})
		assert.Error(t, err)
	})

	t.Run("bad environment", func(t *testing.T) {
		err := validateServerConfig(&ServerConfig{Port: 8080, Host: "localhost", Environment: "staging"})
		assert.Error(t, err)
	})

	t.Run("valid", func(t *testing.T) {
		err := validateServerConfig(&ServerConfig{Port: 8080, Host: "0.0.0.0", Environment: "production"})
		assert.NoError(t, err)
	})
}

func TestValidateEmailConfig(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		err := validateEmailConfig(&EmailConfig{Provider: "pigeon"})
		assert.Error(t, err)
	})

	t.Run("non-http endpoint", func(t *testing.T) {
		err := validateEmailConfig(&EmailConfig{Provider: "formspree", Endpoint: "ftp://example.com"})
		assert.Error(t, err)
	})

	t.Run("valid", func(t *testing.T) {
		err := validateEmailConfig(&EmailConfig{Provider: "emailjs", Endpoint: "https://api.emailjs.com/api/v1.0/email/send"})
		assert.NoError(t, err)
	})
}

func TestValidateStorageConfig(t *testing.T) {
	t.Run("negative retention", func(t *testing.T) {
		err := validateStorageConfig(&StorageConfig{Dir: ".soiree/storage", RetentionDays: -1})
		assert.Error(t, err)
	})

	t.Run("path traversal rejected", func(t *testing.T) {
		err := validateStorageConfig(&StorageConfig{Dir: "../outside", RetentionDays: 30})
		assert.Error(t, err)
	})
}

func TestValidatePath(t *testing.T) {
	assert.Error(t, validatePath(""))
	assert.Error(t, validatePath("../../etc/passwd"))
	assert.Error(t, validatePath("file;name.yml"))
	assert.NoError(t, validatePath("event.yml"))
	assert.NoError(t, validatePath(".soiree/storage"))
}
