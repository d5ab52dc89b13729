// Package config provides configuration management for the soiree site
// engine using Viper for flexible loading from files, environment
// variables, and command-line flags.
//
// This is the developer-facing feature-flag document (.soiree.yml): it
// controls which sections are structurally enabled, the email provider
// and endpoint, storage retention, default placeholder text, and
// development options like hot reload. It is distinct from the
// user-editable event document
// (event.yml), which holds the invitation content itself.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Features    FeaturesConfig    `yaml:"features"`
	Email       EmailConfig       `yaml:"email"`
	Storage     StorageConfig     `yaml:"storage"`
	Development DevelopmentConfig `yaml:"development"`
	EventFile   string            `yaml:"event_file"`

	// Placeholders overrides the default fallback text shown for missing
	// event content, keyed by dotted path or path keyword.
	Placeholders map[string]string `yaml:"placeholders"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	Environment    string   `yaml:"environment"`
}

// FeaturesConfig toggles whole sections on and off. These are structural
// switches for the developer; per-section navigation visibility in the
// event document is the end-user knob.
type FeaturesConfig struct {
	Schedule bool `yaml:"schedule"`
	Gallery  bool `yaml:"gallery"`
	RSVP     bool `yaml:"rsvp"`
	Contact  bool `yaml:"contact"`
}

type EmailConfig struct {
	Provider  string `yaml:"provider"` // formspree, netlify, emailjs
	Endpoint  string `yaml:"endpoint"`
	PublicKey string `yaml:"public_key"`
}

type StorageConfig struct {
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

type DevelopmentConfig struct {
	HotReload bool `yaml:"hot_reload"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Apply default values for ServerConfig if not set
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Environment == "" {
		config.Server.Environment = "development"
	}

	// Feature flags default to enabled; only an explicit false disables a
	// section (workaround for viper zero-value bool handling)
	if !viper.IsSet("features.schedule") {
		config.Features.Schedule = true
	}
	if !viper.IsSet("features.gallery") {
		config.Features.Gallery = true
	}
	if !viper.IsSet("features.rsvp") {
		config.Features.RSVP = true
	}
	if !viper.IsSet("features.contact") {
		config.Features.Contact = true
	}

	// Apply default values for EmailConfig if not set
	if config.Email.Provider == "" {
		config.Email.Provider = "formspree"
	}

	// Apply default values for StorageConfig if not set
	if config.Storage.Dir == "" {
		config.Storage.Dir = ".soiree/storage"
	}
	if config.Storage.RetentionDays == 0 {
		config.Storage.RetentionDays = 30
	}

	// Hot reload defaults to on in development
	if !viper.IsSet("development.hot_reload") {
		config.Development.HotReload = config.Server.Environment == "development"
	}

	if config.EventFile == "" {
		config.EventFile = "event.yml"
	}

	// Handle allowed origins set via viper (workaround for viper slice handling)
	if viper.IsSet("server.allowed_origins") && len(config.Server.AllowedOrigins) == 0 {
		origins := viper.GetStringSlice("server.allowed_origins")
		if len(origins) > 0 {
			config.Server.AllowedOrigins = origins
		}
	}

	// Validate configuration values
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := validateEmailConfig(&config.Email); err != nil {
		return fmt.Errorf("email config: %w", err)
	}

	if err := validateStorageConfig(&config.Storage); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}

	if err := validatePath(config.EventFile); err != nil {
		return fmt.Errorf("event_file: %w", err)
	}

	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Validate port range (allow 0 for system-assigned ports in testing)
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	// Validate host
	if config.Host != "" {
		// Basic validation - no dangerous characters
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	if config.Environment != "" &&
		config.Environment != "development" && config.Environment != "production" {
		return fmt.Errorf("environment must be development or production, got %q", config.Environment)
	}

	return nil
}

// validateEmailConfig validates email provider configuration values
func validateEmailConfig(config *EmailConfig) error {
	switch config.Provider {
	case "", "formspree", "netlify", "emailjs":
	default:
		return fmt.Errorf("unknown provider %q (expected formspree, netlify, or emailjs)", config.Provider)
	}

	if config.Endpoint != "" &&
		!strings.HasPrefix(config.Endpoint, "https://") &&
		!strings.HasPrefix(config.Endpoint, "http://") {
		return fmt.Errorf("endpoint must be an http(s) URL: %s", config.Endpoint)
	}

	return nil
}

// validateStorageConfig validates storage configuration values
func validateStorageConfig(config *StorageConfig) error {
	if config.RetentionDays < 0 {
		return fmt.Errorf("retention_days must not be negative: %d", config.RetentionDays)
	}

	if config.Dir != "" {
		if err := validatePath(config.Dir); err != nil {
			return fmt.Errorf("invalid dir %q: %w", config.Dir, err)
		}
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	// Clean the path
	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	// Reject dangerous characters
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
