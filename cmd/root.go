// Package cmd provides the soiree command-line interface.
//
// Configuration sources, highest priority first:
//  1. Command-line flags (--port, --config, ...)
//  2. SOIREE_CONFIG_FILE environment variable
//  3. Individual environment variables (SOIREE_SERVER_PORT, ...)
//  4. The .soiree.yml feature-flag file in the working directory
//
// The feature-flag file is the developer's document; the invitation
// content itself lives in event.yml (see `soiree init`).
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soireehq/soiree/internal/logging"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "soiree",
	Short: "A config-driven event invitation site engine",
	Long: `Soiree serves an event invitation website driven entirely by two
YAML documents: event.yml holds the invitation content (hero, schedule,
gallery, RSVP and contact details) and .soiree.yml holds the developer
feature flags (which sections exist, email provider, storage retention).

Quick Start:
  soiree init                  Scaffold event.yml and .soiree.yml
  soiree serve                 Start the site server
  soiree validate              Check both documents for problems
  soiree export                Write a static copy of the site`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"feature-flag file (default .soiree.yml, or SOIREE_CONFIG_FILE)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info",
		"log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("SOIREE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".soiree")
	}

	viper.SetEnvPrefix("SOIREE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing feature-flag file is fine; the defaults apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from the log-level flag.
func newLogger() logging.Logger {
	level := logging.LevelInfo
	switch strings.ToLower(viper.GetString("log-level")) {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}

	cfg := logging.DefaultConfig()
	cfg.Level = level
	return logging.NewLogger(cfg)
}
