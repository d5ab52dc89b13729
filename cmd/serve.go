package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/soireehq/soiree/internal/config"
	"github.com/soireehq/soiree/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the invitation site server",
	Long: `Start the invitation site server.

In development (the default environment) the server watches event.yml
and pushes a live reload to connected browsers when it changes.

Examples:
  soiree serve                       # Serve on localhost:8080
  soiree serve --port 3000           # Custom port
  soiree serve --event my-party.yml  # Custom event document`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().String("event", "", "Event document path (default event.yml)")
	serveCmd.Flags().Bool("hot-reload", true, "Reload browsers on config changes")

	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("event_file", serveCmd.Flags().Lookup("event"))
	_ = viper.BindPFlag("development.hot_reload", serveCmd.Flags().Lookup("hot-reload"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	srv, err := server.New(cfg, nil, newLogger())
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "Shutting down...")
		cancel()
	}()

	fmt.Printf("Serving your invitation at http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
