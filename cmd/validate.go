package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soireehq/soiree/internal/config"
	"github.com/soireehq/soiree/internal/invite"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the feature flags and event document for problems",
	Long: `Validate both configuration documents:

- .soiree.yml (or the file given with --config) must unmarshal and pass
  the server, email, and storage checks.
- event.yml must parse as YAML; missing fields are fine because every
  field has a placeholder, but structural problems are reported.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("event", "", "Event document path (overrides event_file)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	problems := 0

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "✗ feature flags: %v\n", err)
		problems++
	} else {
		fmt.Println("✓ feature flags OK")
	}

	eventFile := "event.yml"
	if cfg != nil {
		eventFile = cfg.EventFile
	}
	if override, _ := cmd.Flags().GetString("event"); override != "" {
		eventFile = override
	}

	loader := invite.NewLoader(nil, newLogger())
	doc, err := loader.Load(context.Background(), eventFile)
	switch {
	case err != nil && os.IsNotExist(unwrapAll(err)):
		fmt.Printf("– %s not found; the built-in sample content will be used\n", eventFile)
	case err != nil:
		fmt.Fprintf(os.Stderr, "✗ %s: %v\n", eventFile, err)
		problems++
	default:
		if _, decodeErr := doc.Decode(); decodeErr != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", eventFile, decodeErr)
			problems++
		} else {
			fmt.Printf("✓ %s OK (title: %q)\n", eventFile, doc.Get("event.title"))
		}
	}

	if problems > 0 {
		return fmt.Errorf("%d problem(s) found", problems)
	}
	return nil
}

// unwrapAll follows the cause chain to the innermost error.
func unwrapAll(err error) error {
	for {
		inner, ok := err.(interface{ Unwrap() error })
		if !ok || inner.Unwrap() == nil {
			return err
		}
		err = inner.Unwrap()
	}
}
