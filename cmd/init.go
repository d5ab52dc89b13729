package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const starterEvent = `# Your invitation content. Every field is optional: anything you leave
# out falls back to a sensible placeholder.
event:
  title: "You're Invited"
  tagline: "Join us for a special celebration"
  date: "Saturday, June 21"
  time: "6:00 PM"
  location: "The Old Orchard"
  address: "12 Orchard Lane"
  description: "An evening of food, music, and good company."

organizer:
  name: "The Hosts"
  email: "hello@example.com"
  phone: "+1 (555) 000-0000"

schedule:
  - time: "6:00 PM"
    title: "Welcome drinks"
  - time: "7:00 PM"
    title: "Dinner"

gallery:
  images: []

rsvp:
  enabled: true
  deadline: "June 1"
  maxGuests: 2

contact:
  methods:
    - type: email
      label: "Email us"
      value: "hello@example.com"
      icon: mail

customization:
  theme: classic
  navigation:
    gallery: true
    rsvp: true
    contact: true
`

const starterFlags = `# Developer feature flags for the soiree site engine.
server:
  port: 8080
  host: localhost

features:
  schedule: true
  gallery: true
  rsvp: true
  contact: true

email:
  provider: formspree
  endpoint: ""

storage:
  retention_days: 30

development:
  hot_reload: true

# Override the fallback text shown for missing event content, keyed by
# dotted path or path keyword.
# placeholders:
#   event.date: "Save the date!"
#   email: "rsvp@example.com"
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold event.yml and .soiree.yml in the current directory",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Bool("force", false, "Overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")

	files := []struct {
		path    string
		content string
	}{
		{"event.yml", starterEvent},
		{".soiree.yml", starterFlags},
	}

	for _, f := range files {
		if _, err := os.Stat(f.path); err == nil && !force {
			fmt.Printf("Skipping %s (already exists, use --force to overwrite)\n", f.path)
			continue
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.path, err)
		}
		fmt.Printf("Created %s\n", f.path)
	}

	fmt.Println("\nNext: edit event.yml, then run `soiree serve`.")
	return nil
}
