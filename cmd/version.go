package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soireehq/soiree/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		detailed, _ := cmd.Flags().GetBool("detailed")

		switch format {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(version.Get())
		case "text":
			if detailed {
				fmt.Println(version.Detailed())
			} else {
				fmt.Println("soiree " + version.Short())
			}
			return nil
		default:
			return fmt.Errorf("unsupported format: %s (supported: text, json)", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().StringP("format", "f", "text", "Output format (text, json)")
	versionCmd.Flags().Bool("detailed", false, "Show detailed version information")
}
