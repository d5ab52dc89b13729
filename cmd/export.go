package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/soireehq/soiree/internal/config"
	"github.com/soireehq/soiree/internal/invite"
	"github.com/soireehq/soiree/internal/render"
	"github.com/soireehq/soiree/internal/router"
	"github.com/soireehq/soiree/internal/server"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a static copy of the site",
	Long: `Render every enabled section to a static HTML file and copy the
stylesheet and image assets alongside them. The home section becomes
index.html; other sections become section/<name>/index.html so the
server's URLs keep working on any static host.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "dist", "Output directory")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	outDir, _ := cmd.Flags().GetString("output")
	logger := newLogger()
	ctx := context.Background()

	loader := invite.NewLoader(nil, logger,
		invite.WithPlaceholders(invite.NewPlaceholders(cfg.Placeholders)))
	doc, err := loader.Load(ctx, cfg.EventFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Using sample content: %v\n", err)
		doc = loader.Fallback()
	}

	engine, err := render.New(cfg.Features, logger)
	if err != nil {
		return err
	}

	for _, section := range router.Sections {
		page, err := engine.Page(doc, section)
		if err != nil {
			return fmt.Errorf("assembling %s: %w", section, err)
		}

		target := filepath.Join(outDir, "index.html")
		if section != router.SectionHome {
			target = filepath.Join(outDir, "section", section, "index.html")
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		out, err := os.Create(target)
		if err != nil {
			return err
		}
		renderErr := engine.Render(out, page)
		closeErr := out.Close()
		if renderErr != nil {
			return fmt.Errorf("rendering %s: %w", section, renderErr)
		}
		if closeErr != nil {
			return closeErr
		}
		fmt.Printf("Wrote %s\n", target)
	}

	if err := copyStatic(server.StaticFS(), filepath.Join(outDir, "static")); err != nil {
		return fmt.Errorf("copying static assets: %w", err)
	}

	fmt.Printf("Static site written to %s\n", outDir)
	return nil
}

func copyStatic(assets fs.FS, outDir string) error {
	return fs.WalkDir(assets, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(outDir, path)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := fs.ReadFile(assets, path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}
