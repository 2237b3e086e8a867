package main

import (
	"fmt"
	"os"
	"path/filepath"

	"ai-notecanvas/internal/bootstrap"
	"ai-notecanvas/internal/config"
	"ai-notecanvas/internal/pkg/logger"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a backup of the saved canvas to a JSON file",
	Long: `Writes notes, edges, the master document, chat history and settings
(API key masked) to ai-notetaker-backup-YYYY-MM-DD.json.

The badger store allows one process at a time; stop the server first.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "dir", "d", ".", "directory to write the backup into")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	container, err := bootstrap.NewContainer(cmd.Context(), cfg, sysLogger)
	if err != nil {
		return err
	}
	defer container.Close()

	if !container.Persistent && cfg.Storage.Driver != "memory" {
		return fmt.Errorf("storage %q could not be opened, nothing to export", cfg.Storage.Driver)
	}

	data, name, err := container.ExportService.Encode(cmd.Context())
	if err != nil {
		return err
	}

	path := filepath.Join(exportDir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}

	bundle := container.ExportService.Export(cmd.Context())
	color.Green("✅ Exported %d notes and %d edges to %s", len(bundle.Notes), len(bundle.Edges), path)
	return nil
}
