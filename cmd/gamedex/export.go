package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rvickery/gamedex/internal/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "dump the catalog to csv or xlsx",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, cleanup, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		out, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()

		service := export.NewService(store, logger)

		var rows int
		switch exportFormat {
		case "csv":
			rows, err = service.ExportGamesCSV(cmd.Context(), out)
		case "xlsx":
			rows, err = service.ExportWorkbook(cmd.Context(), out)
		default:
			return fmt.Errorf("unsupported format %q", exportFormat)
		}
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		logger.Info("done", zap.Int("games", rows), zap.String("path", exportOut))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or xlsx")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "catalog-export.csv", "output file path")
}
