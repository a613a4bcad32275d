package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rvickery/gamedex/internal/catalog"
	"github.com/rvickery/gamedex/internal/ingestion"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.jsonl>",
	Short: "ingest an NDJSON dump into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, cleanup, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer file.Close()

		service := ingestion.NewService(catalog.NewUpsertEngine(store, logger), logger)
		summary, err := service.Ingest(cmd.Context(), file)
		if err != nil {
			return fmt.Errorf("ingest: %w", err)
		}

		logger.Info("done",
			zap.Int("lines", summary.Lines),
			zap.Int("inserted", summary.Inserted),
			zap.Int("existing", summary.Existing),
			zap.Int("alias_upserts", summary.AliasUpserts),
			zap.Int("skipped", summary.Skipped))
		return nil
	},
}
