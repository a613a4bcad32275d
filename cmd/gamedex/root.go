package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rvickery/gamedex/internal/config"
	"github.com/rvickery/gamedex/internal/db"
	"github.com/rvickery/gamedex/internal/repository"
)

var (
	configPath string
	logger     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gamedex",
	Short: "game catalog toolbox",
	Long:  "gamedex maintains a normalized game catalog: ingest NDJSON dumps, apply migrations, export the tables.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yaml")
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(exportCmd)
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore loads config and connects, returning the store plus a cleanup.
func openStore(cmd *cobra.Command) (repository.Store, config.Config, func(), error) {
	cfg, err := config.Load(configPath, logger)
	if err != nil {
		return nil, config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	conn, err := db.NewConnection(cmd.Context(), cfg.Database)
	if err != nil {
		return nil, config.Config{}, nil, fmt.Errorf("connect: %w", err)
	}
	return repository.NewStore(conn), cfg, conn.Close, nil
}
