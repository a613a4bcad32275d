package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rvickery/gamedex/internal/config"
	"github.com/rvickery/gamedex/internal/db"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath, logger)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		dir := migrationsDir
		if dir == "" {
			dir = cfg.Server.MigrationsDir
		}
		return db.RunMigrations(cfg.Database, dir, logger)
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "migrations directory (defaults to config)")
}
