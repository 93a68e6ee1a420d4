package cmd

import (
	"fmt"

	"foodshare/internal/database"

	"github.com/spf13/cobra"
)

var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run migrations manually.",
	Long:  `Applies pending migrations to the configured postgres or sqlite database. The serve command does the same on start.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		if !cfg.UsesSQL() {
			return fmt.Errorf("driver %s has no migrations", cfg.Database.Driver)
		}

		migrationDir, _ := cmd.Flags().GetString("dir")
		if migrationDir == "" {
			migrationDir = cfg.Database.MigrationsDir
		}

		if err := database.RunMigrations(cfg.Database.Driver, cfg.Database.URL, migrationDir, true, log); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		return nil
	},
}
