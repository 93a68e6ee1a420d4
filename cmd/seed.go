package cmd

import (
	"fmt"
	"time"

	"foodshare/internal/database"
	"foodshare/internal/repository"
	"foodshare/internal/seed"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all users and donations with the sample data set.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync()

		if !cfg.UsesSQL() {
			return fmt.Errorf("driver %s is seeded on start", cfg.Database.Driver)
		}

		db, err := database.Open(cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()

		data := seed.Fixtures(time.Now())
		repo := repository.NewRepository(db, database.Dialect(cfg.Database.Driver))
		if err := seed.Load(cmd.Context(), repo, data); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}

		log.Info("Database seeded",
			zap.Int("users", len(data.Users)),
			zap.Int("donations", len(data.Donations)),
		)

		return nil
	},
}
