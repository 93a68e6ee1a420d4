package cmd

import (
	"context"
	"fmt"
	"os"

	"foodshare/internal/core/config"
	"foodshare/internal/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Execute runs the root command. Without a subcommand the API server starts.
func Execute(ctx context.Context) {
	rootCmd := &cobra.Command{
		Use:          "foodshare",
		Short:        "Food donation search service",
		SilenceUsage: true,
		RunE:         runServe,
	}

	MigrateCmd.Flags().String("dir", "", "Directory containing the migration files (defaults to MIGRATIONS_DIR)")
	rootCmd.AddCommand(ServeCmd, MigrateCmd, SeedCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, logger.NewLogger(cfg.LogLevel, cfg.IsProduction()), nil
}
