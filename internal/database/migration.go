package database

import (
	"fmt"
	"path/filepath"

	"foodshare/internal/database/migration"

	"go.uber.org/zap"
)

func RunMigrations(driver, dbURL, migrationsDir string, verbose bool, logger *zap.Logger) error {
	absPath, err := filepath.Abs(migrationsDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	return migration.Migrate(MigrationURL(driver, dbURL), "file://"+filepath.ToSlash(absPath), verbose, logger)
}
