package database

import (
	"database/sql"
	"fmt"
	"strings"

	"foodshare/internal/core/config"
	"foodshare/internal/repository"
)

// Open connects to the database of the given driver.
func Open(driver, url string) (*sql.DB, error) {
	switch driver {
	case config.DriverPostgres:
		return NewPostgresConnection(url)
	case config.DriverSQLite:
		return NewSQLiteConnection(url)
	default:
		return nil, fmt.Errorf("driver %s has no database connection", driver)
	}
}

// Dialect maps a configured driver to its goqu dialect.
func Dialect(driver string) string {
	if driver == config.DriverSQLite {
		return repository.DialectSQLite
	}
	return repository.DialectPostgres
}

// MigrationURL returns the URL golang-migrate expects for the driver.
func MigrationURL(driver, url string) string {
	if driver == config.DriverSQLite && !strings.HasPrefix(url, "sqlite://") {
		return "sqlite://" + url
	}
	return url
}
