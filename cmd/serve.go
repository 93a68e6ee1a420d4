package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"foodshare/internal/core/container"
	"foodshare/internal/core/routes"
	"foodshare/internal/database"
	"foodshare/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var version = "dev"

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var appContainer *container.Container
	if cfg.UsesSQL() {
		if err := database.RunMigrations(cfg.Database.Driver, cfg.Database.URL, cfg.Database.MigrationsDir, false, log); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}

		db, err := database.Open(cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		log.Info("Connected to the database", zap.String("driver", cfg.Database.Driver))

		appContainer = container.NewAppContainer(cfg, db, log)
	} else {
		log.Warn("Using in-memory store with sample data")
		appContainer = container.NewAppContainer(cfg, nil, log)
	}

	router, err := routes.NewRouter(appContainer)
	if err != nil {
		return err
	}

	appContainer.Health.SetVersion(version)
	server := &http.Server{
		Addr:              cfg.Host,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	group, ctx := errgroup.WithContext(cmd.Context())
	group.Go(func() error {
		log.Info("Starting server", zap.String("address", cfg.Host))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		appContainer.Health.SetStatus(middleware.HealthShuttingDown)
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
