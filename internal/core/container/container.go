package container

import (
	"database/sql"
	"time"

	"foodshare/internal/core/config"
	"foodshare/internal/database"
	"foodshare/internal/donations"
	"foodshare/internal/middleware"
	"foodshare/internal/rate_limiter"
	"foodshare/internal/repository"
	"foodshare/internal/seed"

	"go.uber.org/zap"
)

const rateLimitTTL = 10 * time.Minute

type Container struct {
	Config          *config.Config
	Logger          *zap.Logger
	Repository      *repository.Repository
	Store           donations.Store
	SearchService   *donations.SearchService
	RateLimiter     *rate_limiter.RateLimiter
	DonationHandler *donations.DonationHandler
	Health          *middleware.HealthChecker
}

// NewAppContainer wires the application. db is nil for the memory driver, in
// which case the store is filled with the sample data set.
func NewAppContainer(cfg *config.Config, db *sql.DB, logger *zap.Logger) *Container {
	defaults := donations.SearchDefaults{
		RadiusKm: cfg.Search.DefaultRadiusKm,
		Limit:    cfg.Search.DefaultLimit,
		MaxLimit: cfg.Search.MaxLimit,
	}

	var repo *repository.Repository
	var store donations.Store
	var health *middleware.HealthChecker
	if db != nil {
		repo = repository.NewRepository(db, database.Dialect(cfg.Database.Driver))
		store = donations.NewSQLStore(repo, logger)
		health = middleware.NewHealthChecker(cfg.Database.Driver, db.PingContext)
	} else {
		health = middleware.NewHealthChecker(config.DriverMemory, nil)
		store = donations.NewMemoryStore(seed.Fixtures(time.Now()).Donations...)
	}

	searchService := donations.NewSearchService(store, logger, defaults)
	rateLimiter := rate_limiter.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst, rateLimitTTL)
	donationHandler := donations.NewDonationHandler(searchService, logger, defaults, middleware.RateLimitMiddleware(rateLimiter))

	return &Container{
		Config:          cfg,
		Logger:          logger,
		Repository:      repo,
		Store:           store,
		SearchService:   searchService,
		RateLimiter:     rateLimiter,
		DonationHandler: donationHandler,
		Health:          health,
	}
}
