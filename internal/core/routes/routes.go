package routes

import (
	"fmt"

	"foodshare/internal/core/container"
	"foodshare/internal/middleware"
	"foodshare/pkg/roles"
	"foodshare/pkg/security"

	"github.com/gin-gonic/gin"
)

func RegisterPublicRoutes(router gin.IRouter, container *container.Container) {
	container.DonationHandler.RegisterRoutes(router)
}

func RegisterProtectedRoutes(router gin.IRouter, container *container.Container) {
	protectedRoutes := router.Group("")
	protectedRoutes.Use(
		security.JWTMiddleware([]byte(container.Config.Security.JWTSecret)),
		security.Authorize(roles.Donor),
	)

	container.DonationHandler.RegisterProtectedRoutes(protectedRoutes)
}

func RegisterUtilityRoutes(router gin.IRouter, container *container.Container) {
	router.GET("/health", container.Health.Handler())
}

// NewRouter builds the gin engine with the global middleware and every route
// group. Only the configured proxies may set the client address via headers.
func NewRouter(container *container.Container) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(container.Config.HTTP.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	router.Use(
		middleware.RecoveryMiddleware(container.Logger),
		middleware.TimeoutMiddleware(container.Config.HTTP.RequestTimeout),
	)

	RegisterUtilityRoutes(router, container)
	RegisterPublicRoutes(router, container)
	RegisterProtectedRoutes(router, container)

	return router, nil
}
