// api/router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mealcraft/api/auth"
	"github.com/mealcraft/api/controller"
	"github.com/mealcraft/api/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	legacyVerifier *auth.HMACVerifier,
	providerVerifier *auth.RSAVerifier,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))
	router.Use(middleware.Authentication(legacyVerifier, providerVerifier))

	api := router.Group("/api/v1")

	// Public routes
	controllers.Auth.RegisterRoutes(api)
	controllers.Search.RegisterRoutes(api)

	// Authenticated routes
	authenticated := api.Group("")
	authenticated.Use(middleware.RequireAuth())

	controllers.Recipe.RegisterRoutes(authenticated)
	controllers.Notification.RegisterRoutes(authenticated)
	controllers.User.RegisterRoutes(authenticated, middleware.RequireAdmin())

	return router
}
