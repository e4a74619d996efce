package handler

import (
	"net/http"

	"auth_service/internal/config"
	"auth_service/internal/middleware"
	"auth_service/internal/observability"
	"auth_service/internal/queue"
	"auth_service/internal/user"

	"github.com/gin-gonic/gin"
)

// SetupHandler initializes all dependencies and routes
func SetupHandler(repo user.UserRepositoryInterface, publisher queue.Publisher, metrics *observability.Metrics, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger())
	if metrics != nil {
		r.Use(middleware.PrometheusMiddleware(metrics))
	}
	r.Use(middleware.Recovery())

	// Initialize services
	userService := user.NewUserService(repo, publisher, metrics, cfg.JWT)

	// Initialize controllers
	userController := user.NewUserController(userService)

	// Setup routes
	setupRoutes(r, userController, userService, metrics, cfg)

	return r
}

// setupRoutes configures all application routes
func setupRoutes(r *gin.Engine, userCtrl *user.UserController, userService user.UserServiceInterface, metrics *observability.Metrics, cfg *config.Config) {
	r.GET("/api", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Authentication API is running"})
	})

	requireAuth := middleware.AuthMiddleware(cfg.JWT.Secret, userService, metrics)
	userCtrl.SetupRoutes(r.Group("/api/auth"), requireAuth)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})
}
