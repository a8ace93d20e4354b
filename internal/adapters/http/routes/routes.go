package routes

import (
	"salescore-backend/internal/adapters/http/handlers"
	"salescore-backend/internal/adapters/http/middleware"
	"salescore-backend/internal/adapters/persistence/repositories"
	"salescore-backend/internal/config"
	"salescore-backend/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)

	// Initialize services
	tokenService := services.NewTokenService(refreshTokenRepo, cfg)
	identityService := services.NewIdentityService(userRepo, roleRepo, refreshTokenRepo, tokenService)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(identityService, cfg)
	accountHandler := handlers.NewAccountHandler(identityService)
	userHandler := handlers.NewUserHandler(identityService)
	roleHandler := handlers.NewRoleHandler(identityService)

	// Public endpoints
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)
	app.Get("/swagger/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")

	// Auth endpoints (anonymous, stricter rate limit)
	auth := api.Group("/auth", middleware.AuthRateLimiter())
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refreshtoken", authHandler.RefreshToken)

	// Account endpoints (self-service)
	account := api.Group("/account", middleware.AuthMiddleware(cfg))
	account.Put("/:id", accountHandler.UpdateAccountInfo)
	account.Post("/:id/changepassword", accountHandler.ChangePassword)
	account.Post("/:id/resetpassword", middleware.StrictRateLimiter(), accountHandler.ResetPassword)
	account.Get("/:id/resetpasswordtoken", middleware.StrictRateLimiter(), accountHandler.GenerateResetPasswordToken)

	// User administration endpoints
	users := api.Group("/users", middleware.AuthMiddleware(cfg))
	users.Get("/", userHandler.GetAll)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", middleware.AdminOnly(), userHandler.Update)
	users.Put("/:id/roles", middleware.AdminOnly(), userHandler.UpdateRoles)
	users.Delete("/:id", middleware.AdminOnly(), userHandler.Delete)

	// Role catalog
	api.Get("/roles", middleware.AuthMiddleware(cfg), roleHandler.GetAll)
}
