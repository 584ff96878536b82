package routes

import (
	"delius-api/internal/adapters/http/handlers"
	"delius-api/internal/adapters/http/middleware"
	"delius-api/internal/adapters/persistence/repositories"
	"delius-api/internal/config"
	"delius-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Setup configures all routes for the application and wires the service
// graph. It returns the cron service so main can start and stop it.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *zap.SugaredLogger) *services.CronService {
	// Initialize repositories
	txManager := repositories.NewTxManager(db)
	userRepo := repositories.NewUserRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	offenderRepo := repositories.NewOffenderRepository(db)
	contactRepo := repositories.NewContactRepository(db)
	eventRepo := repositories.NewEventRepository(db)
	nsiRepo := repositories.NewNsiRepository(db)
	referenceRepo := repositories.NewReferenceRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, refreshTokenRepo, cfg, logger)
	auditService := services.NewAuditService(auditRepo, logger)
	systemContactService := services.NewSystemContactService(contactRepo, referenceRepo, logger)
	validationService := services.NewContactValidationService(offenderRepo, referenceRepo, nsiRepo, contactRepo, logger)
	breachService := services.NewBreachService(contactRepo, eventRepo, logger)
	enforcementService := services.NewEnforcementService(contactRepo, eventRepo, systemContactService, breachService, logger)
	rarService := services.NewRarService(contactRepo, eventRepo, nsiRepo, logger)
	contactService := services.NewContactService(
		txManager,
		contactRepo,
		validationService,
		enforcementService,
		breachService,
		rarService,
		auditService,
		logger,
	)
	nsiService := services.NewNsiService(
		txManager,
		nsiRepo,
		offenderRepo,
		referenceRepo,
		rarService,
		systemContactService,
		auditService,
		logger,
	)
	cronService := services.NewCronService(rarService, authService, logger)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	contactHandler := handlers.NewContactHandler(contactService)
	nsiHandler := handlers.NewNsiHandler(nsiService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes (public, rate limited)
	authRoutes := app.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, cfg)

	// API v1 group (authenticated)
	apiV1 := app.Group("/v1")
	apiV1.Use(middleware.AuthMiddleware(cfg))
	setupContactRoutes(apiV1.Group("/contact"), contactHandler)
	setupNsiRoutes(apiV1.Group("/nsi"), nsiHandler)

	return cronService
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, cfg *config.Config) {
	// Public routes (5 req/min/IP against brute force)
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", middleware.AuthRateLimiter(), handler.RefreshToken)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(cfg), handler.Me)
	router.Post("/logout-all", middleware.AuthMiddleware(cfg), handler.LogoutAll)
}

// setupContactRoutes configures contact routes
func setupContactRoutes(router fiber.Router, handler *handlers.ContactHandler) {
	router.Post("/", handler.Create)
	router.Get("/:id", handler.Get)
	router.Patch("/:id", handler.Update)
	router.Delete("/:id", handler.Delete)
	router.Post("/:id/replace", handler.Replace)
}

// setupNsiRoutes configures NSI routes
func setupNsiRoutes(router fiber.Router, handler *handlers.NsiHandler) {
	router.Post("/", handler.Create)
	router.Get("/:id", handler.Get)
}
