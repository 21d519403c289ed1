package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"makemeshort/internal/cache"
	"makemeshort/internal/classify"
	"makemeshort/internal/config"
	"makemeshort/internal/controllers"
	"makemeshort/internal/database"
	"makemeshort/internal/geo"
	"makemeshort/internal/jwt"
	"makemeshort/internal/middleware"
	"makemeshort/internal/repository"
	"makemeshort/internal/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize Redis cache (optional - continue if Redis is unavailable)
	var cacheClient cache.Cache
	cacheClient, err = cache.NewRedisCache(cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		cacheClient = nil
	} else {
		logger.Info("connected to redis cache")
	}

	// Initialize repositories
	urlRepo := repository.NewURLRepository(db)
	visitorRepo := repository.NewVisitorRepository(db)
	qrRepo := repository.NewQRRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize JWT service
	jwtService := jwt.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTTTL)*time.Hour,
	)

	// Initialize services
	urlService := service.NewURLService(urlRepo, cacheClient, cfg.BaseURL, logger)
	visitorTracker := service.NewVisitorTracker(visitorRepo, cfg.IPHashSalt)
	analyticsService := service.NewAnalyticsService(urlRepo, visitorRepo, qrRepo, classify.NewUAClassifier())
	qrService := service.NewQRService(qrRepo, urlService, cfg.QRDefaultSize)
	authService := service.NewAuthService(userRepo, jwtService, cfg.AllowPublicSignup, cfg.SuperuserEmail, cfg.SuperuserPassword)

	// Initialize controllers
	shortenerController := controllers.NewShortenerController(urlService, visitorTracker, geo.NewHeaderGeolocator(), logger)
	analyticsController := controllers.NewAnalyticsController(analyticsService, logger)
	qrcodeController := controllers.NewQRCodeController(qrService, logger)
	authController := controllers.NewAuthController(authService, logger)
	healthController := controllers.NewHealthController(db, logger)

	// Initialize rate limiters
	generalRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	authRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst)
	redirectRateLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RedirectRPS), cfg.RedirectBurst)

	// Create a Gin router
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger), middleware.CORS())

	// Health check endpoint (no rate limiting)
	router.GET("/health/check", healthController.Check)

	// Redirect endpoint with lenient rate limiting
	router.GET("/r/:code", redirectRateLimiter.LimitMiddleware(), shortenerController.Redirect)

	// API routes group with general rate limiting
	api := router.Group("/api")
	api.Use(generalRateLimiter.LimitMiddleware())
	{
		// Auth routes with stricter rate limiting
		auth := api.Group("/auth")
		auth.Use(authRateLimiter.LimitMiddleware())
		{
			auth.POST("/signup", authController.Signup)
			auth.POST("/login", authController.Login)
			auth.POST("/init", authController.Init)
		}

		// Anonymous-friendly routes: ownership is recorded when a token is
		// present but none is required
		open := api.Group("")
		open.Use(middleware.OptionalAuthMiddleware(jwtService))
		{
			open.POST("/shorten", shortenerController.CreateShortURL)
			open.GET("/qr/:code/regenerate", qrcodeController.RegenerateQR)
			open.GET("/qr/:code/info", qrcodeController.GetQRInfo)
			open.POST("/qr", qrcodeController.CreateDirectQR)
		}

		// Protected routes - require JWT authentication
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(jwtService))
		{
			protected.GET("/urls", shortenerController.ListURLs)
			protected.DELETE("/urls/:code", shortenerController.DeleteURL)
			protected.GET("/analytics/:code", analyticsController.GetAnalytics)
			protected.GET("/qr", qrcodeController.ListQRCodes)

			// Per-user listings, restricted to the owner
			users := protected.Group("/users/:user_id")
			users.Use(middleware.RequireResourceOwner("user_id"))
			{
				users.GET("/urls", shortenerController.ListUserURLs)
				users.GET("/qr", qrcodeController.ListUserQRCodes)
			}
		}
	}

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
