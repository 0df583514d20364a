package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hostelnest/hostel-booking-backend/internal/config"
	"github.com/hostelnest/hostel-booking-backend/internal/handlers"
	"github.com/hostelnest/hostel-booking-backend/internal/middleware"
	"github.com/hostelnest/hostel-booking-backend/internal/models"
	"github.com/hostelnest/hostel-booking-backend/internal/services"
	"github.com/hostelnest/hostel-booking-backend/internal/store"
	"github.com/hostelnest/hostel-booking-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting HostelNest Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize snapshot persistence
	var persister store.Persister
	switch cfg.Snapshot.Backend {
	case "postgres":
		logger.Info("Connecting to postgres snapshot store...")
		pg, err := store.NewPostgresPersister(cfg.Database.URL)
		if err != nil {
			logger.Fatalf("Failed to connect to postgres: %v", err)
		}
		defer pg.Close()
		persister = pg
	default:
		fp, err := store.NewFilePersister(cfg.Snapshot.FilePath)
		if err != nil {
			logger.Fatalf("Failed to prepare snapshot file: %v", err)
		}
		persister = fp
	}
	logger.Infof("Snapshot backend: %s", cfg.Snapshot.Backend)

	// Load the entity store
	entityStore, err := store.New(persister, logger)
	if err != nil {
		logger.Fatalf("Failed to load entity store: %v", err)
	}
	logger.Info("Entity store loaded")

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	occupancyEngine := services.NewOccupancyEngine()
	authService := services.NewAuthService(entityStore, jwtService, logger)
	hostelService := services.NewHostelService(entityStore, occupancyEngine, logger)
	bookingService := services.NewBookingService(entityStore, occupancyEngine, logger)
	noticeService := services.NewNoticeService(entityStore, logger)
	selectionService := services.NewSelectionService(entityStore, bookingService, cfg.Selection.SessionTTL, logger)

	// Start the selection session sweeper
	selectionService.Start()
	logger.Info("Selection session sweeper started")

	logger.Info("Services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(entityStore, bookingService)
	hostelHandler := handlers.NewHostelHandler(entityStore, hostelService, bookingService, occupancyEngine)
	bookingHandler := handlers.NewBookingHandler(entityStore, bookingService)
	selectionHandler := handlers.NewSelectionHandler(selectionService)
	noticeHandler := handlers.NewNoticeHandler(entityStore, noticeService)

	// Initialize rate limiter
	rateLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(rateLimiter.Middleware())

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler())

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Authentication routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			// Protected routes (require JWT authentication)
			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.POST("/logout", authHandler.Logout)
				protected.POST("/change-password", authHandler.ChangePassword)
				protected.GET("/sessions", authHandler.Sessions)
			}
		}

		// Public hostel discovery routes
		v1.GET("/hostels", hostelHandler.ListActive)
		v1.GET("/hostels/:id", hostelHandler.Get)
		v1.GET("/geography", hostelHandler.Geography)

		// User routes (protected)
		users := v1.Group("/users")
		users.Use(middleware.AuthMiddleware(jwtService))
		{
			users.GET("/me", userHandler.Me)
			users.PUT("/me", userHandler.UpdateProfile)
			users.GET("", middleware.RequireRole(models.RoleAdmin), userHandler.List)
			users.POST("", middleware.RequireRole(models.RoleManager), userHandler.CreateManaged)
			users.PATCH("/:id/status", middleware.RequireRole(models.RoleAdmin), userHandler.SetStatus)
			users.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), userHandler.Delete)
		}

		// Hostel management routes (protected)
		hostels := v1.Group("/hostels")
		hostels.Use(middleware.AuthMiddleware(jwtService))
		{
			// Manager routes
			manager := hostels.Group("", middleware.RequireRole(models.RoleManager))
			{
				manager.GET("/mine", hostelHandler.Mine)
				manager.POST("", hostelHandler.Create)
				manager.PUT("/:id", hostelHandler.Update)
				manager.POST("/:id/toggle-active", hostelHandler.ToggleActive)
				manager.PUT("/:id/rooms/:roomId/occupied", hostelHandler.SetOccupiedCount)
				manager.PUT("/:id/rooms/:roomId/capacity", hostelHandler.SetCapacity)
			}

			// Admin routes
			admin := hostels.Group("", middleware.RequireRole(models.RoleAdmin))
			{
				admin.GET("/all", hostelHandler.ListAll)
				admin.PATCH("/:id/status", hostelHandler.SetStatus)
				admin.PUT("/:id/admin-note", hostelHandler.SetAdminNote)
				admin.DELETE("/:id", hostelHandler.Delete)
			}
		}

		// Booking routes (protected)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService))
		{
			bookings.GET("", bookingHandler.List)
			bookings.GET("/unpaid", middleware.RequireRole(models.RoleManager, models.RoleAdmin), bookingHandler.Unpaid)
			bookings.POST("/manual", middleware.RequireRole(models.RoleManager), bookingHandler.CreateManual)
			bookings.POST("/:id/approve", middleware.RequireRole(models.RoleManager, models.RoleAdmin), bookingHandler.Approve)
			bookings.POST("/:id/reject", middleware.RequireRole(models.RoleManager, models.RoleAdmin), bookingHandler.Reject)
			bookings.DELETE("/:id", middleware.RequireRole(models.RoleManager, models.RoleAdmin), bookingHandler.Delete)
			bookings.PATCH("/:id/fee-status", middleware.RequireRole(models.RoleManager, models.RoleAdmin), bookingHandler.SetFeeStatus)
		}

		// Seat selection routes (residents)
		selections := v1.Group("/selections")
		selections.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole(models.RoleResident))
		{
			selections.POST("", selectionHandler.Start)
			selections.GET("/:id", selectionHandler.Get)
			selections.PUT("/:id/seat", selectionHandler.Select)
			selections.DELETE("/:id/seat", selectionHandler.Deselect)
			selections.POST("/:id/submit", selectionHandler.Submit)
		}

		// Notice routes (protected)
		notices := v1.Group("/notices")
		notices.Use(middleware.AuthMiddleware(jwtService))
		{
			notices.GET("", noticeHandler.List)
			notices.POST("", middleware.RequireRole(models.RoleManager, models.RoleAdmin), noticeHandler.Create)
			notices.DELETE("/:id", middleware.RequireRole(models.RoleManager, models.RoleAdmin), noticeHandler.Delete)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop the selection session sweeper
	selectionService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		// Add user context if available
		if userCtx, ok := middleware.GetUserContext(c); ok {
			fields["user_id"] = userCtx.UserID
			fields["role"] = userCtx.Role
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
