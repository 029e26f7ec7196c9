package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ruslamp94/reglament-svetofor-v78/config"
	"github.com/ruslamp94/reglament-svetofor-v78/handler"
	"github.com/ruslamp94/reglament-svetofor-v78/middleware"
	"github.com/ruslamp94/reglament-svetofor-v78/pkg/logger"
	"github.com/ruslamp94/reglament-svetofor-v78/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Initialize services
	store := service.NewReviewStore(&cfg.Store)

	templates, err := service.NewTemplateStore(cfg.Templates)
	if err != nil {
		slog.Error("failed to load custom templates", "error", err)
		os.Exit(1)
	}

	settings := service.NewSettings(cfg.Thresholds)
	advisor := service.NewAdvisorService(&cfg.Advisor)

	var archive *service.ArchiveService
	if cfg.Archive.Enabled {
		archive, err = service.NewArchiveService(&cfg.Archive)
		if err != nil {
			slog.Error("failed to initialize archive service", "error", err)
			os.Exit(1)
		}
		if err := archive.EnsureBucket(context.Background()); err != nil {
			slog.Error("failed to ensure archive bucket", "error", err)
			os.Exit(1)
		}
		slog.Info("document archive enabled", "bucket", cfg.Archive.Bucket)
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	reviewHandler := handler.NewReviewHandler(cfg, store, templates, settings, advisor, archive)
	settingsHandler := handler.NewSettingsHandler(settings, templates)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())                 // Request ID for tracing
	router.Use(middleware.Recovery())                  // Panic recovery
	router.Use(middleware.RequestLogger())             // Access logging
	router.Use(corsMiddleware())                       // CORS
	router.Use(middleware.RateLimit(100, time.Minute)) // Rate limiting: 100 requests per minute

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)
		protected.GET("/demo", reviewHandler.Demo)
		protected.POST("/reviews", reviewHandler.Create)
		protected.POST("/reviews/upload", reviewHandler.Upload)
		protected.GET("/reviews", reviewHandler.List)
		protected.GET("/reviews/:id", reviewHandler.Get)
		protected.DELETE("/reviews/:id", reviewHandler.Delete)
		protected.POST("/reviews/:id/zone", reviewHandler.Zone)
		protected.POST("/reviews/:id/compliance", reviewHandler.Compliance)
		protected.POST("/reviews/:id/opinion", reviewHandler.StartOpinion)
		protected.GET("/reviews/:id/opinion", reviewHandler.GetOpinion)
	}

	// Admin routes
	admin := protected.Group("/")
	admin.Use(middleware.AdminOnly())
	{
		admin.GET("/settings/thresholds", settingsHandler.GetThresholds)
		admin.PUT("/settings/thresholds", settingsHandler.UpdateThresholds)
		admin.GET("/templates", settingsHandler.ListTemplates)
		admin.POST("/templates", settingsHandler.CreateTemplate)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers for the separately hosted frontend
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
