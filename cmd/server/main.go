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
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meninojhony/modec-challenger/config"
	"github.com/meninojhony/modec-challenger/handler"
	"github.com/meninojhony/modec-challenger/middleware"
	"github.com/meninojhony/modec-challenger/migrations"
	"github.com/meninojhony/modec-challenger/pkg/logger"
	"github.com/meninojhony/modec-challenger/service"
)

func runMigrations(dsn string) error {
	goose.SetBaseFS(migrations.FS)
	sqlDB, err := goose.OpenDBWithDriver("postgres", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, ".")
}

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	// Load configuration
	cfg, err := config.Load(configPath)
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

	ctx := context.Background()

	// Pick the repository: Postgres when a DSN is configured, in-memory
	// otherwise (local development)
	var repo service.Repository
	if cfg.Database.DSN != "" {
		if err := runMigrations(cfg.Database.DSN); err != nil {
			slog.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied")

		pool, err := pgxpool.New(ctx, cfg.Database.DSN)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = service.NewPostgresRepository(pool)
		slog.Info("database connected")
	} else {
		slog.Warn("no database DSN configured, using in-memory repository")
		repo = seedMemoryRepository(ctx)
	}

	contractSvc := service.NewContractService(repo)
	categorySvc := service.NewCategoryService(repo)

	// Object storage for contract documents is optional
	var attachments *service.AttachmentStore
	if cfg.Storage.Enabled {
		attachments, err = service.NewAttachmentStore(&cfg.Storage)
		if err != nil {
			slog.Error("failed to initialize object storage", "error", err)
			os.Exit(1)
		}
		if err := attachments.EnsureBucket(ctx); err != nil {
			slog.Error("failed to ensure storage bucket", "error", err)
			os.Exit(1)
		}
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	contractHandler := handler.NewContractHandler(contractSvc)
	categoryHandler := handler.NewCategoryHandler(categorySvc)
	dashboardHandler := handler.NewDashboardHandler(contractSvc)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())                 // Request ID for tracing
	router.Use(middleware.Recovery())                  // Panic recovery
	router.Use(middleware.RequestLogger())             // Access logging
	router.Use(corsMiddleware())                       // CORS
	router.Use(middleware.RateLimit(100, time.Minute)) // Rate limiting: 100 requests per minute
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

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

		protected.GET("/contracts", contractHandler.List)
		protected.GET("/contracts/export", contractHandler.Export)
		protected.POST("/contracts", contractHandler.Create)
		protected.GET("/contracts/:id", contractHandler.Get)
		protected.PUT("/contracts/:id", contractHandler.Update)
		protected.DELETE("/contracts/:id", contractHandler.Delete)
		protected.GET("/contracts/:id/history", contractHandler.History)

		protected.GET("/categories", categoryHandler.List)
		protected.POST("/categories", categoryHandler.Create)
		protected.GET("/categories/:id", categoryHandler.Get)
		protected.PUT("/categories/:id", categoryHandler.Update)
		protected.DELETE("/categories/:id", categoryHandler.Delete)

		protected.GET("/dashboard/stats", dashboardHandler.Stats)

		if attachments != nil {
			attachmentHandler := handler.NewAttachmentHandler(contractSvc, attachments)
			protected.POST("/contracts/:id/document", attachmentHandler.Upload)
			protected.GET("/contracts/:id/document", attachmentHandler.Download)
		}
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// seedMemoryRepository mirrors the migration seed so DSN-less runs still
// have categories to attach contracts to. The slice keeps insertion order,
// and with it the assigned ids, identical to the SQL seed.
func seedMemoryRepository(ctx context.Context) service.Repository {
	repo := service.NewMemoryRepository()
	svc := service.NewCategoryService(repo)
	seeds := []struct {
		name        string
		description string
	}{
		{"IT Services", "Information technology and software services"},
		{"Maintenance", "Equipment and facility maintenance"},
		{"Consulting", "Professional consulting services"},
		{"Logistics", "Transport and logistics services"},
		{"Facilities", "Facility management and support services"},
	}
	for _, seed := range seeds {
		if _, err := svc.Create(ctx, seed.name, seed.description); err != nil {
			slog.Warn("failed to seed category", "name", seed.name, "error", err)
		}
	}
	return repo
}

// corsMiddleware handles CORS headers
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
