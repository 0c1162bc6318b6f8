package main

import (
	"fmt"
	"net/http"
	"os"

	"scripfolio/internal/config"
	"scripfolio/internal/database"
	"scripfolio/internal/handlers"
	"scripfolio/internal/logger"
	"scripfolio/internal/middleware"
	"scripfolio/internal/pricing"
	"scripfolio/internal/services"
	"scripfolio/internal/staging"
	"scripfolio/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "scripfolio/internal/docs" // Import swagger docs
)

// @title           Scripfolio API
// @version         1.0
// @description     Scripfolio ingests broker tradebooks and contract notes, reconciles them, and maintains a FIFO cost-basis ledger with financial-year reports.

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize staging state and services
	db := dbManager.DB()
	store := staging.NewStore(appConfig.StagingTTL)
	progress := staging.NewProgressTracker(appConfig.ProgressTTL)
	prices := pricing.NewClient(appConfig.PriceCacheTTL)

	aliasService := services.NewAliasService(db)
	splitService := services.NewSplitService(db)
	ingestionService := services.NewIngestionService(db, store, progress, appConfig.PnLChargePolicy)
	reportService := services.NewReportService(db, prices, aliasService, appConfig.PnLChargePolicy)

	// Initialize handlers
	ingestHandler := handlers.NewIngestHandler(ingestionService)
	reportHandler := handlers.NewReportHandler(reportService)
	aliasHandler := handlers.NewAliasHandler(aliasService)
	splitHandler := handlers.NewSplitHandler(splitService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Ingestion routes
	ingest := v1.Group("/ingest")
	ingest.POST("/preview", ingestHandler.Preview)
	ingest.POST("/commit", ingestHandler.Commit)
	ingest.POST("/discard", ingestHandler.Discard)
	ingest.GET("/progress/:correlation_id", ingestHandler.Progress)

	// Report routes
	reports := v1.Group("/reports")
	reports.GET("/fy", reportHandler.FYList)
	reports.GET("/dashboard", reportHandler.Dashboard)
	reports.GET("/summary", reportHandler.Summary)
	reports.GET("/realized", reportHandler.Realized)
	reports.GET("/unmatched", reportHandler.Unmatched)

	// Holdings
	v1.GET("/holdings", reportHandler.Holdings)

	// Symbol alias routes
	symbols := v1.Group("/symbols")
	symbols.GET("/aliases", aliasHandler.List)
	symbols.POST("/aliases", aliasHandler.Upsert)

	// Split event routes
	splits := v1.Group("/splits")
	splits.GET("", splitHandler.List)
	splits.POST("", splitHandler.Create)
	splits.DELETE("/:id", splitHandler.Delete)

	log.Infof("Starting Scripfolio backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
