package main

import (
	"fmt"
	"net/http"
	"os"

	"verdant/internal/config"
	"verdant/internal/database"
	"verdant/internal/handlers"
	"verdant/internal/logger"
	"verdant/internal/middleware"
	"verdant/internal/models"
	"verdant/internal/services"
	"verdant/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "verdant/internal/docs" // Import swagger docs
)

// @title           Verdant API
// @version         1.0
// @description     Verdant is a ledger-backed marketplace for provenance-tracked environmental offset assets, with a descending-price auction, pull-payment revenue splitting, and a collateral vault issuing a supply-capped stable token.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

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

	// Initialize services
	db := dbManager.DB()
	if err := services.Bootstrap(db, appConfig); err != nil {
		return fmt.Errorf("failed to bootstrap ledger state: %w", err)
	}

	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	eventService := services.NewEventService(db)
	marketService := services.NewMarketService(db, tokenService, eventService, appConfig.MaxBatchSize)
	vaultService := services.NewVaultService(db, tokenService, eventService, appConfig.FixedLoanValue)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	marketHandler := handlers.NewMarketHandler(marketService)
	vaultHandler := handlers.NewVaultHandler(vaultService)
	tokenHandler := handlers.NewTokenHandler(tokenService)
	eventHandler := handlers.NewEventHandler(eventService)
	adminHandler := handlers.NewAdminHandler(marketService, vaultService)

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

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Market routes
	market := protected.Group("/market")
	market.POST("/batches", middleware.RequireRole(models.RoleMinter), marketHandler.MintBatch)
	market.GET("/batches", marketHandler.GetBatches)
	market.GET("/batches/:id", marketHandler.GetBatch)
	market.GET("/batches/:id/price", marketHandler.GetBatchPrice)
	market.POST("/batches/:id/buy", marketHandler.BuyBatch)
	market.GET("/claims/producer", marketHandler.GetProducerBalance)
	market.POST("/claims/producer", marketHandler.ClaimProducerFunds)
	market.POST("/claims/platform", middleware.RequireRole(models.RoleAdmin), marketHandler.ClaimPlatformFunds)
	market.GET("/state", marketHandler.GetMarketState)

	// Asset routes
	assets := protected.Group("/assets")
	assets.GET("/:id", marketHandler.GetAsset)
	assets.POST("/:id/redeem", marketHandler.RedeemAsset)
	assets.POST("/redeem", marketHandler.RedeemAssets)

	// Vault routes
	vault := protected.Group("/vault")
	vault.POST("/deposits", vaultHandler.Deposit)
	vault.POST("/withdrawals", vaultHandler.Withdraw)
	vault.GET("/loans", vaultHandler.GetMyLoans)
	vault.GET("/loans/:id", vaultHandler.GetLoanStatus)
	vault.GET("/stats", vaultHandler.GetStats)
	vault.POST("/sweep/:id", middleware.RequireRole(models.RoleAdmin), vaultHandler.SweepAsset)

	// Token routes
	tokens := protected.Group("/tokens")
	tokens.GET("/:kind/balance", tokenHandler.GetBalance)
	tokens.GET("/:kind/supply", tokenHandler.GetSupply)
	tokens.GET("/:kind/allowance", tokenHandler.GetAllowance)
	tokens.POST("/:kind/approve", tokenHandler.Approve)
	tokens.POST("/:kind/transfer", tokenHandler.Transfer)
	tokens.POST("/:kind/mint", middleware.RequireRole(models.RoleMinter), tokenHandler.Mint)

	// Event feed
	protected.GET("/events", eventHandler.GetEvents)

	// Admin switches
	admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.POST("/market/pause", adminHandler.SetMarketPaused)
	admin.POST("/vault/pause", adminHandler.SetVaultPaused)

	log.Infof("Starting Verdant backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
