package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"trendmarket/internal/auth"
	"trendmarket/internal/blockchain"
	"trendmarket/internal/config"
	"trendmarket/internal/database"
	"trendmarket/internal/handlers"
	"trendmarket/internal/jobs"
	"trendmarket/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// On-chain mirror: a real Solana client when enabled, otherwise a no-op
	var chain blockchain.Submitter = blockchain.Disabled{}
	if cfg.Chain.Enabled {
		client, err := blockchain.NewClient(cfg.Chain.Network, cfg.Chain.ServerPrivateKey)
		if err != nil {
			log.Fatalf("Failed to initialize chain client: %v", err)
		}
		chain = client
		log.Printf("Chain mirroring enabled on %s", cfg.Chain.Network)
	}

	// Initialize services
	locks := services.NewMarketLocks(cfg.Markets.LockWait)
	settlementService := services.NewSettlementService(db)
	marketService := services.NewMarketService(db, cfg.Markets, chain, locks, settlementService)
	predictionService := services.NewPredictionService(db, cfg.Markets, chain, locks)
	userService := services.NewUserService(db)
	trendService := services.NewTrendService(db)
	authService := services.NewAuthService(db)

	if err := trendService.SeedSampleTrends(context.Background()); err != nil {
		log.Printf("Warning: failed to seed sample trends: %v", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	marketHandler := handlers.NewMarketHandler(marketService)
	predictionHandler := handlers.NewPredictionHandler(predictionService, settlementService)
	trendHandler := handlers.NewTrendHandler(trendService)

	// Start market closer job
	closerJob := jobs.NewMarketCloser(marketService, cfg.Markets.CloseInterval)
	go closerJob.Start()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/wallet", authHandler.WalletLogin)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public read routes
	router.GET("/api/markets", marketHandler.GetMarkets)
	router.GET("/api/markets/:id", marketHandler.GetMarketByID)
	router.GET("/api/markets/:id/odds", marketHandler.GetMarketOdds)
	router.GET("/api/predictions", predictionHandler.GetPredictions)
	router.GET("/api/social-trends", trendHandler.GetSocialTrends)
	router.GET("/api/top-predictors", userHandler.GetTopPredictors)
	router.GET("/api/users/:walletAddress", userHandler.GetUser)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		api.POST("/markets", marketHandler.CreateMarket)
		api.PATCH("/markets/:id", marketHandler.UpdateMarket)
		api.POST("/markets/:id/resolve", marketHandler.ResolveMarket)

		api.POST("/predictions", predictionHandler.PlaceBet)
		api.POST("/predictions/:id/claim", predictionHandler.ClaimPrediction)

		api.POST("/users", userHandler.RegisterUser)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	closerJob.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
