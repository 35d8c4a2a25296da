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
	"golang.org/x/oauth2"

	"xogs-backend/internal/auth"
	"xogs-backend/internal/config"
	"xogs-backend/internal/database"
	"xogs-backend/internal/handlers"
	"xogs-backend/internal/jobs"
	"xogs-backend/internal/services"
	"xogs-backend/internal/twitter"
	"xogs-backend/internal/wallet"
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

	// Twitter OAuth for login; app bearer client for background refreshes
	oauthProvider := twitter.NewOAuthProvider(
		cfg.Twitter.ClientID,
		cfg.Twitter.ClientSecret,
		cfg.Twitter.CallbackURL,
	)
	appTokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Twitter.BearerToken})
	appClient := twitter.NewClient(oauth2.NewClient(context.Background(), appTokenSource))

	// Initialize services
	ledgerService := services.NewLedgerService(db)
	userService := services.NewUserService(db, appClient, ledgerService)
	inviteService := services.NewInviteService(db, ledgerService, cfg.App.InviteAcceptWindow, cfg.App.InviteCodesPerUser)
	taskService := services.NewTaskService(db, ledgerService)
	authService := services.NewAuthService(db, userService, inviteService)
	adminService := services.NewAdminService(db, ledgerService)

	// Seed the task catalog
	if err := taskService.SeedDefaultTasks(); err != nil {
		log.Fatalf("Failed to seed tasks: %v", err)
	}

	// Wallet binding: signed deep-link tokens + Solana RPC
	tokenIssuer := wallet.NewTokenIssuer(cfg.App.BindingTokenSecret, 10*time.Minute)
	solanaClient := wallet.NewSolanaClient(cfg.Solana.Network)
	walletService := wallet.NewService(db, solanaClient, tokenIssuer, cfg.Solana.DeepLinkURL)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, oauthProvider)
	userHandler := handlers.NewUserHandler(userService, ledgerService, adminService)
	inviteHandler := handlers.NewInviteHandler(inviteService)
	taskHandler := handlers.NewTaskHandler(taskService)
	walletHandler := handlers.NewWalletHandler(walletService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Start profile refresh job
	refreshJob := jobs.NewProfileRefreshJob(userService, cfg.App.ProfileRefreshEvery)
	refreshJob.Start(cfg.App.ProfileRefreshEvery)
	log.Println("Profile refresh job started")

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
		authRoutes.GET("/twitter/login", authHandler.TwitterLogin)
		authRoutes.GET("/twitter/callback", authHandler.TwitterCallback)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public leaderboard
	router.GET("/api/leaderboard", userHandler.GetLeaderboard)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// User endpoints
		userRoutes := api.Group("/user")
		{
			userRoutes.GET("/profile", userHandler.GetProfile)
			userRoutes.GET("/score", userHandler.GetScore)
			userRoutes.POST("/score/refresh", userHandler.RefreshScore)
			userRoutes.GET("/transactions", userHandler.GetTransactions)
		}

		// Invite endpoints
		api.GET("/invite/codes", inviteHandler.GetInviteCodes)
		api.POST("/invite/accept", inviteHandler.AcceptInvite)
		api.GET("/invite/referrals", inviteHandler.GetReferrals)

		// Task endpoints
		api.GET("/tasks", taskHandler.GetTasks)
		api.POST("/tasks/claim", taskHandler.ClaimTask)
		api.POST("/tasks/checkin", taskHandler.DailyCheckin)

		// Wallet endpoints
		api.GET("/wallet/binding-link", walletHandler.GetBindingLink)
		api.POST("/wallet/bind", walletHandler.BindWallet)
		api.GET("/wallet", walletHandler.GetWallet)
		api.DELETE("/wallet", walletHandler.UnbindWallet)
		api.POST("/wallet/refresh", walletHandler.RefreshWalletBalance)
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(adminHandler.AdminMiddleware())
	{
		admin.GET("/dashboard", adminHandler.GetDashboard)
		admin.GET("/logs", adminHandler.GetAdminLogs)

		// User management
		admin.GET("/users", adminHandler.GetUsers)
		admin.POST("/users/:id/resync", adminHandler.ResyncBalance)
		admin.POST("/users/restrict", adminHandler.RestrictUser)
		admin.DELETE("/users/restrictions/:id", adminHandler.RemoveRestriction)
		admin.GET("/users/:id/restrictions", adminHandler.GetUserRestrictions)
	}

	// Super-admin only
	superAdmin := router.Group("/api/admin")
	superAdmin.Use(auth.AuthMiddleware())
	superAdmin.Use(adminHandler.AdminMiddleware())
	superAdmin.Use(adminHandler.SuperAdminMiddleware())
	{
		superAdmin.POST("/users/promote", adminHandler.PromoteToAdmin)
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
		log.Printf("Twitter login: GET http://localhost:%s/auth/twitter/login", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
