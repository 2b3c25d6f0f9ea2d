package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"serve-cafe/internal/auth"
	"serve-cafe/internal/config"
	"serve-cafe/internal/database"
	"serve-cafe/internal/handlers"
	"serve-cafe/internal/services"
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

	// Initialize services
	referralService := services.NewReferralService(db)
	walletService := services.NewWalletService(db)
	ledgerService := services.NewLedgerService(db, walletService)
	commissionService := services.NewCommissionService(db, ledgerService, walletService, referralService, cfg.Commission.MaxDepth)
	purchaseService := services.NewPurchaseService(db, ledgerService, walletService, commissionService)
	membershipService := services.NewMembershipService(db, ledgerService, walletService, commissionService)
	withdrawalService := services.NewWithdrawalService(db, ledgerService, walletService, cfg.Commission.ConflictRetry)
	roleService := services.NewRoleService(db)
	menuService := services.NewMenuService(db)
	userService := services.NewUserService(db)
	authService := services.NewAuthService(db, referralService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	referralHandler := handlers.NewReferralHandler(referralService, userService, commissionService, cfg.Commission.MaxDepth)
	walletHandler := handlers.NewWalletHandler(walletService, ledgerService, purchaseService)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService, membershipService)
	withdrawalHandler := handlers.NewWithdrawalHandler(withdrawalService)
	menuHandler := handlers.NewMenuHandler(menuService)
	adminHandler := handlers.NewAdminHandler(db, roleService, userService, ledgerService, walletService)

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
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
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public menu
	router.GET("/api/menu", menuHandler.GetMenu)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// Referral endpoints
		api.GET("/referral/code", referralHandler.GetReferralCode)
		api.POST("/referral/apply", referralHandler.ApplyReferralCode)
		api.POST("/referral/change", referralHandler.ChangeReferral)
		api.GET("/referral/stats", referralHandler.GetReferralStats)
		api.GET("/referral/referrals", referralHandler.GetReferrals)
		api.GET("/referral/ancestors", referralHandler.GetAncestors)
		api.GET("/referral/commissions", referralHandler.GetCommissions)

		// Wallet endpoints
		api.GET("/wallet/balance", walletHandler.GetBalance)
		api.GET("/wallet/transactions", walletHandler.GetTransactions)
		api.POST("/wallet/deposit", walletHandler.Deposit)
		api.POST("/wallet/reconcile", walletHandler.Reconcile)

		// Purchase + membership endpoints
		api.POST("/purchases", purchaseHandler.RecordPurchase)
		api.GET("/packages", purchaseHandler.ListOffers)
		api.POST("/packages/purchase", purchaseHandler.PurchasePackage)

		// Withdrawal endpoints
		api.POST("/withdrawals", withdrawalHandler.RequestWithdrawal)
		api.GET("/withdrawals", withdrawalHandler.GetWithdrawals)

		// Admin endpoints, guarded per capability
		admin := api.Group("/admin")
		{
			admin.POST("/roles", handlers.RequirePermission(roleService, "roles.manage"), adminHandler.CreateRole)
			admin.GET("/roles", handlers.RequirePermission(roleService, "roles.manage"), adminHandler.ListRoles)
			admin.POST("/roles/assign", handlers.RequirePermission(roleService, "roles.manage"), adminHandler.AssignRole)

			admin.POST("/branches", handlers.RequirePermission(roleService, "branches.manage"), adminHandler.CreateBranch)
			admin.GET("/branches", handlers.RequirePermission(roleService, "branches.manage"), adminHandler.ListBranches)

			admin.POST("/packages", handlers.RequirePermission(roleService, "packages.manage"), adminHandler.CreatePackageOffer)

			admin.POST("/rates", handlers.RequirePermission(roleService, "rates.manage"), adminHandler.UpsertCommissionRate)
			admin.GET("/rates", handlers.RequirePermission(roleService, "rates.manage"), adminHandler.ListCommissionRates)

			admin.GET("/users", handlers.RequirePermission(roleService, "users.view"), adminHandler.ListUsers)
			admin.PATCH("/users/:id/active", handlers.RequirePermission(roleService, "users.manage"), adminHandler.SetUserActive)

			admin.POST("/ledger/:id/settle", handlers.RequirePermission(roleService, "ledger.settle"), adminHandler.SettleEntry)
			admin.POST("/ledger/:id/fail", handlers.RequirePermission(roleService, "ledger.settle"), adminHandler.FailEntry)
			admin.POST("/wallets/:id/repair", handlers.RequirePermission(roleService, "wallets.view"), adminHandler.RepairWallet)

			admin.POST("/menu/categories", handlers.RequirePermission(roleService, "menu.manage"), menuHandler.CreateCategory)
			admin.POST("/menu/items", handlers.RequirePermission(roleService, "menu.manage"), menuHandler.CreateItem)
			admin.PUT("/menu/items/:id/price", handlers.RequirePermission(roleService, "menu.manage"), menuHandler.RepriceItem)
			admin.PATCH("/menu/items/:id/availability", handlers.RequirePermission(roleService, "menu.manage"), menuHandler.SetItemAvailability)
		}
	}

	// Start server
	port := cfg.Server.Port
	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
