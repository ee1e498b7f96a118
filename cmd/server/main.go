package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	accountapp "github.com/cargomesh/backend/internal/application/account"
	billingapp "github.com/cargomesh/backend/internal/application/billing"
	ledgerapp "github.com/cargomesh/backend/internal/application/ledger"
	partnerapp "github.com/cargomesh/backend/internal/application/partner"
	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/cargomesh/backend/internal/infrastructure/auth"
	"github.com/cargomesh/backend/internal/infrastructure/cache"
	"github.com/cargomesh/backend/internal/infrastructure/config"
	"github.com/cargomesh/backend/internal/infrastructure/logger"
	"github.com/cargomesh/backend/internal/infrastructure/persistence"
	"github.com/cargomesh/backend/internal/interfaces/http/handler"
	"github.com/cargomesh/backend/internal/interfaces/http/middleware"
	"github.com/cargomesh/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			CargoMesh Billing API
//	@version		1.0
//	@description	Freight forwarding ledger and billing backend

//	@contact.name	API Support
//	@contact.url	https://github.com/cargomesh/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CargoMesh Billing Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	paymentMethodRepo := persistence.NewGormPaymentMethodRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	entryRepo := persistence.NewGormEntryRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	pointsRepo := persistence.NewGormCustomerPointsRepository(db.DB)
	partnerRepo := persistence.NewGormPartnerRepository(db.DB)
	partnerTxRepo := persistence.NewGormPartnerTransactionRepository(db.DB)

	// Unit of work for multi-aggregate postings
	uow := persistence.NewUnitOfWork(db)

	// Initialize application services
	accountService := accountapp.NewAccountService(uow, accountRepo, paymentMethodRepo, transactionRepo, log)
	transactionService := ledgerapp.NewTransactionService(uow, transactionRepo, entryRepo, accountRepo, paymentMethodRepo, invoiceRepo, log)
	orderService := billingapp.NewOrderService(uow, orderRepo, log)
	invoiceService := billingapp.NewInvoiceService(uow, invoiceRepo, orderRepo, pointsRepo, transactionRepo, cfg.Billing.PointValue, log)
	partnerService := partnerapp.NewPartnerService(uow, partnerRepo, partnerTxRepo, accountRepo, transactionRepo, log)

	// JWT validation and token revocation
	jwtService := auth.NewJWTService(cfg.JWT)
	var tokenBlacklist auth.TokenBlacklist
	if redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}); err != nil {
		log.Warn("Redis token blacklist unavailable, using in-memory fallback", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	} else {
		tokenBlacklist = redisBlacklist
	}

	// Idempotency store for replay-safe money postings
	idempotencyFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := idempotencyFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	idempotent := middleware.Idempotency(middleware.IdempotencyConfig{
		Store:  idempotencyStore,
		TTL:    cfg.Billing.IdempotencyTTL,
		Logger: log,
	})

	// Partner money movements are restricted to back-office roles. The
	// services enforce the same rule; the route gate rejects earlier.
	elevated := middleware.RequireRole(shared.RoleAdmin, shared.RoleOwner, shared.RoleMainBranch)

	// Initialize HTTP handlers
	accountHandler := handler.NewAccountHandler(accountService, transactionService)
	transactionHandler := handler.NewTransactionHandler(transactionService)
	orderHandler := handler.NewOrderHandler(orderService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	partnerHandler := handler.NewPartnerHandler(partnerService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		SkipPaths: []string{
			"/health",
			"/api/v1/ping",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Account routes (cash/bank/wallet accounts and payment methods)
	accountRoutes := router.NewDomainGroup("accounts", "/accounts")
	accountRoutes.POST("", accountHandler.Create)
	accountRoutes.GET("", accountHandler.List)
	accountRoutes.GET("/:id", accountHandler.Get)
	accountRoutes.GET("/:id/balance", accountHandler.GetBalance)
	accountRoutes.GET("/:id/entries", accountHandler.ListEntries)
	accountRoutes.POST("/:id/adjust", idempotent, accountHandler.Adjust)
	accountRoutes.PATCH("/:id/active", accountHandler.SetActive)

	paymentMethodRoutes := router.NewDomainGroup("payment-methods", "/payment-methods")
	paymentMethodRoutes.POST("", accountHandler.CreatePaymentMethod)
	paymentMethodRoutes.GET("", accountHandler.ListPaymentMethods)

	// Ledger routes (double-entry transactions)
	transactionRoutes := router.NewDomainGroup("transactions", "/transactions")
	transactionRoutes.POST("", idempotent, transactionHandler.Create)
	transactionRoutes.GET("", transactionHandler.List)
	transactionRoutes.GET("/:id", transactionHandler.Get)
	transactionRoutes.DELETE("/:id", transactionHandler.Cancel)

	// Billing routes (freight orders and invoices)
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", orderHandler.Create)
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/:id", orderHandler.Get)
	orderRoutes.PUT("/:id", orderHandler.Update)

	invoiceRoutes := router.NewDomainGroup("invoices", "/invoices")
	invoiceRoutes.POST("", idempotent, invoiceHandler.Create)
	invoiceRoutes.GET("", invoiceHandler.List)
	invoiceRoutes.GET("/:id", invoiceHandler.Get)
	invoiceRoutes.PUT("/:id", invoiceHandler.Update)
	invoiceRoutes.DELETE("/:id", invoiceHandler.Void)
	invoiceRoutes.POST("/:id/regenerate", invoiceHandler.Regenerate)

	// Partner ledger routes (shippers, consignees, agents)
	partnerRoutes := router.NewDomainGroup("partners", "/partners")
	partnerRoutes.POST("", partnerHandler.Create)
	partnerRoutes.GET("", partnerHandler.List)
	partnerRoutes.GET("/:id", partnerHandler.Get)
	partnerRoutes.PATCH("/:id/active", partnerHandler.SetActive)
	partnerRoutes.POST("/:id/transactions", elevated, idempotent, partnerHandler.RecordTransaction)
	partnerRoutes.GET("/:id/transactions", partnerHandler.ListTransactions)
	partnerRoutes.DELETE("/transactions/:id", elevated, partnerHandler.VoidTransaction)

	// Register all domain groups
	r.Register(accountRoutes).
		Register(paymentMethodRoutes).
		Register(transactionRoutes).
		Register(orderRoutes).
		Register(invoiceRoutes).
		Register(partnerRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
