// Package main provides the main entry point for the Kusanagi influencer marketplace
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/Kusanagi/app/handlers"
	"github.com/amirphl/Kusanagi/app/middleware"
	"github.com/amirphl/Kusanagi/app/router"
	"github.com/amirphl/Kusanagi/app/scheduler"
	"github.com/amirphl/Kusanagi/app/services"
	businessflow "github.com/amirphl/Kusanagi/business_flow"
	"github.com/amirphl/Kusanagi/config"
	"github.com/amirphl/Kusanagi/models"
	"github.com/amirphl/Kusanagi/repository"
	"github.com/amirphl/Kusanagi/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Kusanagi application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	initializeLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Setup graceful shutdown
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeLogging routes the standard logger through a rotating file
// writer when file output is configured
func initializeLogging(cfg config.LoggingConfig) {
	if cfg.Output != "file" && cfg.Output != "both" {
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	} else {
		log.SetOutput(rotator)
	}

	if cfg.EnableCaller {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCache initializes the Redis client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeNotificationService initializes the notification service
func initializeNotificationService(cfg *config.ProductionConfig) services.NotificationService {
	var emailProvider services.EmailProvider
	if cfg.Email.Username != "" && cfg.Email.Password != "" {
		emailProvider = services.NewSMTPEmailProvider(
			cfg.Email.Host,
			cfg.Email.Port,
			cfg.Email.Username,
			cfg.Email.Password,
			cfg.Email.FromEmail,
		)
	} else {
		emailProvider = services.NewMockEmailProvider()
	}

	return services.NewNotificationService(emailProvider)
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Promote the configured operator account if it exists
	if err := ensureAdminUser(db, cfg.Admin); err != nil {
		return nil, err
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	influencerRepo := repository.NewInfluencerRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	proofRepo := repository.NewPurchaseProofRepository(db)
	submissionRepo := repository.NewPostSubmissionRepository(db)
	reviewRepo := repository.NewProductReviewRepository(db)
	payoutRepo := repository.NewPayoutRepository(db)
	clickRepo := repository.NewClickLogRepository(db)

	// Background sweep for time-driven campaign transitions
	campaignScheduler := scheduler.NewCampaignScheduler(campaignRepo, log.Default(), cfg.App.SchedulerInterval)
	stopFuncs = append(stopFuncs, campaignScheduler.Start(context.Background()))

	// Initialize services
	notificationService := initializeNotificationService(cfg)

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	// Ownership and role checks shared by all flows
	guard := businessflow.NewAccessControl(userRepo, brandRepo, influencerRepo)

	// Initialize flows
	authFlow := businessflow.NewAuthFlow(
		userRepo,
		brandRepo,
		influencerRepo,
		auditRepo,
		tokenService,
		db,
	)

	campaignFlow := businessflow.NewCampaignFlow(
		guard,
		campaignRepo,
		assignmentRepo,
		auditRepo,
		db,
	)

	applicationFlow := businessflow.NewApplicationFlow(
		guard,
		campaignRepo,
		applicationRepo,
		assignmentRepo,
		userRepo,
		auditRepo,
		notificationService,
		db,
	)

	assignmentFlow := businessflow.NewAssignmentFlow(
		guard,
		assignmentRepo,
		campaignRepo,
		clickRepo,
		auditRepo,
		rc,
		cfg.App.BaseURL,
	)

	purchaseProofFlow := businessflow.NewPurchaseProofFlow(
		guard,
		assignmentRepo,
		campaignRepo,
		proofRepo,
		payoutRepo,
		userRepo,
		auditRepo,
		notificationService,
		db,
	)

	postSubmissionFlow := businessflow.NewPostSubmissionFlow(
		guard,
		assignmentRepo,
		campaignRepo,
		submissionRepo,
		payoutRepo,
		userRepo,
		auditRepo,
		notificationService,
		db,
	)

	productReviewFlow := businessflow.NewProductReviewFlow(
		guard,
		assignmentRepo,
		campaignRepo,
		reviewRepo,
		payoutRepo,
		userRepo,
		auditRepo,
		notificationService,
		db,
	)

	payoutFlow := businessflow.NewPayoutFlow(
		guard,
		payoutRepo,
		assignmentRepo,
		campaignRepo,
		userRepo,
		auditRepo,
		notificationService,
		db,
	)

	redirectFlow := businessflow.NewRedirectFlow(
		assignmentRepo,
		campaignRepo,
		clickRepo,
		auditRepo,
		rc,
		cfg.App.IPHashSalt,
	)

	adminFlow := businessflow.NewAdminFlow(
		guard,
		userRepo,
		brandRepo,
		influencerRepo,
		campaignRepo,
		assignmentRepo,
		proofRepo,
		payoutRepo,
		clickRepo,
		auditRepo,
		notificationService,
		db,
	)

	// Initialize handlers
	h := router.Handlers{
		Auth:          handlers.NewAuthHandler(authFlow),
		Campaign:      handlers.NewCampaignHandler(campaignFlow),
		Application:   handlers.NewApplicationHandler(applicationFlow),
		Assignment:    handlers.NewAssignmentHandler(assignmentFlow),
		PurchaseProof: handlers.NewPurchaseProofHandler(purchaseProofFlow),
		Post:          handlers.NewPostSubmissionHandler(postSubmissionFlow),
		ProductReview: handlers.NewProductReviewHandler(productReviewFlow),
		Payout:        handlers.NewPayoutHandler(payoutFlow),
		Redirect:      handlers.NewRedirectHandler(redirectFlow),
		Admin:         handlers.NewAdminHandler(adminFlow),
	}

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Initialize router
	appRouter := router.NewFiberRouter(h, authMiddleware, cfg.Security.AllowedOrigins)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}

// ensureAdminUser promotes the account matching ADMIN_EMAIL to an active
// admin. The account must already exist, signup is the only way accounts
// are created.
func ensureAdminUser(db *gorm.DB, cfg config.AdminConfig) error {
	if cfg.Email == "" {
		return nil
	}

	userRepo := repository.NewUserRepository(db)

	user, err := userRepo.ByEmail(context.Background(), cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to look up admin user: %w", err)
	}
	if user == nil {
		log.Printf("Admin account %s not registered yet, skipping promotion", cfg.Email)
		return nil
	}
	if user.Role == models.UserRoleAdmin && user.Status == models.UserStatusActive {
		return nil
	}

	user.Role = models.UserRoleAdmin
	user.Status = models.UserStatusActive
	user.UpdatedAt = utils.ToPtr(utils.UTCNow())
	if err := userRepo.Update(context.Background(), user); err != nil {
		return fmt.Errorf("failed to promote admin user: %w", err)
	}

	log.Printf("Promoted %s to admin", cfg.Email)
	return nil
}
