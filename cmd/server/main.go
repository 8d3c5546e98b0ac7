package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"investnest.backend/internal/config"
	"investnest.backend/internal/infrastructure/mail"
	"investnest.backend/internal/infrastructure/models"
	"investnest.backend/internal/infrastructure/repositories"
	"investnest.backend/internal/infrastructure/storage"
	"investnest.backend/internal/interfaces/http/handlers"
	"investnest.backend/internal/interfaces/http/middleware"
	"investnest.backend/internal/usecases"
	"investnest.backend/pkg/jwt"
	"investnest.backend/pkg/logger"
	"investnest.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis. The resend cooldown degrades to the persisted
	// last-sent timestamp when Redis is down, so startup continues.
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Warn(context.Background(), "Redis unavailable, resend cooldown falls back to the database", zap.Error(err))
	} else {
		logger.Info(context.Background(), "Redis initialized")
	}

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
		if err := db.AutoMigrate(&models.User{}, &models.Verification{}); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	verificationRepo := repositories.NewVerificationRepository(db)
	uow := repositories.NewUnitOfWork(db)

	// Initialize document storage
	var store storage.Store
	var localStore *storage.LocalStore
	switch cfg.Upload.Backend {
	case "s3":
		s3Store, err := storage.NewS3Store(context.Background(), storage.S3Config{
			Bucket:    cfg.Upload.S3Bucket,
			Region:    cfg.Upload.S3Region,
			Endpoint:  cfg.Upload.S3Endpoint,
			PublicURL: cfg.Upload.S3PublicURL,
			AccessKey: cfg.Upload.S3AccessKey,
			SecretKey: cfg.Upload.S3SecretKey,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize s3 storage: %w", err)
		}
		store = s3Store
	default:
		localStore, err = storage.NewLocalStore(cfg.Upload.Dir)
		if err != nil {
			return fmt.Errorf("failed to initialize local storage: %w", err)
		}
		store = localStore
	}

	// Initialize mailer
	var mailer mail.Mailer
	if cfg.Mail.Host != "" {
		mailer = mail.NewSMTPMailer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
	} else {
		log.Println("📭 No SMTP host configured, verification codes are logged instead")
		mailer = mail.LogMailer{}
	}

	// Initialize usecases
	cooldown := redis.NewCooldownStore("resend-code")
	authUsecase := usecases.NewAuthUsecase(userRepo, jwtService, mailer, cooldown, cfg.Verification.CodeTTL, cfg.Verification.ResendCooldown)
	verificationUsecase := usecases.NewVerificationUsecase(verificationRepo, store)
	adminUsecase := usecases.NewAdminUsecase(userRepo, verificationRepo, uow)

	// Session cookie settings. Production serves the SPA from another
	// origin, so the cookie must be Secure and SameSite=None there.
	cookieCfg := middleware.CookieConfig{
		MaxAge:   int(cfg.JWT.Expiry.Seconds()),
		Secure:   cfg.Server.Env == "production",
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.Server.Env == "production" {
		cookieCfg.SameSite = http.SameSiteNoneMode
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authUsecase, cookieCfg)
	verificationHandler := handlers.NewVerificationHandler(verificationUsecase, cfg.Upload.MaxSize)
	adminHandler := handlers.NewAdminHandler(adminUsecase)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	r.GET("/metrics", middleware.MetricsHandler())
	if localStore != nil {
		r.Static(storage.WebPrefix, localStore.Dir())
	}

	registerAPIRoutes(r, routeDeps{
		authHandler:         authHandler,
		verificationHandler: verificationHandler,
		adminHandler:        adminHandler,
		protect:             middleware.Protect(jwtService, userRepo, cookieCfg),
	})

	// Start server
	log.Printf("🚀 InvestNest Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
