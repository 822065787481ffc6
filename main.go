package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"vinoteca/internal/auth"
	"vinoteca/internal/cache"
	"vinoteca/internal/config"
	"vinoteca/internal/handlers"
	"vinoteca/internal/logging"
	"vinoteca/internal/middleware"
	"vinoteca/internal/models"
	"vinoteca/internal/repositories"
	"vinoteca/internal/schema"
	"vinoteca/internal/services"
	"vinoteca/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Env)
	slog.SetDefault(logger)

	// --- Database ---
	db, err := openDatabase(cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	reg := schema.NewRegistry()
	models.Register(reg)
	if err := db.AutoMigrate(reg.Models()...); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// --- Read cache (optional) ---
	var store cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, read caching disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			store = cache.NewRedis(rdb, logger)
			defer rdb.Close()
		}
	}

	// --- Event publishing (optional) ---
	var events services.EventPublisher = services.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Exchange: cfg.EventsExchange}, logger)
		if err != nil {
			logger.Warn("rabbitmq unreachable, event publishing disabled", "error", err)
		} else {
			events = mqClient
			defer mqClient.Close()
		}
	}

	// --- Token verification ---
	pem, err := cfg.PublicKeyPEM()
	if err != nil {
		logger.Error("failed to load identity provider key", "error", err)
		os.Exit(1)
	}
	verifier, err := auth.NewVerifier(pem, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		logger.Error("failed to build token verifier", "error", err)
		os.Exit(1)
	}

	// --- Repositories and services ---
	wineRepo := repositories.NewGORMWineRepository(db, reg)
	supplierRepo := repositories.NewGORMSupplierRepository(db, reg)

	wineService := services.NewWineService(wineRepo, supplierRepo, reg, store, cfg.CacheTTL, events)
	supplierService := services.NewSupplierService(supplierRepo, reg, store, cfg.CacheTTL, events)
	importService := services.NewImportService(wineRepo, reg, store, events)
	uploadService, err := services.NewUploadService(cfg.UploadDir)
	if err != nil {
		logger.Error("failed to prepare upload directory", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	// --- HTTP server ---
	app := fiber.New(fiber.Config{
		AppName:   "vinoteca",
		BodyLimit: cfg.MaxUploadBytes,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(middleware.RequestLogger(logger))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		status, code := "ok", fiber.StatusOK
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			status, code = "degraded", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	apiV1 := app.Group("/api/v1")
	protected := apiV1.Group("", middleware.BearerAuth(verifier))

	handlers.NewWineHandler(wineService, importService, uploadService, reg).RegisterRoutes(protected)
	handlers.NewSupplierHandler(supplierService, reg).RegisterRoutes(protected)
	handlers.NewFilesHandler(uploadService).RegisterRoutes(protected)

	// --- Start and shut down gracefully ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			logger.Error("server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()
	logger.Info("server listening", "port", cfg.AppPort, "env", cfg.Env)

	<-quit
	logger.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("server stopped")
}

// openDatabase connects to postgres when DATABASE_URL is set and falls
// back to a local SQLite file otherwise.
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{TranslateError: true}
	if cfg.DatabaseURL != "" {
		return gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	}
	return gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
}
