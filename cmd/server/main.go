package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/docregistry/internal/api"
	"github.com/docregistry/internal/authz"
	"github.com/docregistry/internal/config"
	"github.com/docregistry/internal/db"
	"github.com/docregistry/internal/db/models"
	"github.com/docregistry/internal/loginguard"
	"github.com/docregistry/internal/services"
	"github.com/docregistry/pkg/logger"
)

func main() {
	cfg := config.InitializeDefaultConfig()

	zapLogger, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()
	zap.ReplaceGlobals(zapLogger)

	config.LogConfig(zapLogger)

	database, err := db.Initialize(cfg)
	if err != nil {
		zapLogger.Fatal("Failed to initialize database", zap.Error(err))
	}

	if err := seedDatabase(database, zapLogger); err != nil {
		zapLogger.Fatal("Failed to seed database", zap.Error(err))
	}

	tracker := loginguard.NewTracker(buildAttemptStore(cfg, zapLogger), loginguard.Limits{
		ThrottleThreshold: cfg.RateLimit.ThrottleThreshold,
		BlockThreshold:    cfg.RateLimit.BlockThreshold,
		Window:            cfg.RateLimit.Window,
		BlockDuration:     cfg.RateLimit.BlockDuration,
	}, zapLogger)

	userService := services.NewUserService(database, zapLogger)
	documentService := services.NewDocumentService(database, zapLogger)
	accessService := services.NewAccessService(documentService, tracker, zapLogger)
	tokenService := services.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	router := api.NewRouter(zapLogger, cfg, userService, documentService, accessService, tokenService, database)
	router.SetupRoutes()

	go func() {
		if err := router.Run(":" + cfg.Server.Port); err != nil {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()
	zapLogger.Info("Server started", zap.String("port", cfg.Server.Port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	if sqlDB, err := database.DB(); err == nil {
		sqlDB.Close()
	}
	zapLogger.Info("Server gracefully stopped")
}

// buildAttemptStore selects the login attempt store. With a Redis address
// configured the record survives restarts and is shared across replicas;
// otherwise each instance keeps its own in-memory view.
func buildAttemptStore(cfg *config.Configuration, zapLogger *zap.Logger) loginguard.Store {
	if cfg.RateLimit.RedisAddr == "" {
		zapLogger.Info("Using in-memory login attempt store")
		return loginguard.NewMemoryStore()
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RateLimit.RedisAddr})
	zapLogger.Info("Using redis login attempt store", zap.String("addr", cfg.RateLimit.RedisAddr))
	// Keep stale records around for twice the window so lazy expiry still
	// observes them.
	return loginguard.NewRedisStore(client, 2*cfg.RateLimit.Window)
}

func seedDatabase(database *gorm.DB, zapLogger *zap.Logger) error {
	var count int64
	database.Model(&models.User{}).Count(&count)
	if count > 0 {
		zapLogger.Info("Database already seeded, skipping")
		return nil
	}
	zapLogger.Info("Seeding database with initial data")

	departments := []models.Department{
		{Name: "Operations"},
		{Name: "Intelligence"},
		{Name: "Logistics"},
	}
	if err := database.Create(&departments).Error; err != nil {
		return err
	}

	units := []models.Unit{
		{Name: "Ministry of Interior", Address: "1 Central Square"},
		{Name: "Regional Command North", Address: "14 Harbor Road"},
		{Name: "National Archive", Address: "3 Archive Lane"},
	}
	if err := database.Create(&units).Error; err != nil {
		return err
	}

	// Password for all seeded accounts: "changeme-on-first-login".
	const seedHash = "$2a$10$N9qo8uLOickgx2ZMRZoMye1VdLSHLOsh9uJ7d5mbRzLjT6Z0aXGCa"

	users := []models.User{
		{Username: "director", Email: "director@docregistry.gov", PasswordHash: seedHash, Role: authz.RoleDirector, Admin: true, ActiveStatus: true},
		{Username: "deputy.director", Email: "deputy.director@docregistry.gov", PasswordHash: seedHash, Role: authz.RoleDeputyDirector, ActiveStatus: true},
		{Username: "ops.head", Email: "ops.head@docregistry.gov", PasswordHash: seedHash, Role: authz.RoleDepartmentHead, DepartmentID: departments[0].ID, ActiveStatus: true},
		{Username: "ops.deputy", Email: "ops.deputy@docregistry.gov", PasswordHash: seedHash, Role: authz.RoleDeputyDepartmentHead, DepartmentID: departments[0].ID, ActiveStatus: true},
		{Username: "ops.clerk", Email: "ops.clerk@docregistry.gov", PasswordHash: seedHash, Role: authz.RoleStaff, DepartmentID: departments[0].ID, ActiveStatus: true},
		{Username: "intel.head", Email: "intel.head@docregistry.gov", PasswordHash: seedHash, Role: authz.RoleDepartmentHead, DepartmentID: departments[1].ID, ActiveStatus: true},
		{Username: "intel.clerk", Email: "intel.clerk@docregistry.gov", PasswordHash: seedHash, Role: authz.RoleStaff, DepartmentID: departments[1].ID, ActiveStatus: true},
	}
	if err := database.Create(&users).Error; err != nil {
		return err
	}
	zapLogger.Info("Created initial users", zap.Int("count", len(users)))

	zapLogger.Info("Database seeding completed successfully")
	return nil
}
