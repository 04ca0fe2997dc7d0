// Package repositories provides data access layer implementations.
// It handles all database operations and data persistence logic.
package repositories

import (
	"fmt"
	"log"
	"os"
	"time"

	"merchantportal/internal/config"
	"merchantportal/internal/models"
	"merchantportal/internal/repositories/cache"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance used across the application.
var DB *gorm.DB
var CacheService *cache.CacheService

// InitDB opens Postgres and Redis and applies migrations.
func InitDB(cfg *config.Config) error {
	if err := initPostgres(cfg.DB); err != nil {
		return err
	}

	redisClient := cache.NewRedisClient(&cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	CacheService = cache.NewCacheService(redisClient, cfg.Redis.TTL)

	return Migrate(DB)
}

func initPostgres(cfg config.DBConfig) error {
	// Configure GORM logger to ignore "record not found" errors
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  !config.IsProduction(),
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{Logger: newLogger})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	DB = db
	return nil
}

// Migrate creates tables and the partial indexes GORM tags cannot express.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.MerchantParent{},
		&models.MerchantStore{},
		&models.RegistrationProgress{},
		&models.DeviceSession{},
		&models.Order{},
		&models.OrderItem{},
		&models.MenuItem{},
		&models.Offer{},
		&models.Ticket{},
		&models.TicketMessage{},
		&models.Payment{},
	)
	if err != nil {
		return err
	}

	statements := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_device_sessions_active_device
			ON device_sessions (device_id) WHERE is_active`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_registration_progress_open_parent
			ON registration_progress (merchant_parent_id)
			WHERE store_id IS NULL AND registration_status <> 'COMPLETED'`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// Close releases the Postgres pool and the Redis client.
func Close(zl *zap.Logger) {
	if DB != nil {
		if sqlDB, err := DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				zl.Warn("⚠️ Failed to close database connection", zap.Error(err))
			}
		}
	}
	if CacheService != nil {
		if err := CacheService.Close(); err != nil {
			zl.Warn("⚠️ Failed to close Redis connection", zap.Error(err))
		}
	}
}
