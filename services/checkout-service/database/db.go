package database

import (
	"context"
	"fmt"
	"time"

	"github.com/AI-zik/shoe-store-backend/services/checkout-service/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Options struct {
	Driver     string // "postgres" or "sqlite"
	DSN        string
	MaxRetries int
	RetryDelay time.Duration
}

// PostgresDSN builds a key/value libpq connection string.
func PostgresDSN(host, user, password, dbName, port, sslMode, timeZone string) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		host, user, password, dbName, port, sslMode, timeZone,
	)
}

// Connect opens the database, retrying while it comes up, and migrates the schema.
func Connect(opts Options, log *zap.Logger) (*gorm.DB, error) {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 10
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}

	var (
		db  *gorm.DB
		err error
	)
	for attempt := 1; attempt <= opts.MaxRetries; attempt++ {
		db, err = open(opts.Driver, opts.DSN)
		if err == nil {
			break
		}
		log.Warn("Database not ready, retrying",
			zap.String("driver", opts.Driver),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		time.Sleep(opts.RetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", opts.Driver, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("Connected to database", zap.String("driver", opts.Driver))
	return db, nil
}

// OpenSQLite opens an SQLite database with a single connection, for local runs and tests.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	db, err := open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Shoe{},
		&models.ShoeVariant{},
		&models.CartItem{},
		&models.Transaction{},
		&models.Purchase{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func open(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}

	var dialector gorm.Dialector
	switch driver {
	case "", "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, err
		}
		return db, nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// NewRedisClient parses redisURL and pings the server.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
