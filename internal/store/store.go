package store

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"purchase-order-relay-go/internal/config"
	"purchase-order-relay-go/internal/model"
)

// Repository persists the notification audit log.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository on an open database handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Open connects to the audit database, configures the pool and runs
// migrations.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormLogger := logger.New(
		logrus.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(mysql.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&model.NotificationLog{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logrus.Info("Audit database initialized")
	return db, nil
}

// Insert writes one notification attempt.
func (r *Repository) Insert(entry *model.NotificationLog) error {
	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to insert notification log: %w", err)
	}
	return nil
}

// List returns attempts, newest first.
func (r *Repository) List(limit, offset int) ([]model.NotificationLog, error) {
	var entries []model.NotificationLog
	result := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list notification logs: %w", result.Error)
	}
	return entries, nil
}

// CountByStatus returns how many attempts ended in the given status.
func (r *Repository) CountByStatus(status string) (int64, error) {
	var count int64
	result := r.db.Model(&model.NotificationLog{}).Where("status = ?", status).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to count notification logs: %w", result.Error)
	}
	return count, nil
}
