package database

import (
	"fmt"
	"time"

	"github.com/buildcraft-as/construct-api/internal/config"
	"github.com/buildcraft-as/construct-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewConnection creates a new database connection with connection pooling
func NewConnection(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(cfg.ConnectionString()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Name),
	)

	return db, nil
}

// Models returns every persisted model, in an order safe for migration
func Models() []interface{} {
	return []interface{}{
		&domain.Company{},
		&domain.User{},
		&domain.CompanyMembership{},
		&domain.Customer{},
		&domain.Project{},
		&domain.ProjectPhase{},
		&domain.ProjectNote{},
		&domain.Quote{},
		&domain.Invoice{},
		&domain.LineItem{},
		&domain.Payment{},
		&domain.Material{},
		&domain.MaterialUsage{},
		&domain.Supplier{},
		&domain.PurchaseOrder{},
		&domain.PurchaseOrderItem{},
		&domain.Equipment{},
		&domain.Subcontractor{},
		&domain.WorkOrder{},
		&domain.ChatRoom{},
		&domain.ChatMessage{},
		&domain.Attachment{},
		&domain.NumberSequence{},
		&domain.Notification{},
	}
}

// AutoMigrate runs schema migration for all models. Production schemas are
// managed by the goose migrations; this keeps development databases current.
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running auto-migration")

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}

	log.Info("auto-migration completed")
	return nil
}

// HealthCheck verifies the database connection is alive
func HealthCheck(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
