package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/rxdesk/rxdesk/internal/config"
	"github.com/rxdesk/rxdesk/internal/domain"
	"github.com/rxdesk/rxdesk/internal/domain/order"
	"github.com/rxdesk/rxdesk/internal/domain/prescription"
	"github.com/rxdesk/rxdesk/internal/domain/reminder"
	"github.com/rxdesk/rxdesk/internal/domain/stock"
)

func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
		PrepareStmt:                              true,
		DisableForeignKeyConstraintWhenMigrating: false,
		DisableAutomaticPing:                     false,
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: false,
	}), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	start := time.Now()

	schemas := []string{"pharmacy", "auth", "audit"} // logical namespace
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.UserProfile{},
		&domain.OrganizationSettings{},
		&domain.NotificationSettings{},
		&domain.AuditLog{},
		&prescription.Prescription{},
		&order.CustomerOrder{},
		&stock.StockItem{},
		&stock.OrderTodo{},
		&stock.DeliveryLog{},
		&reminder.Event{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("creating indexes: %w", err)
	}

	log.Info("migrations completed", zap.Duration("duration", time.Since(start)))
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		query string
	}{
		{
			name:  "idx_prescriptions_open",
			query: `CREATE INDEX IF NOT EXISTS idx_prescriptions_open ON pharmacy.prescriptions (pharmacy_id, status, date_created) WHERE deleted_at IS NULL AND status <> 'collected'`,
		},
		{
			name:  "idx_prescriptions_renewal",
			query: `CREATE INDEX IF NOT EXISTS idx_prescriptions_renewal ON pharmacy.prescriptions (pharmacy_id, renewal_due_date) WHERE deleted_at IS NULL AND renewed_at IS NULL AND renewal_due_date IS NOT NULL`,
		},
		{
			name:  "idx_customer_orders_waiting",
			query: `CREATE INDEX IF NOT EXISTS idx_customer_orders_waiting ON pharmacy.customer_orders (pharmacy_id, status, arrived_at) WHERE deleted_at IS NULL AND status = 'ready_for_collection'`,
		},
		{
			name:  "idx_stock_items_low",
			query: `CREATE INDEX IF NOT EXISTS idx_stock_items_low ON pharmacy.stock_items (pharmacy_id, name) WHERE deleted_at IS NULL AND current_stock <= minimum_stock`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	return nil
}
