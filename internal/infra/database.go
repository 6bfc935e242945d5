package infra

import (
	"fmt"

	"github.com/Shikhar1504/Walmart-FullStacks-sub001/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx. Callers run
// RunMigrations separately so read-only tools can skip DDL.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations creates the schema. The collaborator tables (products,
// suppliers, orders) are owned by other services; they are migrated here too
// so a standalone deployment and the integration tests can seed them.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.PricingRecord{},
		&model.PriceHistory{},
		&model.Product{},
		&model.Supplier{},
		&model.Order{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement is guarded so re-running on a patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index for the derived-field refresh cron: it only scans
		// records carrying an expiration date.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_pricing_records_expiring') THEN
		    CREATE INDEX idx_pricing_records_expiring
		        ON pricing_records (expiration_date)
		        WHERE expiration_date IS NOT NULL;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
