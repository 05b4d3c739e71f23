package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/careops/clinicflow/internal/config"
	"github.com/careops/clinicflow/internal/domain"
	"github.com/careops/clinicflow/internal/domain/billing"
	"github.com/careops/clinicflow/internal/domain/patient"
	"github.com/careops/clinicflow/internal/domain/pharmacy"
	"github.com/careops/clinicflow/internal/domain/staff"
	"github.com/careops/clinicflow/internal/domain/visit"
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

	schemas := []string{"clinical", "pharmacy", "finance", "auth", "audit"} // logical namespace
	for _, schema := range schemas {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return fmt.Errorf("creating schema %s: %w", schema, err)
		}
	}

	models := []any{
		&domain.User{},
		&domain.AuditLog{},
		&staff.StaffProfile{},
		&patient.Patient{},
		&visit.Visit{},
		&pharmacy.Drug{},
		&pharmacy.Inventory{},
		&pharmacy.Prescription{},
		&pharmacy.PrescriptionItem{},
		&billing.Invoice{},
		&billing.Payment{},
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
			name:  "idx_visits_open",
			query: `CREATE INDEX IF NOT EXISTS idx_visits_open ON clinical.visits (patient_id, visit_time) WHERE status = 'open'`,
		},
		{
			name:  "idx_inventory_low_stock",
			query: `CREATE INDEX IF NOT EXISTS idx_inventory_low_stock ON pharmacy.inventory (drug_id) WHERE quantity <= warning_level`,
		},
		{
			name:  "idx_invoices_unpaid",
			query: `CREATE INDEX IF NOT EXISTS idx_invoices_unpaid ON finance.invoices (patient_id, issued_at) WHERE status = 'unpaid'`,
		},
		{
			name:  "idx_prescriptions_pending",
			query: `CREATE INDEX IF NOT EXISTS idx_prescriptions_pending ON pharmacy.prescriptions (status, created_at) WHERE status IN ('draft', 'issued')`,
		},
	}

	for _, idx := range indexes {
		if err := db.Exec(idx.query).Error; err != nil {
			return fmt.Errorf("creating index %s: %w", idx.name, err)
		}
	}

	// Stock can never go negative regardless of application bugs.
	constraint := `DO $$ BEGIN
		ALTER TABLE pharmacy.inventory ADD CONSTRAINT chk_inventory_quantity_nonnegative CHECK (quantity >= 0);
	EXCEPTION WHEN duplicate_object THEN NULL; END $$`
	if err := db.Exec(constraint).Error; err != nil {
		return fmt.Errorf("creating inventory check constraint: %w", err)
	}

	return nil
}
