package database

import (
	"fmt"
	"time"

	"delipos/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// schemaMigration tracks which migration versions have been applied, so the
// bootstrap is a version-numbered sequence run once instead of a pile of
// try-and-ignore alters.
type schemaMigration struct {
	Version   int `gorm:"primaryKey"`
	Name      string
	AppliedAt time.Time
}

func (schemaMigration) TableName() string { return "schema_migrations" }

type migration struct {
	version int
	name    string
	run     func(db *gorm.DB) error
}

var migrations = []migration{
	{1, "create core tables", createCoreTables},
	{2, "additive columns", addColumns},
	{3, "rebuild legacy line tables", rebuildLegacyTables},
}

// Migrate applies all pending migrations, each inside its own transaction.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(&schemaMigration{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	for _, m := range migrations {
		var count int64
		if err := db.Model(&schemaMigration{}).Where("version = ?", m.version).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check migration %d: %w", m.version, err)
		}
		if count > 0 {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.run(tx); err != nil {
				return err
			}
			return tx.Create(&schemaMigration{Version: m.version, Name: m.name, AppliedAt: time.Now()}).Error
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
		log.Info("migration applied", zap.Int("version", m.version), zap.String("name", m.name))
	}
	return nil
}

func createCoreTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Client{},
		&model.ClientTransaction{},
		&model.Sale{},
		&model.SaleLine{},
		&model.Purchase{},
		&model.PurchaseLine{},
		&model.Expense{},
		&model.Loss{},
		&model.StockMovement{},
	)
}

// addColumns covers data files created before these columns existed. Every
// add is guarded by HasColumn, so re-running is a no-op.
func addColumns(db *gorm.DB) error {
	additions := []struct {
		model  interface{}
		column string
	}{
		{&model.Client{}, "notes"},
		{&model.Client{}, "credit_limit"},
		{&model.Sale{}, "notes"},
		{&model.Sale{}, "user_id"},
		{&model.Purchase{}, "invoice_number"},
		{&model.Purchase{}, "user_id"},
		{&model.PurchaseLine{}, "freight_share"},
		{&model.PurchaseLine{}, "tax_share"},
	}
	for _, add := range additions {
		if db.Migrator().HasColumn(add.model, add.column) {
			continue
		}
		if err := db.Migrator().AddColumn(add.model, add.column); err != nil {
			return fmt.Errorf("failed to add column %s: %w", add.column, err)
		}
	}
	return nil
}

// rebuildLegacyTables is the one-shot rebuild of data files where purchases
// and sales carried their product line inline (one row per line). Line data
// is copied into the detail tables, then the inline columns are dropped.
func rebuildLegacyTables(db *gorm.DB) error {
	migrator := db.Migrator()

	if migrator.HasTable("purchases") && migrator.HasColumn(&model.Purchase{}, "product_id") {
		if err := db.Exec(`
			INSERT INTO purchase_details (purchase_id, product_id, quantity, unit_cost, subtotal, freight_share, tax_share)
			SELECT id, product_id, quantity, unit_cost, quantity * unit_cost, shipping, iva
			FROM purchases WHERE product_id IS NOT NULL`).Error; err != nil {
			return fmt.Errorf("failed to copy legacy purchase lines: %w", err)
		}
		for _, column := range []string{"product_id", "quantity", "unit_cost"} {
			if err := migrator.DropColumn(&model.Purchase{}, column); err != nil {
				return fmt.Errorf("failed to drop legacy purchases.%s: %w", column, err)
			}
		}
	}

	if migrator.HasTable("sales") && migrator.HasColumn(&model.Sale{}, "product_id") {
		if err := db.Exec(`
			INSERT INTO sale_details (sale_id, product_id, quantity, unit_price, subtotal)
			SELECT id, product_id, quantity, unit_price, quantity * unit_price
			FROM sales WHERE product_id IS NOT NULL`).Error; err != nil {
			return fmt.Errorf("failed to copy legacy sale lines: %w", err)
		}
		for _, column := range []string{"product_id", "quantity", "unit_price"} {
			if err := migrator.DropColumn(&model.Sale{}, column); err != nil {
				return fmt.Errorf("failed to drop legacy sales.%s: %w", column, err)
			}
		}
	}

	return nil
}
