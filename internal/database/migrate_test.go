package database_test

import (
	"testing"

	"delipos/internal/database"
	"delipos/internal/model"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openMemory(t)
	log := zap.NewNop()

	require.NoError(t, database.Migrate(db, log))
	require.NoError(t, database.Migrate(db, log))

	migrator := db.Migrator()
	for _, table := range []string{
		"users", "products", "clients", "client_transactions",
		"sales", "sale_details", "purchases", "purchase_details",
		"expenses", "losses", "stock_movements", "schema_migrations",
	} {
		require.True(t, migrator.HasTable(table), "missing table %s", table)
	}

	var count int64
	require.NoError(t, db.Table("schema_migrations").Count(&count).Error)
	require.EqualValues(t, 3, count)
}

func TestMigrateRebuildsLegacyPurchases(t *testing.T) {
	db := openMemory(t)

	// Old data files kept one product line inline on each purchase row.
	require.NoError(t, db.Exec(`
		CREATE TABLE purchases (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			supplier TEXT NOT NULL,
			product_id INTEGER,
			quantity DECIMAL(18,4),
			unit_cost DECIMAL(18,4),
			total DECIMAL(18,4) NOT NULL DEFAULT 0,
			iva DECIMAL(18,4) NOT NULL DEFAULT 0,
			shipping DECIMAL(18,4) NOT NULL DEFAULT 0,
			date DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)`).Error)
	require.NoError(t, db.Exec(`
		INSERT INTO purchases (supplier, product_id, quantity, unit_cost, total, iva, shipping, date)
		VALUES ('Legacy Supplier', 3, 4, 10, 46, 2, 4, '2024-05-01 10:00:00')`).Error)

	require.NoError(t, database.Migrate(db, zap.NewNop()))

	var lines []model.PurchaseLine
	require.NoError(t, db.Find(&lines).Error)
	require.Len(t, lines, 1)
	require.EqualValues(t, 1, lines[0].PurchaseID)
	require.EqualValues(t, 3, lines[0].ProductID)
	require.True(t, lines[0].Subtotal.Equal(lines[0].Quantity.Mul(lines[0].UnitCost)))
	require.True(t, lines[0].FreightShare.String() == "4", "freight share %s", lines[0].FreightShare)
	require.True(t, lines[0].TaxShare.String() == "2", "tax share %s", lines[0].TaxShare)

	require.False(t, db.Migrator().HasColumn(&model.Purchase{}, "product_id"))
}

func TestMigrateRebuildsLegacySales(t *testing.T) {
	db := openMemory(t)

	require.NoError(t, db.Exec(`
		CREATE TABLE sales (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			client_id INTEGER,
			product_id INTEGER,
			quantity DECIMAL(18,4),
			unit_price DECIMAL(18,4),
			total DECIMAL(18,4) NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'paid',
			payment_method VARCHAR(20) NOT NULL DEFAULT 'cash',
			created_at DATETIME,
			updated_at DATETIME
		)`).Error)
	require.NoError(t, db.Exec(`
		INSERT INTO sales (client_id, product_id, quantity, unit_price, total, status, payment_method)
		VALUES (NULL, 5, 2, 15, 30, 'paid', 'cash')`).Error)

	require.NoError(t, database.Migrate(db, zap.NewNop()))

	var lines []model.SaleLine
	require.NoError(t, db.Find(&lines).Error)
	require.Len(t, lines, 1)
	require.EqualValues(t, 1, lines[0].SaleID)
	require.EqualValues(t, 5, lines[0].ProductID)
	require.True(t, lines[0].Subtotal.String() == "30", "subtotal %s", lines[0].Subtotal)

	require.False(t, db.Migrator().HasColumn(&model.Sale{}, "product_id"))
}
