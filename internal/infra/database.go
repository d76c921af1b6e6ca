package infra

import (
	"fmt"

	"stockbook/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for all tables, then applies idempotent SQL patches for the constraints GORM
// cannot express: CHECK guards on quantities and debt, and RESTRICT foreign
// keys on the ledger tables.
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

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates the schema. Also used by integration tests
// against a throwaway database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Product{},
		&model.StockMovement{},
		&model.Client{},
		&model.Payment{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Refund{},
		&model.RefundItem{},
		&model.Expense{},
		&model.User{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches adds the guards the stock and debt ledgers rely on as a
// last line of defense under concurrency. Every statement is guarded by an
// existence check so re-running on a patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// No CHECK on products.quantity: administrative adjustments may drive
		// stock negative on purpose. Sufficiency is enforced under row locks
		// in the sale path instead.
		{"chk_clients_debt_nonneg", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_clients_debt_nonneg') THEN
    ALTER TABLE clients ADD CONSTRAINT chk_clients_debt_nonneg CHECK (total_debt >= 0);
  END IF;
END $$`},
		{"chk_expenses_amount_positive", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_expenses_amount_positive') THEN
    ALTER TABLE expenses ADD CONSTRAINT chk_expenses_amount_positive CHECK (amount > 0);
  END IF;
END $$`},
		// Products referenced by ledger rows must not be deletable: retarget
		// the GORM-generated FKs to ON DELETE RESTRICT.
		{"restrict fk sale_items → products", `
DO $$ BEGIN
  IF EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_sale_items_product'
             AND confdeltype <> 'r') THEN
    ALTER TABLE sale_items DROP CONSTRAINT fk_sale_items_product;
  END IF;
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_sale_items_product') THEN
    ALTER TABLE sale_items
      ADD CONSTRAINT fk_sale_items_product
      FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT;
  END IF;
END $$`},
		{"restrict fk stock_movements → products", `
DO $$ BEGIN
  IF EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_products_movements'
             AND confdeltype <> 'r') THEN
    ALTER TABLE stock_movements DROP CONSTRAINT fk_products_movements;
  END IF;
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_products_movements') THEN
    ALTER TABLE stock_movements
      ADD CONSTRAINT fk_products_movements
      FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE RESTRICT;
  END IF;
END $$`},
		{"restrict fk sales → clients", `
DO $$ BEGIN
  IF EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_sales_client'
             AND confdeltype <> 'r') THEN
    ALTER TABLE sales DROP CONSTRAINT fk_sales_client;
  END IF;
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_sales_client') THEN
    ALTER TABLE sales
      ADD CONSTRAINT fk_sales_client
      FOREIGN KEY (client_id) REFERENCES clients(id) ON DELETE RESTRICT;
  END IF;
END $$`},
		// Movement timestamps drive historical stock reconstruction.
		{"idx_stock_movements_created_at", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_stock_movements_created_at') THEN
    CREATE INDEX idx_stock_movements_created_at ON stock_movements (created_at);
  END IF;
END $$`},
		{"idx_expenses_created_at", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_expenses_created_at') THEN
    CREATE INDEX idx_expenses_created_at ON expenses (created_at);
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
