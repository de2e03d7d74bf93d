package persistence

import (
	"fmt"

	"github.com/mandibooks/backend/internal/domain/catalog"
	"github.com/mandibooks/backend/internal/domain/crate"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/mandibooks/backend/internal/domain/identity"
	"github.com/mandibooks/backend/internal/domain/inventory"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// Models lists every persisted entity in dependency order
func Models() []any {
	return []any{
		&identity.Tenant{},
		&partner.Vendor{},
		&partner.Retailer{},
		&partner.PartyTransaction{},
		&catalog.Item{},
		&inventory.StockMovement{},
		&inventory.StockBalance{},
		&trade.Invoice{},
		&trade.InvoiceItem{},
		&crate.CrateTransaction{},
		&finance.CashAccount{},
		&finance.BankAccount{},
		&finance.LedgerEntry{},
		&finance.Payment{},
		&finance.Expense{},
	}
}

// uniqueIndexes back the per-tenant uniqueness rules that the services
// check first. The SQL is valid on PostgreSQL and SQLite.
var uniqueIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_vendors_tenant_name ON vendors (tenant_id, LOWER(name))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_retailers_tenant_name ON retailers (tenant_id, LOWER(name))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_stock_balances_tenant_item ON stock_balances (tenant_id, item_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_invoices_tenant_number ON invoices (tenant_id, invoice_number)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_cash_accounts_tenant ON cash_accounts (tenant_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_bank_accounts_tenant_number ON bank_accounts (tenant_id, account_number)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_ledger_entries_pool_sequence ON ledger_entries (tenant_id, book, account_id, sequence)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_payments_tenant_idempotency_key ON payments (tenant_id, idempotency_key) WHERE idempotency_key IS NOT NULL`,
}

// AutoMigrate creates or updates the schema from the entity definitions.
// It serves SQLite and development databases; PostgreSQL deployments run
// the versioned scripts through cmd/migrate.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, stmt := range uniqueIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
