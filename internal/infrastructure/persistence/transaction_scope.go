package persistence

import (
	"context"

	"github.com/mandibooks/backend/internal/application/uow"
	"github.com/mandibooks/backend/internal/domain/catalog"
	"github.com/mandibooks/backend/internal/domain/crate"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/mandibooks/backend/internal/domain/identity"
	"github.com/mandibooks/backend/internal/domain/inventory"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements uow.TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction. An error from fn, or a
// panic, rolls every write back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos uow.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Tenants() identity.TenantRepository {
	return NewGormTenantRepository(r.tx)
}

func (r *gormTransactionalRepositories) Vendors() partner.VendorRepository {
	return NewGormVendorRepository(r.tx)
}

func (r *gormTransactionalRepositories) Retailers() partner.RetailerRepository {
	return NewGormRetailerRepository(r.tx)
}

func (r *gormTransactionalRepositories) PartyTransactions() partner.PartyTransactionRepository {
	return NewGormPartyTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Items() catalog.ItemRepository {
	return NewGormItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) StockMovements() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *gormTransactionalRepositories) StockBalances() inventory.StockBalanceRepository {
	return NewGormStockBalanceRepository(r.tx)
}

func (r *gormTransactionalRepositories) CrateTransactions() crate.CrateTransactionRepository {
	return NewGormCrateTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Invoices() trade.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

func (r *gormTransactionalRepositories) Payments() finance.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) LedgerEntries() finance.LedgerEntryRepository {
	return NewGormLedgerEntryRepository(r.tx)
}

func (r *gormTransactionalRepositories) CashAccounts() finance.CashAccountRepository {
	return NewGormCashAccountRepository(r.tx)
}

func (r *gormTransactionalRepositories) BankAccounts() finance.BankAccountRepository {
	return NewGormBankAccountRepository(r.tx)
}

func (r *gormTransactionalRepositories) Expenses() finance.ExpenseRepository {
	return NewGormExpenseRepository(r.tx)
}

var (
	_ uow.TransactionScope          = (*GormTransactionScope)(nil)
	_ uow.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
