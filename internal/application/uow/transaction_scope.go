package uow

import (
	"context"

	"github.com/mandibooks/backend/internal/domain/catalog"
	"github.com/mandibooks/backend/internal/domain/crate"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/mandibooks/backend/internal/domain/identity"
	"github.com/mandibooks/backend/internal/domain/inventory"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/trade"
)

// TransactionScope provides transactional access to the bookkeeping
// repositories. Every repository handed to fn shares one database
// transaction, committed when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
//
// Rows that carry running balances (invoices, parties, items, stock balances,
// cash and bank accounts) are read with their ForUpdate finders and written
// back with SaveWithLock. Operations lock in a fixed order to avoid deadlocks:
// invoice, party, items (sorted by id), stock balances, pool account.
type TransactionalRepositories interface {
	Tenants() identity.TenantRepository
	Vendors() partner.VendorRepository
	Retailers() partner.RetailerRepository
	PartyTransactions() partner.PartyTransactionRepository
	Items() catalog.ItemRepository
	StockMovements() inventory.StockMovementRepository
	StockBalances() inventory.StockBalanceRepository
	CrateTransactions() crate.CrateTransactionRepository
	Invoices() trade.InvoiceRepository
	Payments() finance.PaymentRepository
	LedgerEntries() finance.LedgerEntryRepository
	CashAccounts() finance.CashAccountRepository
	BankAccounts() finance.BankAccountRepository
	Expenses() finance.ExpenseRepository
}
