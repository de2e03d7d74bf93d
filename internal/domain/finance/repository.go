package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
)

// LedgerEntryRepository stores cashbook and bankbook entries
type LedgerEntryRepository interface {
	Create(ctx context.Context, entry *LedgerEntry) error
	// UpdateBalance rewrites the running balance of a re-chained entry
	UpdateBalance(ctx context.Context, entry *LedgerEntry) error
	// FindLastOnOrBefore returns the last entry of the pool dated on or
	// before date, or shared.ErrNotFound.
	FindLastOnOrBefore(ctx context.Context, tenantID uuid.UUID, pool Pool, date time.Time) (*LedgerEntry, error)
	// FindLastBefore returns the last entry of the pool dated strictly
	// before date, or shared.ErrNotFound.
	FindLastBefore(ctx context.Context, tenantID uuid.UUID, pool Pool, date time.Time) (*LedgerEntry, error)
	// FindAfter returns the pool's entries dated strictly after date, in pool order
	FindAfter(ctx context.Context, tenantID uuid.UUID, pool Pool, date time.Time) ([]*LedgerEntry, error)
	// FindRange returns entries with from <= date <= to in pool order; zero bounds are open
	FindRange(ctx context.Context, tenantID uuid.UUID, pool Pool, from, to time.Time) ([]*LedgerEntry, error)
}

// CashAccountRepository stores the per-tenant cash account
type CashAccountRepository interface {
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*CashAccount, error)
	FindByTenantForUpdate(ctx context.Context, tenantID uuid.UUID) (*CashAccount, error)
	Create(ctx context.Context, account *CashAccount) error
	SaveWithLock(ctx context.Context, account *CashAccount) error
}

// BankAccountRepository stores bank accounts
type BankAccountRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*BankAccount, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*BankAccount, error)
	// FindDefault returns the tenant's default bank account or shared.ErrNotFound
	FindDefault(ctx context.Context, tenantID uuid.UUID) (*BankAccount, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]BankAccount, error)
	ExistsByAccountNumber(ctx context.Context, tenantID uuid.UUID, accountNumber string) (bool, error)
	// ClearDefault unsets the default flag on every account of the tenant
	ClearDefault(ctx context.Context, tenantID uuid.UUID) error
	Create(ctx context.Context, account *BankAccount) error
	SaveWithLock(ctx context.Context, account *BankAccount) error
}

// PaymentRepository stores payments
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]Payment, error)
	// FindByIdempotencyKey returns the payment accepted under key or shared.ErrNotFound
	FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*Payment, error)
}

// ExpenseRepository stores expenses
type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) error
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) ([]Expense, int64, error)
}
