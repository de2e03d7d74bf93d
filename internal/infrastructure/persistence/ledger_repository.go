package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/mandibooks/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

func (r *GormLedgerEntryRepository) pool(ctx context.Context, tenantID uuid.UUID, pool finance.Pool) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND book = ? AND account_id = ?", tenantID, pool.Book, pool.AccountID)
}

// Create inserts a chained entry
func (r *GormLedgerEntryRepository) Create(ctx context.Context, entry *finance.LedgerEntry) error {
	return translateError(r.db.WithContext(ctx).Create(entry).Error)
}

// UpdateBalance rewrites the running balance of an entry
func (r *GormLedgerEntryRepository) UpdateBalance(ctx context.Context, entry *finance.LedgerEntry) error {
	return r.db.WithContext(ctx).Model(&finance.LedgerEntry{}).
		Where("id = ?", entry.ID).
		Update("balance", entry.Balance).Error
}

// FindLastOnOrBefore returns the pool's last entry dated on or before date
func (r *GormLedgerEntryRepository) FindLastOnOrBefore(ctx context.Context, tenantID uuid.UUID, pool finance.Pool, date time.Time) (*finance.LedgerEntry, error) {
	return r.last(r.pool(ctx, tenantID, pool).Where("entry_date <= ?", date), pool)
}

// FindLastBefore returns the pool's last entry dated strictly before date
func (r *GormLedgerEntryRepository) FindLastBefore(ctx context.Context, tenantID uuid.UUID, pool finance.Pool, date time.Time) (*finance.LedgerEntry, error) {
	return r.last(r.pool(ctx, tenantID, pool).Where("entry_date < ?", date), pool)
}

func (r *GormLedgerEntryRepository) last(query *gorm.DB, pool finance.Pool) (*finance.LedgerEntry, error) {
	var entry finance.LedgerEntry
	if err := query.Order("entry_date DESC").Order("sequence DESC").Take(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("ledger_entry", pool.AccountID)
		}
		return nil, err
	}
	return &entry, nil
}

// FindAfter returns the pool's entries dated strictly after date, in pool order
func (r *GormLedgerEntryRepository) FindAfter(ctx context.Context, tenantID uuid.UUID, pool finance.Pool, date time.Time) ([]*finance.LedgerEntry, error) {
	var entries []*finance.LedgerEntry
	err := r.pool(ctx, tenantID, pool).
		Where("entry_date > ?", date).
		Order("entry_date").Order("sequence").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FindRange returns the pool's entries between from and to inclusive, in pool order
func (r *GormLedgerEntryRepository) FindRange(ctx context.Context, tenantID uuid.UUID, pool finance.Pool, from, to time.Time) ([]*finance.LedgerEntry, error) {
	query := r.pool(ctx, tenantID, pool)
	if !from.IsZero() {
		query = query.Where("entry_date >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("entry_date <= ?", to)
	}
	var entries []*finance.LedgerEntry
	if err := query.Order("entry_date").Order("sequence").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// GormCashAccountRepository implements CashAccountRepository using GORM
type GormCashAccountRepository struct {
	db *gorm.DB
}

// NewGormCashAccountRepository creates a new GormCashAccountRepository
func NewGormCashAccountRepository(db *gorm.DB) *GormCashAccountRepository {
	return &GormCashAccountRepository{db: db}
}

// FindByTenant returns the tenant's cash account
func (r *GormCashAccountRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*finance.CashAccount, error) {
	return r.find(r.db.WithContext(ctx), tenantID)
}

// FindByTenantForUpdate returns and row-locks the tenant's cash account
func (r *GormCashAccountRepository) FindByTenantForUpdate(ctx context.Context, tenantID uuid.UUID) (*finance.CashAccount, error) {
	return r.find(forUpdate(r.db.WithContext(ctx)), tenantID)
}

func (r *GormCashAccountRepository) find(query *gorm.DB, tenantID uuid.UUID) (*finance.CashAccount, error) {
	var account finance.CashAccount
	if err := query.Scopes(tenantScope(tenantID)).Take(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("cash_account", tenantID)
		}
		return nil, err
	}
	return &account, nil
}

// Create inserts the cash account
func (r *GormCashAccountRepository) Create(ctx context.Context, account *finance.CashAccount) error {
	return translateError(r.db.WithContext(ctx).Create(account).Error)
}

// SaveWithLock updates the cash account under optimistic locking
func (r *GormCashAccountRepository) SaveWithLock(ctx context.Context, account *finance.CashAccount) error {
	return saveWithLock(ctx, r.db, account)
}

// GormBankAccountRepository implements BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByIDForTenant finds a bank account of the acting tenant
func (r *GormBankAccountRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.BankAccount, error) {
	return findGuarded[finance.BankAccount](r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds and row-locks a bank account of the acting tenant
func (r *GormBankAccountRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*finance.BankAccount, error) {
	return findGuarded[finance.BankAccount](forUpdate(r.db.WithContext(ctx)), tenantID, id)
}

// FindDefault returns the tenant's default bank account
func (r *GormBankAccountRepository) FindDefault(ctx context.Context, tenantID uuid.UUID) (*finance.BankAccount, error) {
	var account finance.BankAccount
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_default = ?", tenantID, true).
		Take(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("bank_account", tenantID)
		}
		return nil, err
	}
	return &account, nil
}

// FindAllForTenant lists the tenant's bank accounts
func (r *GormBankAccountRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]finance.BankAccount, error) {
	var accounts []finance.BankAccount
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID), orderBy(filter, BankAccountSortFields, "created_at"), paginate(filter)).
		Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// ExistsByAccountNumber checks whether the tenant registered an account number
func (r *GormBankAccountRepository) ExistsByAccountNumber(ctx context.Context, tenantID uuid.UUID, accountNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&finance.BankAccount{}).
		Where("tenant_id = ? AND account_number = ?", tenantID, accountNumber).
		Count(&count).Error
	return count > 0, err
}

// ClearDefault unsets the default flag without touching versions
func (r *GormBankAccountRepository) ClearDefault(ctx context.Context, tenantID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&finance.BankAccount{}).
		Where("tenant_id = ? AND is_default = ?", tenantID, true).
		Update("is_default", false).Error
}

// Create inserts a bank account
func (r *GormBankAccountRepository) Create(ctx context.Context, account *finance.BankAccount) error {
	return translateError(r.db.WithContext(ctx).Create(account).Error)
}

// SaveWithLock updates the bank account under optimistic locking
func (r *GormBankAccountRepository) SaveWithLock(ctx context.Context, account *finance.BankAccount) error {
	return saveWithLock(ctx, r.db, account)
}
