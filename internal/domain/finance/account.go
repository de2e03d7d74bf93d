package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PoolState is the running state of a ledger pool kept on its account row.
// Balance always equals the balance of the pool's last entry, or
// OpeningBalance when the pool has none.
type PoolState struct {
	OpeningBalance decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Balance        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LastSequence   int64           `gorm:"not null;default:0"`
}

// NextSequence reserves the insertion counter for a new entry
func (s *PoolState) NextSequence() int64 {
	s.LastSequence++
	return s.LastSequence
}

// PoolAccount is an account that owns a ledger pool
type PoolAccount interface {
	shared.TenantScoped
	shared.Named
	Pool() Pool
	State() *PoolState
	GetVersion() int
}

// CashAccount is the tenant's single cash pool
type CashAccount struct {
	shared.TenantAggregateRoot
	Name      string `gorm:"type:varchar(100);not null"`
	PoolState `gorm:"embedded"`
}

// TableName returns the table name for GORM
func (CashAccount) TableName() string {
	return "cash_accounts"
}

// NewCashAccount creates the cash account of a tenant
func NewCashAccount(tenantID uuid.UUID, opening decimal.Decimal) (*CashAccount, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant_id", "cannot be empty")
	}
	opening = shared.RoundMoney(opening)
	return &CashAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                "Cash",
		PoolState:           PoolState{OpeningBalance: opening, Balance: opening},
	}, nil
}

// Pool returns the cashbook pool
func (a *CashAccount) Pool() Pool { return Pool{Book: BookCash, AccountID: a.ID} }

// State returns the mutable pool state
func (a *CashAccount) State() *PoolState { return &a.PoolState }

// EntityName implements shared.Named
func (CashAccount) EntityName() string { return "cash_account" }

// BankAccount is one of the tenant's bank accounts, each with its own
// bankbook. Account numbers are unique within a tenant.
type BankAccount struct {
	shared.TenantAggregateRoot
	BankName      string `gorm:"type:varchar(100);not null"`
	AccountNumber string `gorm:"type:varchar(50);not null"`
	IFSC          string `gorm:"type:varchar(20)"`
	IsDefault     bool   `gorm:"not null;default:false"`
	Active        bool   `gorm:"not null;default:true"`
	PoolState     `gorm:"embedded"`
}

// TableName returns the table name for GORM
func (BankAccount) TableName() string {
	return "bank_accounts"
}

// NewBankAccount creates a bank account
func NewBankAccount(tenantID uuid.UUID, bankName, accountNumber, ifsc string, opening decimal.Decimal) (*BankAccount, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant_id", "cannot be empty")
	}
	bankName = strings.TrimSpace(bankName)
	if bankName == "" {
		return nil, shared.NewValidationError("bank_name", "cannot be empty")
	}
	accountNumber = strings.ReplaceAll(strings.TrimSpace(accountNumber), " ", "")
	if accountNumber == "" || len(accountNumber) > 50 {
		return nil, shared.NewValidationError("account_number", "must be 1-50 characters")
	}
	opening = shared.RoundMoney(opening)
	return &BankAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BankName:            bankName,
		AccountNumber:       accountNumber,
		IFSC:                strings.ToUpper(strings.TrimSpace(ifsc)),
		Active:              true,
		PoolState:           PoolState{OpeningBalance: opening, Balance: opening},
	}, nil
}

// Pool returns the bankbook pool
func (a *BankAccount) Pool() Pool { return Pool{Book: BookBank, AccountID: a.ID} }

// State returns the mutable pool state
func (a *BankAccount) State() *PoolState { return &a.PoolState }

// SetDefault marks or unmarks the account as the tenant default
func (a *BankAccount) SetDefault(isDefault bool) {
	a.IsDefault = isDefault
	a.UpdatedAt = time.Now().UTC()
}

// EntityName implements shared.Named
func (BankAccount) EntityName() string { return "bank_account" }
