package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LedgerBook is the ledger variant
type LedgerBook string

const (
	BookCash LedgerBook = "CASHBOOK"
	BookBank LedgerBook = "BANKBOOK"
)

// String returns the string representation of LedgerBook
func (b LedgerBook) String() string {
	return string(b)
}

// IsValid returns true if the book is valid
func (b LedgerBook) IsValid() bool {
	return b == BookCash || b == BookBank
}

// Pool identifies one running-balance sequence: the tenant's cash account
// or one bank account.
type Pool struct {
	Book      LedgerBook
	AccountID uuid.UUID
}

// ReferenceType names the transaction that produced a ledger entry
type ReferenceType string

const (
	RefPayment      ReferenceType = "PAYMENT"
	RefExpense      ReferenceType = "EXPENSE"
	RefCrateDeposit ReferenceType = "CRATE_DEPOSIT"
	RefManual       ReferenceType = "MANUAL"
)

// LedgerReference points an entry at its originating transaction
type LedgerReference struct {
	Type ReferenceType
	ID   *uuid.UUID
}

// LedgerEntry is one line of a cashbook or bankbook. Entries of a pool are
// ordered by (EntryDate, Sequence); Balance is the previous entry's balance
// plus Inflow minus Outflow. Nothing but Rechain assigns Balance.
type LedgerEntry struct {
	shared.TenantEntity
	Book          LedgerBook      `gorm:"type:varchar(20);not null"`
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_ledger_pool_order,priority:1"`
	EntryDate     time.Time       `gorm:"not null;index:idx_ledger_pool_order,priority:2"`
	Sequence      int64           `gorm:"not null;index:idx_ledger_pool_order,priority:3"`
	Description   string          `gorm:"type:varchar(500)"`
	Inflow        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Outflow       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Balance       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	ReferenceType ReferenceType   `gorm:"type:varchar(30);not null"`
	ReferenceID   *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// NewLedgerEntry creates an unchained entry. signedAmount > 0 is an inflow,
// < 0 an outflow. The date is truncated to the day in UTC.
func NewLedgerEntry(tenantID uuid.UUID, pool Pool, date time.Time, description string, signedAmount decimal.Decimal, ref LedgerReference) (*LedgerEntry, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant_id", "cannot be empty")
	}
	if !pool.Book.IsValid() || pool.AccountID == uuid.Nil {
		return nil, shared.NewValidationError("pool", "a cash or bank account is required")
	}
	signedAmount = shared.RoundMoney(signedAmount)
	if signedAmount.IsZero() {
		return nil, shared.NewValidationError("amount", "cannot be zero")
	}
	if ref.Type == "" {
		return nil, shared.NewValidationError("reference_type", "is required")
	}

	e := &LedgerEntry{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		Book:          pool.Book,
		AccountID:     pool.AccountID,
		EntryDate:     TruncateDay(date),
		Description:   description,
		Inflow:        decimal.Zero,
		Outflow:       decimal.Zero,
		Balance:       decimal.Zero,
		ReferenceType: ref.Type,
		ReferenceID:   ref.ID,
	}
	if signedAmount.IsPositive() {
		e.Inflow = signedAmount
	} else {
		e.Outflow = signedAmount.Neg()
	}
	return e, nil
}

// SignedAmount is Inflow - Outflow
func (e *LedgerEntry) SignedAmount() decimal.Decimal {
	return e.Inflow.Sub(e.Outflow)
}

// Pool returns the pool the entry belongs to
func (e *LedgerEntry) Pool() Pool {
	return Pool{Book: e.Book, AccountID: e.AccountID}
}

// Before reports whether e sorts before o in pool order
func (e *LedgerEntry) Before(o *LedgerEntry) bool {
	if !e.EntryDate.Equal(o.EntryDate) {
		return e.EntryDate.Before(o.EntryDate)
	}
	return e.Sequence < o.Sequence
}

// EntityName implements shared.Named
func (LedgerEntry) EntityName() string { return "ledger_entry" }

// Rechain assigns running balances to entries, which must already be in pool
// order, starting from opening. It returns the balance after the last entry.
func Rechain(opening decimal.Decimal, entries []*LedgerEntry) decimal.Decimal {
	running := opening
	for _, e := range entries {
		running = running.Add(e.SignedAmount())
		e.Balance = running
	}
	return running
}

// TruncateDay returns midnight UTC of t's UTC date
func TruncateDay(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
