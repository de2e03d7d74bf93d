package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Retailer is a buyer of produce. Balance is what the retailer owes the
// trader on invoices. OutstandingCredit (udhaar) is informal credit extended
// outside invoices, and ShortfallBalance accumulates amounts written off by
// force-paying invoices.
type Retailer struct {
	shared.TenantAggregateRoot
	Name              string          `gorm:"type:varchar(200);not null"`
	Phone             string          `gorm:"type:varchar(50)"`
	Address           string          `gorm:"type:text"`
	Status            PartyStatus     `gorm:"type:varchar(20);not null;default:'active'"`
	CreditLimit       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	OutstandingCredit decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ShortfallBalance  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Balances          `gorm:"embedded"`
}

// TableName returns the table name for GORM
func (Retailer) TableName() string {
	return "retailers"
}

// NewRetailer creates a new retailer with zero balances
func NewRetailer(tenantID uuid.UUID, name string) (*Retailer, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant_id", "cannot be empty")
	}
	name, err := validatePartyName(name)
	if err != nil {
		return nil, err
	}
	return &Retailer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		Status:              PartyStatusActive,
		CreditLimit:         decimal.Zero,
		OutstandingCredit:   decimal.Zero,
		ShortfallBalance:    decimal.Zero,
		Balances: Balances{
			Balance:             decimal.Zero,
			CrateDepositBalance: decimal.Zero,
		},
	}, nil
}

// SetContact sets phone and address
func (r *Retailer) SetContact(phone, address string) {
	r.Phone = phone
	r.Address = address
	r.touch()
}

// SetCreditLimit sets the maximum udhaar the retailer may carry.
// Zero means unlimited.
func (r *Retailer) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewValidationError("credit_limit", "cannot be negative")
	}
	r.CreditLimit = limit
	r.touch()
	return nil
}

// AdjustOutstandingCredit moves the udhaar balance by delta. The balance
// cannot go below zero, nor above a non-zero credit limit.
func (r *Retailer) AdjustOutstandingCredit(delta decimal.Decimal) (before, after decimal.Decimal, err error) {
	if delta.IsZero() {
		return r.OutstandingCredit, r.OutstandingCredit, shared.NewValidationError("amount", "cannot be zero")
	}
	before = r.OutstandingCredit
	after = before.Add(delta)
	if after.IsNegative() {
		return before, before, shared.NewValidationError("amount", "settles more credit than outstanding").
			WithExpected("<= "+before.StringFixed(2), delta.Neg().StringFixed(2))
	}
	if r.CreditLimit.IsPositive() && after.GreaterThan(r.CreditLimit) {
		return before, before, shared.NewValidationError("amount", "exceeds credit limit").
			WithExpected("<= "+r.CreditLimit.StringFixed(2), after.StringFixed(2))
	}
	r.OutstandingCredit = after
	r.touch()
	return before, after, nil
}

// WriteOffShortfall removes an unrecovered amount from the receivable
// balance and records it as shortfall.
func (r *Retailer) WriteOffShortfall(amount decimal.Decimal) (before, after decimal.Decimal, err error) {
	if err := shared.RequirePositive("shortfall_amount", amount); err != nil {
		return r.Balance, r.Balance, err
	}
	before, after = r.ReduceBalance(amount)
	r.ShortfallBalance = r.ShortfallBalance.Add(amount)
	r.touch()
	return before, after, nil
}

// Deactivate prevents new invoices against the retailer
func (r *Retailer) Deactivate() {
	r.Status = PartyStatusInactive
	r.touch()
}

// IsActive returns true if the retailer accepts new transactions
func (r *Retailer) IsActive() bool {
	return r.Status == PartyStatusActive
}

// Ref returns the party reference of the retailer
func (r *Retailer) Ref() PartyRef { return RetailerParty(r.ID) }

// GetBalances returns the mutable balances
func (r *Retailer) GetBalances() *Balances { return &r.Balances }

// EntityName implements shared.Named
func (Retailer) EntityName() string { return "retailer" }

func (r *Retailer) touch() {
	r.UpdatedAt = time.Now().UTC()
}
