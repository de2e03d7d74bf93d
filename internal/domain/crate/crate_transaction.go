package crate

import (
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Direction of a crate exchange, seen from the trader
type Direction string

const (
	// DirectionGiven lends crates to the party
	DirectionGiven Direction = "GIVEN"
	// DirectionReceived takes crates back from the party
	DirectionReceived Direction = "RECEIVED"
	// DirectionReturned records crates the party returned
	DirectionReturned Direction = "RETURNED"
)

// String returns the string representation of Direction
func (d Direction) String() string {
	return string(d)
}

// IsValid returns true if the direction is valid
func (d Direction) IsValid() bool {
	switch d {
	case DirectionGiven, DirectionReceived, DirectionReturned:
		return true
	}
	return false
}

// Sign is +1 when crates go out to the party and -1 when they come back
func (d Direction) Sign() int64 {
	if d == DirectionGiven {
		return 1
	}
	return -1
}

// CrateTransaction is an immutable crate lend/return event. The party is
// stored as a tagged pair of nullable columns; exactly one is set.
type CrateTransaction struct {
	shared.TenantEntity
	PartyType       partner.PartyType `gorm:"type:varchar(20);not null"`
	RetailerID      *uuid.UUID        `gorm:"type:uuid;index"`
	VendorID        *uuid.UUID        `gorm:"type:uuid;index"`
	Direction       Direction         `gorm:"type:varchar(20);not null"`
	Quantity        int64             `gorm:"not null"`
	DepositAmount   decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	InvoiceID       *uuid.UUID        `gorm:"type:uuid;index"`
	LedgerEntryID   *uuid.UUID        `gorm:"type:uuid"`
	BalanceBefore   int64             `gorm:"not null"`
	BalanceAfter    int64             `gorm:"not null"`
	Remark          string            `gorm:"type:varchar(500)"`
	TransactionDate time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CrateTransaction) TableName() string {
	return "crate_transactions"
}

// NewCrateTransaction validates a crate exchange. Balances are filled in by
// ApplyTo once the party row is locked.
func NewCrateTransaction(tenantID uuid.UUID, party partner.PartyRef, direction Direction, quantity int64) (*CrateTransaction, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant_id", "cannot be empty")
	}
	if party.IsZero() {
		return nil, shared.NewValidationError("party", "is required")
	}
	if !direction.IsValid() {
		return nil, shared.NewValidationError("direction", "must be GIVEN, RECEIVED or RETURNED").
			WithExpected("GIVEN|RECEIVED|RETURNED", string(direction))
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("quantity", "must be greater than zero")
	}

	return &CrateTransaction{
		TenantEntity:    shared.NewTenantEntity(tenantID),
		PartyType:       party.Type(),
		RetailerID:      party.RetailerID(),
		VendorID:        party.VendorID(),
		Direction:       direction,
		Quantity:        quantity,
		DepositAmount:   decimal.Zero,
		TransactionDate: time.Now().UTC(),
	}, nil
}

// WithDeposit attaches a refundable deposit amount
func (c *CrateTransaction) WithDeposit(amount decimal.Decimal) (*CrateTransaction, error) {
	if amount.IsNegative() {
		return c, shared.NewValidationError("deposit_amount", "cannot be negative")
	}
	c.DepositAmount = shared.RoundMoney(amount)
	return c, nil
}

// WithInvoice links the exchange to the invoice that produced it
func (c *CrateTransaction) WithInvoice(invoiceID uuid.UUID) *CrateTransaction {
	c.InvoiceID = &invoiceID
	return c
}

// WithDate sets the transaction date
func (c *CrateTransaction) WithDate(date time.Time) *CrateTransaction {
	if !date.IsZero() {
		c.TransactionDate = date.UTC()
	}
	return c
}

// Party returns the party reference
func (c *CrateTransaction) Party() partner.PartyRef {
	if c.RetailerID != nil {
		return partner.RetailerParty(*c.RetailerID)
	}
	if c.VendorID != nil {
		return partner.VendorParty(*c.VendorID)
	}
	return partner.PartyRef{}
}

// Delta is the signed change to the party's crate balance
func (c *CrateTransaction) Delta() int64 {
	return c.Direction.Sign() * c.Quantity
}

// DepositDelta is the signed change to the deposit held for the party
func (c *CrateTransaction) DepositDelta() decimal.Decimal {
	if c.Direction == DirectionGiven {
		return c.DepositAmount
	}
	return c.DepositAmount.Neg()
}

// HasDeposit reports whether money changed hands with the crates
func (c *CrateTransaction) HasDeposit() bool {
	return c.DepositAmount.IsPositive()
}

// ApplyTo moves the party's crate and deposit balances and records the
// before/after counts on the transaction.
func (c *CrateTransaction) ApplyTo(party partner.Party, allowNegative bool) error {
	if party.Ref() != c.Party() {
		return shared.NewValidationError("party", "does not match the crate transaction").
			WithExpected(c.Party().String(), party.Ref().String())
	}
	if err := shared.CheckPair(c, party); err != nil {
		return err
	}
	balances := party.GetBalances()
	before, after, err := balances.ApplyCrates(c.Delta(), allowNegative)
	if err != nil {
		return err
	}
	if c.HasDeposit() {
		if err := balances.ApplyCrateDeposit(c.DepositDelta()); err != nil {
			balances.CrateBalance = before
			return err
		}
	}
	c.BalanceBefore = before
	c.BalanceAfter = after
	return nil
}

// EntityName implements shared.Named
func (CrateTransaction) EntityName() string { return "crate_transaction" }
