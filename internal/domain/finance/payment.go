package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentDirection says whether money came in or went out
type PaymentDirection string

const (
	// PaymentReceived is money a retailer paid against a sales invoice
	PaymentReceived PaymentDirection = "RECEIVED"
	// PaymentMade is money paid to a vendor against a purchase invoice
	PaymentMade PaymentDirection = "MADE"
)

// Payment settles part of exactly one invoice of exactly one party. The mode
// is stored flattened; Mode() rebuilds the tagged variant.
type Payment struct {
	shared.TenantEntity
	InvoiceID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	PartyType      partner.PartyType `gorm:"type:varchar(20);not null"`
	PartyID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Direction      PaymentDirection  `gorm:"type:varchar(20);not null"`
	Amount         decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	ModeKind       PaymentModeKind   `gorm:"column:mode;type:varchar(20);not null"`
	BankAccountID  *uuid.UUID        `gorm:"type:uuid"`
	ChequeNumber   string            `gorm:"type:varchar(50)"`
	UPIReference   string            `gorm:"column:upi_reference;type:varchar(100)"`
	PaymentLinkID  string            `gorm:"type:varchar(100)"`
	PaymentDate    time.Time         `gorm:"not null"`
	LedgerEntryID  *uuid.UUID        `gorm:"type:uuid"`
	IdempotencyKey *string           `gorm:"type:varchar(100)"`
	Remark         string            `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment records a payment. bankAccountID is the resolved account for
// non-cash modes (the mode's own account or the tenant default).
func NewPayment(tenantID, invoiceID uuid.UUID, party partner.PartyRef, amount decimal.Decimal, mode PaymentMode, bankAccountID *uuid.UUID) (*Payment, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant_id", "cannot be empty")
	}
	if invoiceID == uuid.Nil {
		return nil, shared.NewValidationError("invoice_id", "is required")
	}
	if party.IsZero() {
		return nil, shared.NewValidationError("party", "is required")
	}
	if mode == nil {
		return nil, shared.NewValidationError("mode", "is required")
	}
	amount = shared.RoundMoney(amount)
	if err := shared.RequirePositive("amount", amount); err != nil {
		return nil, err
	}
	if Book(mode) == BookBank && bankAccountID == nil {
		return nil, shared.NewValidationError("bank_account_id", "is required for payment mode "+string(mode.Kind()))
	}

	direction := PaymentReceived
	if party.Type() == partner.PartyTypeVendor {
		direction = PaymentMade
	}

	p := &Payment{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		InvoiceID:     invoiceID,
		PartyType:     party.Type(),
		PartyID:       party.ID(),
		Direction:     direction,
		Amount:        amount,
		ModeKind:      mode.Kind(),
		BankAccountID: bankAccountID,
		PaymentDate:   TruncateDay(time.Now()),
	}
	switch m := mode.(type) {
	case Cash, Bank:
	case Cheque:
		p.ChequeNumber = m.ChequeNumber
	case UPI:
		p.UPIReference = m.TxnReference
	case PaymentLink:
		p.PaymentLinkID = m.LinkID
	}
	return p, nil
}

// Mode rebuilds the tagged payment mode from the stored columns
func (p *Payment) Mode() PaymentMode {
	switch p.ModeKind {
	case ModeBank:
		if p.BankAccountID != nil {
			return Bank{BankAccountID: *p.BankAccountID}
		}
	case ModeCheque:
		return Cheque{ChequeNumber: p.ChequeNumber, BankAccountID: p.BankAccountID}
	case ModeUPI:
		return UPI{TxnReference: p.UPIReference, BankAccountID: p.BankAccountID}
	case ModePaymentLink:
		return PaymentLink{LinkID: p.PaymentLinkID, BankAccountID: p.BankAccountID}
	}
	return Cash{}
}

// SignedAmount is the ledger delta of the payment: received money is an
// inflow, money paid out an outflow.
func (p *Payment) SignedAmount() decimal.Decimal {
	if p.Direction == PaymentMade {
		return p.Amount.Neg()
	}
	return p.Amount
}

// Party returns the party reference
func (p *Payment) Party() partner.PartyRef {
	if p.PartyType == partner.PartyTypeVendor {
		return partner.VendorParty(p.PartyID)
	}
	return partner.RetailerParty(p.PartyID)
}

// WithDate sets the payment date (day precision)
func (p *Payment) WithDate(date time.Time) *Payment {
	if !date.IsZero() {
		p.PaymentDate = TruncateDay(date)
	}
	return p
}

// WithIdempotencyKey tags the payment with the caller's idempotency key
func (p *Payment) WithIdempotencyKey(key string) *Payment {
	if key != "" {
		p.IdempotencyKey = &key
	}
	return p
}

// EntityName implements shared.Named
func (Payment) EntityName() string { return "payment" }
