package finance

import (
	"strings"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
)

// PaymentModeKind is the tag of a PaymentMode
type PaymentModeKind string

const (
	ModeCash        PaymentModeKind = "CASH"
	ModeBank        PaymentModeKind = "BANK"
	ModeCheque      PaymentModeKind = "CHEQUE"
	ModeUPI         PaymentModeKind = "UPI"
	ModePaymentLink PaymentModeKind = "PAYMENT_LINK"
)

// String returns the string representation of PaymentModeKind
func (k PaymentModeKind) String() string {
	return string(k)
}

// IsValid returns true if the mode kind is valid
func (k PaymentModeKind) IsValid() bool {
	switch k {
	case ModeCash, ModeBank, ModeCheque, ModeUPI, ModePaymentLink:
		return true
	}
	return false
}

// PaymentMode is how money moved. Each variant carries only the fields it
// needs; the set of variants is closed.
type PaymentMode interface {
	Kind() PaymentModeKind
	// BankAccount returns the bank account the money went through, nil for
	// cash or when the tenant default should be used.
	BankAccount() *uuid.UUID
	// Reference returns the cheque number, UPI reference or link id
	Reference() string
	isPaymentMode()
}

// Cash is a cash-in-hand payment; it posts to the cashbook.
type Cash struct{}

// Bank is a direct bank transfer into a specific account.
type Bank struct {
	BankAccountID uuid.UUID
}

// Cheque is a cheque deposited into a bank account.
type Cheque struct {
	ChequeNumber  string
	BankAccountID *uuid.UUID
}

// UPI is a UPI transfer identified by its transaction reference.
type UPI struct {
	TxnReference  string
	BankAccountID *uuid.UUID
}

// PaymentLink is a hosted payment link. Sales only.
type PaymentLink struct {
	LinkID        string
	BankAccountID *uuid.UUID
}

func (Cash) Kind() PaymentModeKind        { return ModeCash }
func (Bank) Kind() PaymentModeKind        { return ModeBank }
func (Cheque) Kind() PaymentModeKind      { return ModeCheque }
func (UPI) Kind() PaymentModeKind         { return ModeUPI }
func (PaymentLink) Kind() PaymentModeKind { return ModePaymentLink }

func (Cash) BankAccount() *uuid.UUID          { return nil }
func (m Bank) BankAccount() *uuid.UUID        { id := m.BankAccountID; return &id }
func (m Cheque) BankAccount() *uuid.UUID      { return m.BankAccountID }
func (m UPI) BankAccount() *uuid.UUID         { return m.BankAccountID }
func (m PaymentLink) BankAccount() *uuid.UUID { return m.BankAccountID }

func (Cash) Reference() string          { return "" }
func (Bank) Reference() string          { return "" }
func (m Cheque) Reference() string      { return m.ChequeNumber }
func (m UPI) Reference() string         { return m.TxnReference }
func (m PaymentLink) Reference() string { return m.LinkID }

func (Cash) isPaymentMode()        {}
func (Bank) isPaymentMode()        {}
func (Cheque) isPaymentMode()      {}
func (UPI) isPaymentMode()         {}
func (PaymentLink) isPaymentMode() {}

// ModeFields is the flat payload shape that API callers send
type ModeFields struct {
	BankAccountID *uuid.UUID
	ChequeNumber  string
	UPIReference  string
	PaymentLinkID string
}

// NewPaymentMode builds a PaymentMode from a flat payload. Missing required
// fields and fields that do not belong to the mode fail with a
// ValidationError.
func NewPaymentMode(kind PaymentModeKind, f ModeFields) (PaymentMode, error) {
	hasBank := f.BankAccountID != nil && *f.BankAccountID != uuid.Nil
	cheque := strings.TrimSpace(f.ChequeNumber)
	upi := strings.TrimSpace(f.UPIReference)
	link := strings.TrimSpace(f.PaymentLinkID)

	present := []struct {
		field string
		set   bool
	}{
		{"cheque_number", cheque != ""},
		{"upi_reference", upi != ""},
		{"payment_link_id", link != ""},
	}
	allowOnly := func(allowed string) error {
		for _, p := range present {
			if p.set && p.field != allowed {
				return shared.NewValidationError(p.field, "not allowed for payment mode "+string(kind))
			}
		}
		return nil
	}

	var bankAccount *uuid.UUID
	if hasBank {
		id := *f.BankAccountID
		bankAccount = &id
	}

	switch kind {
	case ModeCash:
		if err := allowOnly(""); err != nil {
			return nil, err
		}
		if hasBank {
			return nil, shared.NewValidationError("bank_account_id", "not allowed for payment mode CASH")
		}
		return Cash{}, nil
	case ModeBank:
		if err := allowOnly(""); err != nil {
			return nil, err
		}
		if !hasBank {
			return nil, shared.NewValidationError("bank_account_id", "is required for payment mode BANK").
				WithExpected("bank account id", "none")
		}
		return Bank{BankAccountID: *bankAccount}, nil
	case ModeCheque:
		if err := allowOnly("cheque_number"); err != nil {
			return nil, err
		}
		if cheque == "" {
			return nil, shared.NewValidationError("cheque_number", "is required for payment mode CHEQUE")
		}
		return Cheque{ChequeNumber: cheque, BankAccountID: bankAccount}, nil
	case ModeUPI:
		if err := allowOnly("upi_reference"); err != nil {
			return nil, err
		}
		if upi == "" {
			return nil, shared.NewValidationError("upi_reference", "is required for payment mode UPI")
		}
		return UPI{TxnReference: upi, BankAccountID: bankAccount}, nil
	case ModePaymentLink:
		if err := allowOnly("payment_link_id"); err != nil {
			return nil, err
		}
		if link == "" {
			return nil, shared.NewValidationError("payment_link_id", "is required for payment mode PAYMENT_LINK")
		}
		return PaymentLink{LinkID: link, BankAccountID: bankAccount}, nil
	default:
		return nil, shared.NewValidationError("mode", "unknown payment mode").
			WithExpected("CASH|BANK|CHEQUE|UPI|PAYMENT_LINK", string(kind))
	}
}

// Book returns the ledger book a payment in this mode posts to
func Book(mode PaymentMode) LedgerBook {
	if _, ok := mode.(Cash); ok {
		return BookCash
	}
	return BookBank
}
