package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// LedgerEntryDTO represents one cashbook or bankbook line
type LedgerEntryDTO struct {
	ID            uuid.UUID             `json:"id"`
	Book          finance.LedgerBook    `json:"book"`
	AccountID     uuid.UUID             `json:"account_id"`
	EntryDate     time.Time             `json:"entry_date"`
	Sequence      int64                 `json:"sequence"`
	Description   string                `json:"description"`
	Inflow        decimal.Decimal       `json:"inflow"`
	Outflow       decimal.Decimal       `json:"outflow"`
	Balance       decimal.Decimal       `json:"balance"`
	ReferenceType finance.ReferenceType `json:"reference_type"`
	ReferenceID   *uuid.UUID            `json:"reference_id,omitempty"`
}

// BookDTO is a cashbook or bankbook listing with carried balances
type BookDTO struct {
	Book           finance.LedgerBook `json:"book"`
	AccountID      uuid.UUID          `json:"account_id"`
	OpeningBalance decimal.Decimal    `json:"opening_balance"`
	ClosingBalance decimal.Decimal    `json:"closing_balance"`
	TotalInflow    decimal.Decimal    `json:"total_inflow"`
	TotalOutflow   decimal.Decimal    `json:"total_outflow"`
	Entries        []LedgerEntryDTO   `json:"entries"`
}

// PaymentDTO represents an accepted payment
type PaymentDTO struct {
	ID             uuid.UUID                `json:"id"`
	InvoiceID      uuid.UUID                `json:"invoice_id"`
	PartyType      string                   `json:"party_type"`
	PartyID        uuid.UUID                `json:"party_id"`
	Direction      finance.PaymentDirection `json:"direction"`
	Amount         decimal.Decimal          `json:"amount"`
	Mode           finance.PaymentModeKind  `json:"mode"`
	BankAccountID  *uuid.UUID               `json:"bank_account_id,omitempty"`
	ChequeNumber   string                   `json:"cheque_number,omitempty"`
	UPIReference   string                   `json:"upi_reference,omitempty"`
	PaymentLinkID  string                   `json:"payment_link_id,omitempty"`
	PaymentDate    time.Time                `json:"payment_date"`
	LedgerEntryID  *uuid.UUID               `json:"ledger_entry_id,omitempty"`
	IdempotencyKey string                   `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
}

// PaymentResult is the outcome of ApplyPayment, including the updated invoice state
type PaymentResult struct {
	Payment       PaymentDTO      `json:"payment"`
	InvoiceStatus string          `json:"invoice_status"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	PartyBalance  decimal.Decimal `json:"party_balance"`
	PoolBalance   decimal.Decimal `json:"pool_balance"`
	// Replayed is true when the idempotency key matched an earlier payment
	Replayed bool `json:"replayed"`
}

// BankAccountDTO represents a bank account
type BankAccountDTO struct {
	ID             uuid.UUID       `json:"id"`
	BankName       string          `json:"bank_name"`
	AccountNumber  string          `json:"account_number"`
	IFSC           string          `json:"ifsc,omitempty"`
	IsDefault      bool            `json:"is_default"`
	Active         bool            `json:"active"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Balance        decimal.Decimal `json:"balance"`
	CreatedAt      time.Time       `json:"created_at"`
}

// CashAccountDTO represents the tenant's cash account
type CashAccountDTO struct {
	ID             uuid.UUID       `json:"id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Balance        decimal.Decimal `json:"balance"`
}

// ExpenseDTO represents a recorded expense
type ExpenseDTO struct {
	ID            uuid.UUID               `json:"id"`
	Category      finance.ExpenseCategory `json:"category"`
	Amount        decimal.Decimal         `json:"amount"`
	Book          finance.LedgerBook      `json:"book"`
	BankAccountID *uuid.UUID              `json:"bank_account_id,omitempty"`
	ExpenseDate   time.Time               `json:"expense_date"`
	Description   string                  `json:"description"`
	LedgerEntryID *uuid.UUID              `json:"ledger_entry_id,omitempty"`
}

func toLedgerEntryDTO(e *finance.LedgerEntry) *LedgerEntryDTO {
	return &LedgerEntryDTO{
		ID:            e.ID,
		Book:          e.Book,
		AccountID:     e.AccountID,
		EntryDate:     e.EntryDate,
		Sequence:      e.Sequence,
		Description:   e.Description,
		Inflow:        e.Inflow,
		Outflow:       e.Outflow,
		Balance:       e.Balance,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
	}
}

func toPaymentDTO(p *finance.Payment) PaymentDTO {
	dto := PaymentDTO{
		ID:            p.ID,
		InvoiceID:     p.InvoiceID,
		PartyType:     string(p.PartyType),
		PartyID:       p.PartyID,
		Direction:     p.Direction,
		Amount:        p.Amount,
		Mode:          p.ModeKind,
		BankAccountID: p.BankAccountID,
		ChequeNumber:  p.ChequeNumber,
		UPIReference:  p.UPIReference,
		PaymentLinkID: p.PaymentLinkID,
		PaymentDate:   p.PaymentDate,
		LedgerEntryID: p.LedgerEntryID,
		CreatedAt:     p.CreatedAt,
	}
	if p.IdempotencyKey != nil {
		dto.IdempotencyKey = *p.IdempotencyKey
	}
	return dto
}

func toBankAccountDTO(a *finance.BankAccount) BankAccountDTO {
	return BankAccountDTO{
		ID:             a.ID,
		BankName:       a.BankName,
		AccountNumber:  a.AccountNumber,
		IFSC:           a.IFSC,
		IsDefault:      a.IsDefault,
		Active:         a.Active,
		OpeningBalance: a.OpeningBalance,
		Balance:        a.Balance,
		CreatedAt:      a.CreatedAt,
	}
}

func toExpenseDTO(e *finance.Expense) *ExpenseDTO {
	return &ExpenseDTO{
		ID:            e.ID,
		Category:      e.Category,
		Amount:        e.Amount,
		Book:          e.Book,
		BankAccountID: e.BankAccountID,
		ExpenseDate:   e.ExpenseDate,
		Description:   e.Description,
		LedgerEntryID: e.LedgerEntryID,
	}
}
