package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PartyTransactionType represents what moved a party balance
type PartyTransactionType string

const (
	// PartyTxInvoice is a new invoice raising the balance
	PartyTxInvoice PartyTransactionType = "INVOICE"
	// PartyTxPayment is a payment settling part of the balance
	PartyTxPayment PartyTransactionType = "PAYMENT"
	// PartyTxWriteOff is the remainder of a force-paid invoice moved to shortfall
	PartyTxWriteOff PartyTransactionType = "WRITE_OFF"
	// PartyTxCreditAdjustment is a change to a retailer's outstanding credit
	PartyTxCreditAdjustment PartyTransactionType = "CREDIT_ADJUSTMENT"
	// PartyTxCrate is a crate exchange or the deposit that came with it
	PartyTxCrate PartyTransactionType = "CRATE"
)

// String returns the string representation of PartyTransactionType
func (t PartyTransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t PartyTransactionType) IsValid() bool {
	switch t {
	case PartyTxInvoice, PartyTxPayment, PartyTxWriteOff, PartyTxCreditAdjustment, PartyTxCrate:
		return true
	}
	return false
}

// PartyAccount names which party balance a transaction moved
type PartyAccount string

const (
	PartyAccountBalance           PartyAccount = "BALANCE"
	PartyAccountOutstandingCredit PartyAccount = "OUTSTANDING_CREDIT"
	// Crate counts are whole numbers carried in the decimal columns.
	PartyAccountCrates       PartyAccount = "CRATES"
	PartyAccountCrateDeposit PartyAccount = "CRATE_DEPOSIT"
)

// PartyTransaction is an immutable record of a party balance change.
// Corrections are made with new transactions.
type PartyTransaction struct {
	shared.TenantEntity
	PartyType       PartyType            `gorm:"type:varchar(20);not null;index:idx_party_tx_party,priority:1"`
	PartyID         uuid.UUID            `gorm:"type:uuid;not null;index:idx_party_tx_party,priority:2"`
	TransactionType PartyTransactionType `gorm:"type:varchar(30);not null"`
	Account         PartyAccount         `gorm:"type:varchar(30);not null"`
	// Signed change applied to Account.
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BalanceBefore   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	BalanceAfter    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	SourceType      string          `gorm:"type:varchar(30)"`
	SourceID        *uuid.UUID      `gorm:"type:uuid"`
	Reference       string          `gorm:"type:varchar(100)"`
	Remark          string          `gorm:"type:varchar(500)"`
	TransactionDate time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PartyTransaction) TableName() string {
	return "party_transactions"
}

// NewPartyTransaction records a balance change on a party
func NewPartyTransaction(
	tenantID uuid.UUID,
	party PartyRef,
	txType PartyTransactionType,
	account PartyAccount,
	amount, balanceBefore, balanceAfter decimal.Decimal,
) (*PartyTransaction, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant_id", "cannot be empty")
	}
	if party.IsZero() {
		return nil, shared.NewValidationError("party", "is required")
	}
	if !txType.IsValid() {
		return nil, shared.NewValidationError("transaction_type", "is not a valid party transaction type")
	}
	if amount.IsZero() {
		return nil, shared.NewValidationError("amount", "cannot be zero")
	}
	if !balanceBefore.Add(amount).Equal(balanceAfter) {
		return nil, shared.NewValidationError("balance_after", "does not equal balance_before plus amount").
			WithExpected(balanceBefore.Add(amount).StringFixed(2), balanceAfter.StringFixed(2))
	}

	return &PartyTransaction{
		TenantEntity:    shared.NewTenantEntity(tenantID),
		PartyType:       party.Type(),
		PartyID:         party.ID(),
		TransactionType: txType,
		Account:         account,
		Amount:          amount,
		BalanceBefore:   balanceBefore,
		BalanceAfter:    balanceAfter,
		TransactionDate: time.Now().UTC(),
	}, nil
}

// WithSource sets the originating document
func (t *PartyTransaction) WithSource(sourceType string, sourceID uuid.UUID, reference string) *PartyTransaction {
	t.SourceType = sourceType
	t.SourceID = &sourceID
	t.Reference = reference
	return t
}

// WithRemark sets a free-text remark
func (t *PartyTransaction) WithRemark(remark string) *PartyTransaction {
	t.Remark = remark
	return t
}

// Party returns the party the transaction belongs to
func (t *PartyTransaction) Party() PartyRef {
	return PartyRef{typ: t.PartyType, id: t.PartyID}
}
