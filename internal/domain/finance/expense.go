package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies business expenses
type ExpenseCategory string

const (
	ExpenseLabour    ExpenseCategory = "LABOUR"
	ExpenseTransport ExpenseCategory = "TRANSPORT"
	ExpenseRent      ExpenseCategory = "RENT"
	ExpenseMandiFee  ExpenseCategory = "MANDI_FEE"
	ExpenseUtilities ExpenseCategory = "UTILITIES"
	ExpenseOther     ExpenseCategory = "OTHER"
)

// IsValid returns true if the category is valid
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseLabour, ExpenseTransport, ExpenseRent, ExpenseMandiFee, ExpenseUtilities, ExpenseOther:
		return true
	}
	return false
}

// Expense is money spent outside invoices. It posts one outflow to the
// cashbook or a bankbook.
type Expense struct {
	shared.TenantEntity
	Category      ExpenseCategory `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Book          LedgerBook      `gorm:"type:varchar(20);not null"`
	BankAccountID *uuid.UUID      `gorm:"type:uuid"`
	ExpenseDate   time.Time       `gorm:"not null"`
	Description   string          `gorm:"type:varchar(500)"`
	LedgerEntryID *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Expense) TableName() string {
	return "expenses"
}

// NewExpense validates an expense. Expenses are paid in cash or from a
// named bank account.
func NewExpense(tenantID uuid.UUID, category ExpenseCategory, amount decimal.Decimal, mode PaymentMode, date time.Time, description string) (*Expense, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("tenant_id", "cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewValidationError("category", "is not a valid expense category").WithExpected("LABOUR|TRANSPORT|RENT|MANDI_FEE|UTILITIES|OTHER", string(category))
	}
	amount = shared.RoundMoney(amount)
	if err := shared.RequirePositive("amount", amount); err != nil {
		return nil, err
	}

	e := &Expense{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Category:     category,
		Amount:       amount,
		ExpenseDate:  TruncateDay(date),
		Description:  strings.TrimSpace(description),
	}
	switch m := mode.(type) {
	case Cash:
		e.Book = BookCash
	case Bank:
		e.Book = BookBank
		id := m.BankAccountID
		e.BankAccountID = &id
	default:
		kind := "none"
		if mode != nil {
			kind = string(mode.Kind())
		}
		return nil, shared.NewValidationError("mode", "expenses are paid by CASH or BANK").WithExpected("CASH|BANK", kind)
	}
	return e, nil
}

// EntityName implements shared.Named
func (Expense) EntityName() string { return "expense" }
