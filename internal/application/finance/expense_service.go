package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/application/uow"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordExpenseInput represents input for recording an expense
type RecordExpenseInput struct {
	TenantID    uuid.UUID
	Category    finance.ExpenseCategory
	Amount      decimal.Decimal
	Mode        finance.PaymentMode
	Date        time.Time
	Description string
}

// ExpenseListFilter narrows an expense listing
type ExpenseListFilter struct {
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

// ExpenseService records business expenses against the cash and bank books
type ExpenseService struct {
	scope    uow.TransactionScope
	recorder *BookRecorder
	logger   *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(scope uow.TransactionScope, recorder *BookRecorder, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{scope: scope, recorder: recorder, logger: logger}
}

// RecordExpense stores the expense and posts its outflow in one unit of work
func (s *ExpenseService) RecordExpense(ctx context.Context, input RecordExpenseInput) (*ExpenseDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "expense", "record")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, input.TenantID.String(),
		telemetry.SpanAttrAmount, input.Amount.String(),
		"category", string(input.Category),
	)

	expense, err := finance.NewExpense(input.TenantID, input.Category, input.Amount, input.Mode, input.Date, input.Description)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		account, err := s.recorder.LockPool(ctx, repos, input.TenantID, expense.Book, expense.BankAccountID)
		if err != nil {
			return err
		}
		description := string(expense.Category)
		if expense.Description != "" {
			description += ": " + expense.Description
		}
		entry, err := s.recorder.AppendInTx(ctx, repos, input.TenantID, account, EntryInput{
			Date:        expense.ExpenseDate,
			Description: description,
			Amount:      expense.Amount.Neg(),
			Reference:   finance.LedgerReference{Type: finance.RefExpense, ID: &expense.ID},
		})
		if err != nil {
			return err
		}
		expense.LedgerEntryID = &entry.ID
		if err := repos.Expenses().Create(ctx, expense); err != nil {
			return fmt.Errorf("failed to create expense: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Expense rejected", zap.String("tenant_id", input.TenantID.String()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Expense recorded",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("expense_id", expense.ID.String()),
		zap.String("category", string(expense.Category)),
		zap.String("amount", expense.Amount.StringFixed(2)),
	)
	return toExpenseDTO(expense), nil
}

// ListExpenses lists the tenant's expenses, newest first
func (s *ExpenseService) ListExpenses(ctx context.Context, tenantID uuid.UUID, f ExpenseListFilter) (shared.Paginated[ExpenseDTO], error) {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 && f.PageSize <= 100 {
		filter.PageSize = f.PageSize
	}
	filter.OrderBy = "expense_date"

	var expenses []finance.Expense
	var total int64
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		expenses, total, err = repos.Expenses().FindAllForTenant(ctx, tenantID, f.From, f.To, filter)
		return err
	})
	if err != nil {
		return shared.Paginated[ExpenseDTO]{}, err
	}
	dtos := make([]ExpenseDTO, len(expenses))
	for i := range expenses {
		dtos[i] = *toExpenseDTO(&expenses[i])
	}
	return shared.NewPaginated(dtos, total, filter.Page, filter.PageSize), nil
}
