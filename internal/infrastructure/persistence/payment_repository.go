package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/mandibooks/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create inserts a payment. A reused idempotency key fails with
// shared.ErrAlreadyExists through the unique index.
func (r *GormPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	return translateError(r.db.WithContext(ctx).Create(payment).Error)
}

// FindByInvoice returns an invoice's payments in the order they were accepted
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]finance.Payment, error) {
	var payments []finance.Payment
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("created_at").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// FindByIdempotencyKey returns the payment accepted under key
func (r *GormPaymentRepository) FindByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*finance.Payment, error) {
	var payment finance.Payment
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND idempotency_key = ?", tenantID, key).
		Take(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// GormExpenseRepository implements ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// Create inserts an expense
func (r *GormExpenseRepository) Create(ctx context.Context, expense *finance.Expense) error {
	return translateError(r.db.WithContext(ctx).Create(expense).Error)
}

// FindAllForTenant returns a page of expenses dated within [from, to]; zero
// bounds are open.
func (r *GormExpenseRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, from, to time.Time, filter shared.Filter) ([]finance.Expense, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&finance.Expense{}).Scopes(tenantScope(tenantID))
		if !from.IsZero() {
			query = query.Where("expense_date >= ?", from)
		}
		if !to.IsZero() {
			query = query.Where("expense_date <= ?", to)
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var expenses []finance.Expense
	err := base().
		Scopes(orderBy(filter, ExpenseSortFields, "expense_date"), paginate(filter)).
		Find(&expenses).Error
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}
