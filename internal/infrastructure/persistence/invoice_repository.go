package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForTenant finds an invoice with its line items
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.Invoice, error) {
	query := r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("line_no")
	})
	return findGuarded[trade.Invoice](query, tenantID, id)
}

// FindByIDForUpdate finds and row-locks an invoice header
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*trade.Invoice, error) {
	return findGuarded[trade.Invoice](forUpdate(r.db.WithContext(ctx)), tenantID, id)
}

// FindAllForTenant lists invoice headers matching the filter and the total count
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter trade.InvoiceFilter) ([]trade.Invoice, int64, error) {
	base := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&trade.Invoice{}).Scopes(tenantScope(tenantID))
		if filter.Kind != "" {
			query = query.Where("kind = ?", filter.Kind)
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.PartyID != nil {
			query = query.Where("(vendor_id = ? OR retailer_id = ?)", *filter.PartyID, *filter.PartyID)
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			query = query.Where("LOWER(invoice_number) LIKE ?", "%"+strings.ToLower(search)+"%")
		}
		return query
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invoices []trade.Invoice
	err := base().
		Scopes(orderBy(filter.Filter, InvoiceSortFields, "invoice_date"), paginate(filter.Filter)).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

// ExistsByNumber checks whether the tenant already used an invoice number
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&trade.Invoice{}).
		Where("tenant_id = ? AND invoice_number = ?", tenantID, number).
		Count(&count).Error
	return count > 0, err
}

// Create inserts the invoice header and its line items
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *trade.Invoice) error {
	return translateError(r.db.WithContext(ctx).Create(invoice).Error)
}

// SaveWithLock updates the invoice header under optimistic locking. Line
// items are immutable once created.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *trade.Invoice) error {
	return saveWithLock(ctx, r.db, invoice)
}
