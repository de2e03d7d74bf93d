package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormVendorRepository implements VendorRepository using GORM
type GormVendorRepository struct {
	db *gorm.DB
}

// NewGormVendorRepository creates a new GormVendorRepository
func NewGormVendorRepository(db *gorm.DB) *GormVendorRepository {
	return &GormVendorRepository{db: db}
}

// FindByIDForTenant finds a vendor of the acting tenant
func (r *GormVendorRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Vendor, error) {
	return findGuarded[partner.Vendor](r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds and row-locks a vendor of the acting tenant
func (r *GormVendorRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*partner.Vendor, error) {
	return findGuarded[partner.Vendor](forUpdate(r.db.WithContext(ctx)), tenantID, id)
}

// FindAllForTenant lists the tenant's vendors
func (r *GormVendorRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Vendor, error) {
	var vendors []partner.Vendor
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID), nameSearch("name", filter.Search), orderBy(filter, PartySortFields, "name"), paginate(filter)).
		Find(&vendors).Error
	if err != nil {
		return nil, err
	}
	return vendors, nil
}

// ExistsByName checks a vendor name, ignoring case
func (r *GormVendorRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&partner.Vendor{}).
		Scopes(tenantScope(tenantID)).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a new vendor
func (r *GormVendorRepository) Create(ctx context.Context, vendor *partner.Vendor) error {
	return translateError(r.db.WithContext(ctx).Create(vendor).Error)
}

// SaveWithLock updates the vendor under optimistic locking
func (r *GormVendorRepository) SaveWithLock(ctx context.Context, vendor *partner.Vendor) error {
	return saveWithLock(ctx, r.db, vendor)
}

// GormRetailerRepository implements RetailerRepository using GORM
type GormRetailerRepository struct {
	db *gorm.DB
}

// NewGormRetailerRepository creates a new GormRetailerRepository
func NewGormRetailerRepository(db *gorm.DB) *GormRetailerRepository {
	return &GormRetailerRepository{db: db}
}

// FindByIDForTenant finds a retailer of the acting tenant
func (r *GormRetailerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Retailer, error) {
	return findGuarded[partner.Retailer](r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds and row-locks a retailer of the acting tenant
func (r *GormRetailerRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*partner.Retailer, error) {
	return findGuarded[partner.Retailer](forUpdate(r.db.WithContext(ctx)), tenantID, id)
}

// FindAllForTenant lists the tenant's retailers
func (r *GormRetailerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Retailer, error) {
	var retailers []partner.Retailer
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID), nameSearch("name", filter.Search), orderBy(filter, PartySortFields, "name"), paginate(filter)).
		Find(&retailers).Error
	if err != nil {
		return nil, err
	}
	return retailers, nil
}

// ExistsByName checks a retailer name, ignoring case
func (r *GormRetailerRepository) ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&partner.Retailer{}).
		Scopes(tenantScope(tenantID)).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count).Error
	return count > 0, err
}

// Create inserts a new retailer
func (r *GormRetailerRepository) Create(ctx context.Context, retailer *partner.Retailer) error {
	return translateError(r.db.WithContext(ctx).Create(retailer).Error)
}

// SaveWithLock updates the retailer under optimistic locking
func (r *GormRetailerRepository) SaveWithLock(ctx context.Context, retailer *partner.Retailer) error {
	return saveWithLock(ctx, r.db, retailer)
}

// GormPartyTransactionRepository implements PartyTransactionRepository using GORM
type GormPartyTransactionRepository struct {
	db *gorm.DB
}

// NewGormPartyTransactionRepository creates a new GormPartyTransactionRepository
func NewGormPartyTransactionRepository(db *gorm.DB) *GormPartyTransactionRepository {
	return &GormPartyTransactionRepository{db: db}
}

// Create appends a party ledger line
func (r *GormPartyTransactionRepository) Create(ctx context.Context, tx *partner.PartyTransaction) error {
	return translateError(r.db.WithContext(ctx).Create(tx).Error)
}

// FindByParty returns a page of a party's ledger and its total size
func (r *GormPartyTransactionRepository) FindByParty(ctx context.Context, tenantID uuid.UUID, party partner.PartyRef, filter shared.Filter) ([]partner.PartyTransaction, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&partner.PartyTransaction{}).
			Where("tenant_id = ? AND party_type = ? AND party_id = ?", tenantID, party.Type(), party.ID())
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []partner.PartyTransaction
	err := base().
		Scopes(orderBy(filter, PartyTransactionSortFields, "transaction_date"), paginate(filter)).
		Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}
