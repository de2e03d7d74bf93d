package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/catalog"
	"github.com/mandibooks/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormItemRepository implements ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByIDForTenant finds an item of the acting tenant
func (r *GormItemRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Item, error) {
	return findGuarded[catalog.Item](r.db.WithContext(ctx), tenantID, id)
}

// FindByIDForUpdate finds and row-locks an item of the acting tenant
func (r *GormItemRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Item, error) {
	return findGuarded[catalog.Item](forUpdate(r.db.WithContext(ctx)), tenantID, id)
}

// FindAllForTenant lists the tenant's items
func (r *GormItemRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Item, error) {
	var items []catalog.Item
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantID), nameSearch("name", filter.Search), orderBy(filter, ItemSortFields, "name"), paginate(filter)).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new item
func (r *GormItemRepository) Create(ctx context.Context, item *catalog.Item) error {
	return translateError(r.db.WithContext(ctx).Create(item).Error)
}
