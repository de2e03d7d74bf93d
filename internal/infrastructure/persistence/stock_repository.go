package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/inventory"
	"github.com/mandibooks/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormStockMovementRepository implements StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Create appends a movement to the log
func (r *GormStockMovementRepository) Create(ctx context.Context, movement *inventory.StockMovement) error {
	return translateError(r.db.WithContext(ctx).Create(movement).Error)
}

// FindAllByItem returns an item's full log in insertion order
func (r *GormStockMovementRepository) FindAllByItem(ctx context.Context, tenantID, itemID uuid.UUID) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND item_id = ?", tenantID, itemID).
		Order("created_at").Order("id").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// FindByItem returns a page of an item's log and its total size
func (r *GormStockMovementRepository) FindByItem(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&inventory.StockMovement{}).
			Where("tenant_id = ? AND item_id = ?", tenantID, itemID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var movements []inventory.StockMovement
	err := base().
		Scopes(orderBy(filter, StockMovementSortFields, "created_at"), paginate(filter)).
		Find(&movements).Error
	if err != nil {
		return nil, 0, err
	}
	return movements, total, nil
}

// FindBySource returns the movements produced by one source document
func (r *GormStockMovementRepository) FindBySource(ctx context.Context, tenantID, sourceID uuid.UUID) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND source_id = ?", tenantID, sourceID).
		Order("created_at").
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// GormStockBalanceRepository implements StockBalanceRepository using GORM
type GormStockBalanceRepository struct {
	db *gorm.DB
}

// NewGormStockBalanceRepository creates a new GormStockBalanceRepository
func NewGormStockBalanceRepository(db *gorm.DB) *GormStockBalanceRepository {
	return &GormStockBalanceRepository{db: db}
}

// FindByItem returns the cache row of an item
func (r *GormStockBalanceRepository) FindByItem(ctx context.Context, tenantID, itemID uuid.UUID) (*inventory.StockBalance, error) {
	return r.findByItem(r.db.WithContext(ctx), tenantID, itemID)
}

// FindByItemForUpdate returns and row-locks the cache row of an item
func (r *GormStockBalanceRepository) FindByItemForUpdate(ctx context.Context, tenantID, itemID uuid.UUID) (*inventory.StockBalance, error) {
	return r.findByItem(forUpdate(r.db.WithContext(ctx)), tenantID, itemID)
}

func (r *GormStockBalanceRepository) findByItem(query *gorm.DB, tenantID, itemID uuid.UUID) (*inventory.StockBalance, error) {
	var balance inventory.StockBalance
	if err := query.Where("tenant_id = ? AND item_id = ?", tenantID, itemID).Take(&balance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("stock_balance", itemID)
		}
		return nil, err
	}
	return &balance, nil
}

// FindAllForTenant returns every cache row of the tenant
func (r *GormStockBalanceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]inventory.StockBalance, error) {
	var balances []inventory.StockBalance
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantID)).Order("item_id").Find(&balances).Error; err != nil {
		return nil, err
	}
	return balances, nil
}

// Create inserts the cache row of an item
func (r *GormStockBalanceRepository) Create(ctx context.Context, balance *inventory.StockBalance) error {
	return translateError(r.db.WithContext(ctx).Create(balance).Error)
}

// SaveWithLock updates the cache row under optimistic locking
func (r *GormStockBalanceRepository) SaveWithLock(ctx context.Context, balance *inventory.StockBalance) error {
	return saveWithLock(ctx, r.db, balance)
}
