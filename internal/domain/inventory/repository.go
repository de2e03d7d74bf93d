package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
)

// StockMovementRepository stores the append-only movement log
type StockMovementRepository interface {
	Create(ctx context.Context, movement *StockMovement) error
	// FindAllByItem returns the full log of an item in insertion order
	FindAllByItem(ctx context.Context, tenantID, itemID uuid.UUID) ([]StockMovement, error)
	FindByItem(ctx context.Context, tenantID, itemID uuid.UUID, filter shared.Filter) ([]StockMovement, int64, error)
	FindBySource(ctx context.Context, tenantID, sourceID uuid.UUID) ([]StockMovement, error)
}

// StockBalanceRepository stores the rebuildable balance cache
type StockBalanceRepository interface {
	// FindByItem returns the cache row or shared.ErrNotFound
	FindByItem(ctx context.Context, tenantID, itemID uuid.UUID) (*StockBalance, error)
	FindByItemForUpdate(ctx context.Context, tenantID, itemID uuid.UUID) (*StockBalance, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]StockBalance, error)
	Create(ctx context.Context, balance *StockBalance) error
	SaveWithLock(ctx context.Context, balance *StockBalance) error
}
