package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
)

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)
	// FindByIDForUpdate loads the item and locks its row until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Item, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Item, error)
	Create(ctx context.Context, item *Item) error
}
