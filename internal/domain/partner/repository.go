package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
)

// VendorRepository defines the interface for vendor persistence
type VendorRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Vendor, error)
	// FindByIDForUpdate loads the vendor and locks its row until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Vendor, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Vendor, error)
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error)
	Create(ctx context.Context, vendor *Vendor) error
	// SaveWithLock persists the vendor if its version is unchanged since it was loaded
	SaveWithLock(ctx context.Context, vendor *Vendor) error
}

// RetailerRepository defines the interface for retailer persistence
type RetailerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Retailer, error)
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Retailer, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Retailer, error)
	ExistsByName(ctx context.Context, tenantID uuid.UUID, name string) (bool, error)
	Create(ctx context.Context, retailer *Retailer) error
	SaveWithLock(ctx context.Context, retailer *Retailer) error
}

// PartyTransactionRepository stores the party ledger. Records are append-only.
type PartyTransactionRepository interface {
	Create(ctx context.Context, tx *PartyTransaction) error
	FindByParty(ctx context.Context, tenantID uuid.UUID, party PartyRef, filter shared.Filter) ([]PartyTransaction, int64, error)
}
