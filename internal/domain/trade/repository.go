package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	shared.Filter
	Kind    InvoiceKind
	Status  InvoiceStatus
	PartyID *uuid.UUID
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByIDForTenant loads the invoice with its line items
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate loads the invoice header and locks its row
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]Invoice, int64, error)
	ExistsByNumber(ctx context.Context, tenantID uuid.UUID, number string) (bool, error)
	// Create inserts the invoice together with its line items
	Create(ctx context.Context, invoice *Invoice) error
	// SaveWithLock persists the header if its version is unchanged
	SaveWithLock(ctx context.Context, invoice *Invoice) error
}
