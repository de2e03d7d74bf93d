package crate

import (
	"context"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
)

// CrateTransactionRepository stores crate exchanges. Records are append-only.
type CrateTransactionRepository interface {
	Create(ctx context.Context, tx *CrateTransaction) error
	FindByParty(ctx context.Context, tenantID uuid.UUID, party partner.PartyRef, filter shared.Filter) ([]CrateTransaction, int64, error)
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]CrateTransaction, error)
	// SumDeltaByParty folds the crate log of a party: ΣGIVEN − ΣRECEIVED − ΣRETURNED
	SumDeltaByParty(ctx context.Context, tenantID uuid.UUID, party partner.PartyRef) (int64, error)
}
