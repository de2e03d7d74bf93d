package uow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
)

// LockParty loads the vendor or retailer ref points to, locks its row and
// checks it belongs to tenantID.
func LockParty(ctx context.Context, repos TransactionalRepositories, tenantID uuid.UUID, ref partner.PartyRef) (partner.Party, error) {
	var (
		party partner.Party
		err   error
	)
	switch ref.Type() {
	case partner.PartyTypeVendor:
		var v *partner.Vendor
		v, err = repos.Vendors().FindByIDForUpdate(ctx, tenantID, ref.ID())
		if err == nil {
			party = v
		}
	case partner.PartyTypeRetailer:
		var r *partner.Retailer
		r, err = repos.Retailers().FindByIDForUpdate(ctx, tenantID, ref.ID())
		if err == nil {
			party = r
		}
	default:
		return nil, shared.NewValidationError("party", "is required")
	}
	if err != nil {
		return nil, err
	}
	if err := shared.NewTenantGuard(tenantID).Check(party); err != nil {
		return nil, err
	}
	return party, nil
}

// SaveParty writes a locked party back with its version check
func SaveParty(ctx context.Context, repos TransactionalRepositories, party partner.Party) error {
	switch p := party.(type) {
	case *partner.Vendor:
		if err := repos.Vendors().SaveWithLock(ctx, p); err != nil {
			return fmt.Errorf("failed to save vendor: %w", err)
		}
	case *partner.Retailer:
		if err := repos.Retailers().SaveWithLock(ctx, p); err != nil {
			return fmt.Errorf("failed to save retailer: %w", err)
		}
	default:
		return fmt.Errorf("unsupported party %T", party)
	}
	return nil
}

// RecordPartyTransaction appends one entry to the party ledger
func RecordPartyTransaction(ctx context.Context, repos TransactionalRepositories, tx *partner.PartyTransaction) error {
	if err := repos.PartyTransactions().Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to record party transaction: %w", err)
	}
	return nil
}
