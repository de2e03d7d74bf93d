package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/crate"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCrateTransactionRepository implements CrateTransactionRepository using GORM
type GormCrateTransactionRepository struct {
	db *gorm.DB
}

// NewGormCrateTransactionRepository creates a new GormCrateTransactionRepository
func NewGormCrateTransactionRepository(db *gorm.DB) *GormCrateTransactionRepository {
	return &GormCrateTransactionRepository{db: db}
}

// Create appends a crate exchange
func (r *GormCrateTransactionRepository) Create(ctx context.Context, tx *crate.CrateTransaction) error {
	return translateError(r.db.WithContext(ctx).Create(tx).Error)
}

// partyColumn is the nullable id column that holds the party of a crate row
func partyColumn(party partner.PartyRef) string {
	if party.Type() == partner.PartyTypeVendor {
		return "vendor_id"
	}
	return "retailer_id"
}

// FindByParty returns a page of a party's crate exchanges and its total size
func (r *GormCrateTransactionRepository) FindByParty(ctx context.Context, tenantID uuid.UUID, party partner.PartyRef, filter shared.Filter) ([]crate.CrateTransaction, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&crate.CrateTransaction{}).
			Where("tenant_id = ? AND party_type = ?", tenantID, party.Type()).
			Where(partyColumn(party)+" = ?", party.ID())
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []crate.CrateTransaction
	err := base().
		Scopes(orderBy(filter, CrateTransactionSortFields, "transaction_date"), paginate(filter)).
		Find(&txs).Error
	if err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// FindByInvoice returns the crate exchanges recorded with an invoice
func (r *GormCrateTransactionRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]crate.CrateTransaction, error) {
	var txs []crate.CrateTransaction
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("created_at").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// SumDeltaByParty folds a party's crate log
func (r *GormCrateTransactionRepository) SumDeltaByParty(ctx context.Context, tenantID uuid.UUID, party partner.PartyRef) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&crate.CrateTransaction{}).
		Select("COALESCE(SUM(CASE WHEN direction = ? THEN quantity ELSE -quantity END), 0)", crate.DirectionGiven).
		Where("tenant_id = ? AND party_type = ?", tenantID, party.Type()).
		Where(partyColumn(party)+" = ?", party.ID()).
		Scan(&sum).Error
	return sum, err
}
