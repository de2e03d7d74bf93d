package partner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/application/uow"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PartyService manages vendors and retailers and their ledgers
type PartyService struct {
	scope  uow.TransactionScope
	logger *zap.Logger
}

// NewPartyService creates a new PartyService
func NewPartyService(scope uow.TransactionScope, logger *zap.Logger) *PartyService {
	return &PartyService{scope: scope, logger: logger}
}

// CreateVendor creates a vendor. Names are unique per tenant.
func (s *PartyService) CreateVendor(ctx context.Context, input CreatePartyInput) (*PartyDTO, error) {
	s.logger.Info("Creating vendor", zap.String("tenant_id", input.TenantID.String()), zap.String("name", input.Name))

	vendor, err := partner.NewVendor(input.TenantID, input.Name)
	if err != nil {
		return nil, err
	}
	vendor.SetContact(input.Phone, input.Address)
	if err := vendor.SetCommissionPercent(input.CommissionPercent); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		exists, err := repos.Vendors().ExistsByName(ctx, input.TenantID, vendor.Name)
		if err != nil {
			return fmt.Errorf("failed to check vendor name: %w", err)
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "Vendor name already exists")
		}
		return repos.Vendors().Create(ctx, vendor)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Vendor created", zap.String("vendor_id", vendor.ID.String()))
	dto := toVendorDTO(vendor)
	return &dto, nil
}

// CreateRetailer creates a retailer. Names are unique per tenant.
func (s *PartyService) CreateRetailer(ctx context.Context, input CreatePartyInput) (*PartyDTO, error) {
	s.logger.Info("Creating retailer", zap.String("tenant_id", input.TenantID.String()), zap.String("name", input.Name))

	retailer, err := partner.NewRetailer(input.TenantID, input.Name)
	if err != nil {
		return nil, err
	}
	retailer.SetContact(input.Phone, input.Address)
	if err := retailer.SetCreditLimit(input.CreditLimit); err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		exists, err := repos.Retailers().ExistsByName(ctx, input.TenantID, retailer.Name)
		if err != nil {
			return fmt.Errorf("failed to check retailer name: %w", err)
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "Retailer name already exists")
		}
		return repos.Retailers().Create(ctx, retailer)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Retailer created", zap.String("retailer_id", retailer.ID.String()))
	dto := toRetailerDTO(retailer)
	return &dto, nil
}

// GetParty returns a vendor or a retailer
func (s *PartyService) GetParty(ctx context.Context, tenantID uuid.UUID, ref partner.PartyRef) (*PartyDTO, error) {
	var dto PartyDTO
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		dto, err = loadParty(ctx, repos, tenantID, ref)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &dto, nil
}

// ListVendors lists the tenant's vendors by name
func (s *PartyService) ListVendors(ctx context.Context, tenantID uuid.UUID, f PartyListFilter) ([]PartyDTO, error) {
	var vendors []partner.Vendor
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		vendors, err = repos.Vendors().FindAllForTenant(ctx, tenantID, f.ToSharedFilter())
		return err
	})
	if err != nil {
		return nil, err
	}
	dtos := make([]PartyDTO, len(vendors))
	for i := range vendors {
		dtos[i] = toVendorDTO(&vendors[i])
	}
	return dtos, nil
}

// ListRetailers lists the tenant's retailers by name
func (s *PartyService) ListRetailers(ctx context.Context, tenantID uuid.UUID, f PartyListFilter) ([]PartyDTO, error) {
	var retailers []partner.Retailer
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		retailers, err = repos.Retailers().FindAllForTenant(ctx, tenantID, f.ToSharedFilter())
		return err
	})
	if err != nil {
		return nil, err
	}
	dtos := make([]PartyDTO, len(retailers))
	for i := range retailers {
		dtos[i] = toRetailerDTO(&retailers[i])
	}
	return dtos, nil
}

// PartyLedger returns a party with a page of its balance history, newest first
func (s *PartyService) PartyLedger(ctx context.Context, tenantID uuid.UUID, ref partner.PartyRef, page, pageSize int) (*PartyLedgerDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "party", "ledger")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, tenantID.String(), telemetry.SpanAttrPartyID, ref.ID().String())

	filter := PartyListFilter{Page: page, PageSize: pageSize}.ToSharedFilter()
	filter.OrderBy = "transaction_date"
	filter.OrderDir = "desc"

	var result *PartyLedgerDTO
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		party, err := loadParty(ctx, repos, tenantID, ref)
		if err != nil {
			return err
		}
		txs, total, err := repos.PartyTransactions().FindByParty(ctx, tenantID, ref, filter)
		if err != nil {
			return fmt.Errorf("failed to load party ledger: %w", err)
		}
		dtos := make([]PartyTransactionDTO, len(txs))
		for i := range txs {
			dtos[i] = toPartyTransactionDTO(&txs[i])
		}
		result = &PartyLedgerDTO{
			Party:        party,
			Transactions: shared.NewPaginated(dtos, total, filter.Page, filter.PageSize),
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return result, nil
}

// AdjustOutstandingCredit moves a retailer's udhaar: positive amounts extend
// credit, negative amounts settle it.
func (s *PartyService) AdjustOutstandingCredit(ctx context.Context, tenantID, retailerID uuid.UUID, delta decimal.Decimal, note string) (*PartyDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "party", "adjust_outstanding_credit")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrPartyID, retailerID.String(),
		telemetry.SpanAttrAmount, delta.String(),
	)

	delta = shared.RoundMoney(delta)
	var retailer *partner.Retailer
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		retailer, err = repos.Retailers().FindByIDForUpdate(ctx, tenantID, retailerID)
		if err != nil {
			return err
		}
		if err := shared.NewTenantGuard(tenantID).Check(retailer); err != nil {
			return err
		}
		before, after, err := retailer.AdjustOutstandingCredit(delta)
		if err != nil {
			return err
		}
		if err := repos.Retailers().SaveWithLock(ctx, retailer); err != nil {
			return fmt.Errorf("failed to save retailer: %w", err)
		}
		ptx, err := partner.NewPartyTransaction(tenantID, retailer.Ref(), partner.PartyTxCreditAdjustment, partner.PartyAccountOutstandingCredit, delta, before, after)
		if err != nil {
			return err
		}
		ptx.WithRemark(note)
		return uow.RecordPartyTransaction(ctx, repos, ptx)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Credit adjustment rejected", zap.String("retailer_id", retailerID.String()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Outstanding credit adjusted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("retailer_id", retailerID.String()),
		zap.String("delta", delta.StringFixed(2)),
		zap.String("outstanding", retailer.OutstandingCredit.StringFixed(2)),
	)
	dto := toRetailerDTO(retailer)
	return &dto, nil
}

func loadParty(ctx context.Context, repos uow.TransactionalRepositories, tenantID uuid.UUID, ref partner.PartyRef) (PartyDTO, error) {
	switch ref.Type() {
	case partner.PartyTypeVendor:
		v, err := repos.Vendors().FindByIDForTenant(ctx, tenantID, ref.ID())
		if err != nil {
			return PartyDTO{}, err
		}
		return toVendorDTO(v), nil
	case partner.PartyTypeRetailer:
		r, err := repos.Retailers().FindByIDForTenant(ctx, tenantID, ref.ID())
		if err != nil {
			return PartyDTO{}, err
		}
		return toRetailerDTO(r), nil
	}
	return PartyDTO{}, shared.NewValidationError("party_type", "must be VENDOR or RETAILER")
}
