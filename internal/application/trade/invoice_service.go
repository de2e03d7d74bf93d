package trade

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	appcrate "github.com/mandibooks/backend/internal/application/crate"
	appinventory "github.com/mandibooks/backend/internal/application/inventory"
	"github.com/mandibooks/backend/internal/application/uow"
	"github.com/mandibooks/backend/internal/domain/catalog"
	"github.com/mandibooks/backend/internal/domain/crate"
	"github.com/mandibooks/backend/internal/domain/inventory"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/domain/trade"
	"github.com/mandibooks/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InvoiceService creates invoices and closes them out
type InvoiceService struct {
	scope  uow.TransactionScope
	stock  *appinventory.StockLedgerService
	crates *appcrate.CrateService
	logger *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	scope uow.TransactionScope,
	stock *appinventory.StockLedgerService,
	crates *appcrate.CrateService,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{scope: scope, stock: stock, crates: crates, logger: logger}
}

// CreateInvoiceWithItems creates a purchase or sales invoice in one unit of
// work: the invoice and its lines, one stock movement per line (IN for
// purchases, OUT for sales after checking availability), the party balance
// and its ledger entry, and any crates exchanged with the goods.
func (s *InvoiceService) CreateInvoiceWithItems(ctx context.Context, input CreateInvoiceInput) (*InvoiceDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create_with_items")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, input.TenantID.String(),
		"kind", string(input.Kind),
		"items_count", len(input.Items),
	)

	ref, err := invoicePartyRef(input)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if input.CratesGiven < 0 || input.CratesReceived < 0 {
		return nil, shared.NewValidationError("crates", "cannot be negative")
	}

	s.logger.Info("Creating invoice",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("kind", string(input.Kind)),
		zap.String("party", ref.String()),
		zap.Int("items", len(input.Items)),
	)

	var invoice *trade.Invoice
	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if input.Number != "" {
			exists, err := repos.Invoices().ExistsByNumber(ctx, input.TenantID, input.Number)
			if err != nil {
				return fmt.Errorf("failed to check invoice number: %w", err)
			}
			if exists {
				return shared.NewDomainError("ALREADY_EXISTS", "Invoice number already exists")
			}
		}

		party, err := uow.LockParty(ctx, repos, input.TenantID, ref)
		if err != nil {
			return err
		}
		items, err := lockItems(ctx, repos, input.TenantID, input.Items)
		if err != nil {
			return err
		}

		lines := make([]trade.LineInput, len(input.Items))
		for i, line := range input.Items {
			lines[i] = trade.LineInput{
				Item:     items[line.ItemID],
				Quantity: inventory.NewQuantity(line.Weight, line.Crates, line.Boxes),
				Rate:     line.Rate,
				RateUnit: line.RateUnit,
			}
		}

		header := trade.Header{Number: input.Number, Date: input.Date, Notes: input.Notes}
		switch p := party.(type) {
		case *partner.Vendor:
			invoice, err = trade.NewPurchaseInvoice(input.TenantID, p, header, lines, trade.PurchaseTerms{
				CommissionPercent: input.CommissionPercent,
				Charges:           input.Charges,
			})
		case *partner.Retailer:
			invoice, err = trade.NewSalesInvoice(input.TenantID, p, header, lines, trade.SalesTerms{
				Charges:  input.Charges,
				Discount: input.Discount,
			})
		default:
			err = fmt.Errorf("unsupported party %T", party)
		}
		if err != nil {
			return err
		}

		if err := repos.Invoices().Create(ctx, invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		for i := range invoice.Items {
			line := &invoice.Items[i]
			if _, err := s.stock.RecordMovementInTx(ctx, repos, input.TenantID, items[line.ItemID], invoice.StockDirection(), line.Quantity, invoice.StockReference()); err != nil {
				return err
			}
		}

		before, after := party.GetBalances().AddBalance(invoice.Total)
		if err := uow.SaveParty(ctx, repos, party); err != nil {
			return err
		}
		ptx, err := partner.NewPartyTransaction(input.TenantID, ref, partner.PartyTxInvoice, partner.PartyAccountBalance, invoice.Total, before, after)
		if err != nil {
			return err
		}
		ptx.WithSource("INVOICE", invoice.ID, invoice.InvoiceNumber)
		if err := uow.RecordPartyTransaction(ctx, repos, ptx); err != nil {
			return err
		}

		return s.exchangeCrates(ctx, repos, input, invoice, party)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Invoice rejected",
			zap.String("tenant_id", input.TenantID.String()),
			zap.String("kind", string(input.Kind)),
			zap.Error(err),
		)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrInvoiceID, invoice.ID.String())
	s.logger.Info("Invoice created",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("total", invoice.Total.StringFixed(2)),
	)
	return toInvoiceDTO(invoice), nil
}

func (s *InvoiceService) exchangeCrates(ctx context.Context, repos uow.TransactionalRepositories, input CreateInvoiceInput, invoice *trade.Invoice, party partner.Party) error {
	exchanges := []struct {
		direction crate.Direction
		quantity  int64
	}{
		{crate.DirectionGiven, input.CratesGiven},
		{crate.DirectionReceived, input.CratesReceived},
	}
	for _, ex := range exchanges {
		if ex.quantity == 0 {
			continue
		}
		tx, err := crate.NewCrateTransaction(input.TenantID, party.Ref(), ex.direction, ex.quantity)
		if err != nil {
			return err
		}
		tx.WithInvoice(invoice.ID).WithDate(invoice.InvoiceDate)
		tx.Remark = invoice.InvoiceNumber
		if err := s.crates.RecordInTx(ctx, repos, input.TenantID, party, tx, nil); err != nil {
			return err
		}
	}
	return nil
}

func invoicePartyRef(input CreateInvoiceInput) (partner.PartyRef, error) {
	switch input.Kind {
	case trade.InvoiceKindPurchase:
		if input.RetailerID != nil {
			return partner.PartyRef{}, shared.NewValidationError("retailer_id", "must be empty on purchase invoices")
		}
		if input.VendorID == nil {
			return partner.PartyRef{}, shared.NewValidationError("vendor_id", "is required on purchase invoices")
		}
		return partner.NewPartyRef(partner.PartyTypeVendor, nil, input.VendorID)
	case trade.InvoiceKindSales:
		if input.VendorID != nil {
			return partner.PartyRef{}, shared.NewValidationError("vendor_id", "must be empty on sales invoices")
		}
		if input.RetailerID == nil {
			return partner.PartyRef{}, shared.NewValidationError("retailer_id", "is required on sales invoices")
		}
		return partner.NewPartyRef(partner.PartyTypeRetailer, input.RetailerID, nil)
	}
	return partner.PartyRef{}, shared.NewValidationError("kind", "must be PURCHASE or SALES").
		WithExpected("PURCHASE|SALES", string(input.Kind))
}

// lockItems locks every distinct item of the lines in id order
func lockItems(ctx context.Context, repos uow.TransactionalRepositories, tenantID uuid.UUID, lines []LineItemInput) (map[uuid.UUID]*catalog.Item, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for i, line := range lines {
		if line.ItemID == uuid.Nil {
			return nil, shared.NewValidationError(fmt.Sprintf("items[%d].item_id", i), "is required")
		}
		if !seen[line.ItemID] {
			seen[line.ItemID] = true
			ids = append(ids, line.ItemID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	items := make(map[uuid.UUID]*catalog.Item, len(ids))
	guard := shared.NewTenantGuard(tenantID)
	for _, id := range ids {
		item, err := repos.Items().FindByIDForUpdate(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if err := guard.Check(item); err != nil {
			return nil, err
		}
		if !item.Active {
			return nil, shared.NewValidationError("item_id", "item is inactive").WithExpected("active item", id.String())
		}
		items[id] = item
	}
	return items, nil
}

// MarkInvoiceForcedPaid closes a sales invoice whose remaining balance will
// not be collected. The remainder is written off as the retailer's
// shortfall; no money moves, so no book entry is made.
func (s *InvoiceService) MarkInvoiceForcedPaid(ctx context.Context, tenantID, invoiceID uuid.UUID, remark string) (*InvoiceDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "mark_forced_paid")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, tenantID.String(),
		telemetry.SpanAttrInvoiceID, invoiceID.String(),
	)

	var invoice *trade.Invoice
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		invoice, err = repos.Invoices().FindByIDForUpdate(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if err := shared.NewTenantGuard(tenantID).Check(invoice); err != nil {
			return err
		}
		remainder, err := invoice.MarkForcedPaid()
		if err != nil {
			return err
		}

		party, err := uow.LockParty(ctx, repos, tenantID, invoice.Party())
		if err != nil {
			return err
		}
		retailer, ok := party.(*partner.Retailer)
		if !ok {
			return fmt.Errorf("sales invoice %s has no retailer", invoice.ID)
		}
		before, after, err := retailer.WriteOffShortfall(remainder)
		if err != nil {
			return err
		}
		if err := uow.SaveParty(ctx, repos, retailer); err != nil {
			return err
		}
		ptx, err := partner.NewPartyTransaction(tenantID, retailer.Ref(), partner.PartyTxWriteOff, partner.PartyAccountBalance, remainder.Neg(), before, after)
		if err != nil {
			return err
		}
		ptx.WithSource("INVOICE", invoice.ID, invoice.InvoiceNumber).WithRemark(remark)
		if err := uow.RecordPartyTransaction(ctx, repos, ptx); err != nil {
			return err
		}

		if err := repos.Invoices().SaveWithLock(ctx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Force-paid rejected",
			zap.String("tenant_id", tenantID.String()),
			zap.String("invoice_id", invoiceID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Invoice force-paid",
		zap.String("tenant_id", tenantID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("shortfall", invoice.ShortfallAmount.StringFixed(2)),
	)
	return toInvoiceDTO(invoice), nil
}

// GetInvoice returns an invoice with its lines
func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceDTO, error) {
	var invoice *trade.Invoice
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		invoice, err = repos.Invoices().FindByIDForTenant(ctx, tenantID, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceDTO(invoice), nil
}

// ListInvoices lists invoice headers, newest first
func (s *InvoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, f InvoiceListFilter) (shared.Paginated[InvoiceDTO], error) {
	filter := f.ToDomainFilter()
	var invoices []trade.Invoice
	var total int64
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		invoices, total, err = repos.Invoices().FindAllForTenant(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		return shared.Paginated[InvoiceDTO]{}, err
	}
	dtos := make([]InvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = *toInvoiceDTO(&invoices[i])
	}
	return shared.NewPaginated(dtos, total, filter.Page, filter.PageSize), nil
}
