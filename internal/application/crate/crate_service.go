package crate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appfinance "github.com/mandibooks/backend/internal/application/finance"
	"github.com/mandibooks/backend/internal/application/uow"
	"github.com/mandibooks/backend/internal/domain/crate"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config holds the crate policy of the deployment
type Config struct {
	// AllowNegativeBalance accepts returns of more crates than the party
	// holds. When false such returns are rejected.
	AllowNegativeBalance bool
}

// RecordInput represents input for recording a crate exchange
type RecordInput struct {
	TenantID   uuid.UUID
	PartyType  partner.PartyType
	RetailerID *uuid.UUID
	VendorID   *uuid.UUID
	Direction  crate.Direction
	Quantity   int64
	// DepositAmount is collected on GIVEN and refunded otherwise
	DepositAmount decimal.Decimal
	// DepositMode is the book the deposit posts to; nil means cash
	DepositMode finance.PaymentMode
	InvoiceID   *uuid.UUID
	Date        time.Time
	Remark      string
}

// CrateTransactionDTO represents a recorded crate exchange
type CrateTransactionDTO struct {
	ID              uuid.UUID         `json:"id"`
	PartyType       partner.PartyType `json:"party_type"`
	PartyID         uuid.UUID         `json:"party_id"`
	Direction       crate.Direction   `json:"direction"`
	Quantity        int64             `json:"quantity"`
	DepositAmount   decimal.Decimal   `json:"deposit_amount"`
	InvoiceID       *uuid.UUID        `json:"invoice_id,omitempty"`
	LedgerEntryID   *uuid.UUID        `json:"ledger_entry_id,omitempty"`
	BalanceBefore   int64             `json:"balance_before"`
	BalanceAfter    int64             `json:"balance_after"`
	Remark          string            `json:"remark,omitempty"`
	TransactionDate time.Time         `json:"transaction_date"`
}

// CrateLedgerDTO is the crate position of a party with its exchanges
type CrateLedgerDTO struct {
	PartyType      partner.PartyType                     `json:"party_type"`
	PartyID        uuid.UUID                             `json:"party_id"`
	CrateBalance   int64                                 `json:"crate_balance"`
	DepositBalance decimal.Decimal                       `json:"deposit_balance"`
	// LogBalance is the crate balance folded from the exchange log
	LogBalance   int64                                 `json:"log_balance"`
	Transactions shared.Paginated[CrateTransactionDTO] `json:"transactions"`
}

// CrateService tracks crates lent to and returned by parties
type CrateService struct {
	scope    uow.TransactionScope
	recorder *appfinance.BookRecorder
	config   Config
	logger   *zap.Logger
}

// NewCrateService creates a new CrateService
func NewCrateService(scope uow.TransactionScope, recorder *appfinance.BookRecorder, config Config, logger *zap.Logger) *CrateService {
	return &CrateService{scope: scope, recorder: recorder, config: config, logger: logger}
}

// RecordCrateTransaction records one crate exchange with a vendor or a
// retailer, moves the party's crate count and posts any deposit to the
// cash or bank book.
func (s *CrateService) RecordCrateTransaction(ctx context.Context, input RecordInput) (*CrateTransactionDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "crate", "record_transaction")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, input.TenantID.String(),
		"direction", string(input.Direction),
		"quantity", input.Quantity,
	)

	ref, err := partner.NewPartyRef(input.PartyType, input.RetailerID, input.VendorID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrPartyID, ref.ID().String())

	tx, err := crate.NewCrateTransaction(input.TenantID, ref, input.Direction, input.Quantity)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if _, err := tx.WithDeposit(input.DepositAmount); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	tx.WithDate(input.Date)
	tx.Remark = input.Remark

	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if input.InvoiceID != nil {
			invoice, err := repos.Invoices().FindByIDForTenant(ctx, input.TenantID, *input.InvoiceID)
			if err != nil {
				return err
			}
			if err := shared.CheckPair(tx, invoice); err != nil {
				return err
			}
			if invoice.Party() != ref {
				return shared.NewValidationError("invoice_id", "invoice belongs to a different party").
					WithExpected(ref.String(), invoice.Party().String())
			}
			tx.WithInvoice(invoice.ID)
		}

		party, err := uow.LockParty(ctx, repos, input.TenantID, ref)
		if err != nil {
			return err
		}
		return s.RecordInTx(ctx, repos, input.TenantID, party, tx, input.DepositMode)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Crate transaction rejected",
			zap.String("tenant_id", input.TenantID.String()),
			zap.String("party", ref.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Crate transaction recorded",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("party", ref.String()),
		zap.String("direction", string(tx.Direction)),
		zap.Int64("quantity", tx.Quantity),
		zap.Int64("balance_after", tx.BalanceAfter),
	)
	return toCrateTransactionDTO(tx), nil
}

// RecordInTx applies tx to party, which must be locked in the same unit of
// work, posts the deposit if any and stores the exchange.
func (s *CrateService) RecordInTx(
	ctx context.Context,
	repos uow.TransactionalRepositories,
	tenantID uuid.UUID,
	party partner.Party,
	tx *crate.CrateTransaction,
	depositMode finance.PaymentMode,
) error {
	if err := shared.NewTenantGuard(tenantID).Check(tx, party); err != nil {
		return err
	}
	depositBefore := party.GetBalances().CrateDepositBalance
	if err := tx.ApplyTo(party, s.config.AllowNegativeBalance); err != nil {
		return err
	}

	if tx.HasDeposit() {
		if depositMode == nil {
			depositMode = finance.Cash{}
		}
		pool, err := s.recorder.LockPoolFor(ctx, repos, tenantID, depositMode)
		if err != nil {
			return err
		}
		entry, err := s.recorder.AppendInTx(ctx, repos, tenantID, pool, appfinance.EntryInput{
			Date:        tx.TransactionDate,
			Description: depositDescription(tx),
			Amount:      tx.DepositDelta(),
			Reference:   finance.LedgerReference{Type: finance.RefCrateDeposit, ID: &tx.ID},
		})
		if err != nil {
			return err
		}
		tx.LedgerEntryID = &entry.ID
	}

	if err := uow.SaveParty(ctx, repos, party); err != nil {
		return err
	}
	if err := repos.CrateTransactions().Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to create crate transaction: %w", err)
	}
	return recordCrateEvents(ctx, repos, tenantID, party, tx, depositBefore)
}

type crateEvent struct {
	account               partner.PartyAccount
	amount, before, after decimal.Decimal
}

// recordCrateEvents writes the exchange, and its deposit if any, into the
// party transaction log so the party ledger shows crate movements too.
func recordCrateEvents(
	ctx context.Context,
	repos uow.TransactionalRepositories,
	tenantID uuid.UUID,
	party partner.Party,
	tx *crate.CrateTransaction,
	depositBefore decimal.Decimal,
) error {
	events := []crateEvent{{
		account: partner.PartyAccountCrates,
		amount:  decimal.NewFromInt(tx.Delta()),
		before:  decimal.NewFromInt(tx.BalanceBefore),
		after:   decimal.NewFromInt(tx.BalanceAfter),
	}}
	if tx.HasDeposit() {
		events = append(events, crateEvent{
			account: partner.PartyAccountCrateDeposit,
			amount:  tx.DepositDelta(),
			before:  depositBefore,
			after:   party.GetBalances().CrateDepositBalance,
		})
	}

	for _, e := range events {
		ptx, err := partner.NewPartyTransaction(tenantID, party.Ref(), partner.PartyTxCrate, e.account, e.amount, e.before, e.after)
		if err != nil {
			return err
		}
		ptx.WithSource("CRATE_TRANSACTION", tx.ID, string(tx.Direction)).WithRemark(tx.Remark)
		ptx.TransactionDate = tx.TransactionDate
		if err := uow.RecordPartyTransaction(ctx, repos, ptx); err != nil {
			return err
		}
	}
	return nil
}

func depositDescription(tx *crate.CrateTransaction) string {
	if tx.Direction == crate.DirectionGiven {
		return fmt.Sprintf("Crate deposit collected for %d crates", tx.Quantity)
	}
	return fmt.Sprintf("Crate deposit refunded for %d crates", tx.Quantity)
}

// PartyCrateLedger returns the crate position of a party and a page of its
// exchanges, newest first.
func (s *CrateService) PartyCrateLedger(ctx context.Context, tenantID uuid.UUID, ref partner.PartyRef, page, pageSize int) (*CrateLedgerDTO, error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 && pageSize <= 100 {
		filter.PageSize = pageSize
	}
	filter.OrderBy = "transaction_date"

	var result *CrateLedgerDTO
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		balances, err := loadPartyBalances(ctx, repos, tenantID, ref)
		if err != nil {
			return err
		}
		logBalance, err := repos.CrateTransactions().SumDeltaByParty(ctx, tenantID, ref)
		if err != nil {
			return fmt.Errorf("failed to fold crate log: %w", err)
		}
		txs, total, err := repos.CrateTransactions().FindByParty(ctx, tenantID, ref, filter)
		if err != nil {
			return fmt.Errorf("failed to list crate transactions: %w", err)
		}
		dtos := make([]CrateTransactionDTO, len(txs))
		for i := range txs {
			dtos[i] = *toCrateTransactionDTO(&txs[i])
		}
		result = &CrateLedgerDTO{
			PartyType:      ref.Type(),
			PartyID:        ref.ID(),
			CrateBalance:   balances.CrateBalance,
			DepositBalance: balances.CrateDepositBalance,
			LogBalance:     logBalance,
			Transactions:   shared.NewPaginated(dtos, total, filter.Page, filter.PageSize),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func loadPartyBalances(ctx context.Context, repos uow.TransactionalRepositories, tenantID uuid.UUID, ref partner.PartyRef) (*partner.Balances, error) {
	switch ref.Type() {
	case partner.PartyTypeVendor:
		v, err := repos.Vendors().FindByIDForTenant(ctx, tenantID, ref.ID())
		if err != nil {
			return nil, err
		}
		return v.GetBalances(), nil
	case partner.PartyTypeRetailer:
		r, err := repos.Retailers().FindByIDForTenant(ctx, tenantID, ref.ID())
		if err != nil {
			return nil, err
		}
		return r.GetBalances(), nil
	}
	return nil, shared.NewValidationError("party", "is required")
}

func toCrateTransactionDTO(tx *crate.CrateTransaction) *CrateTransactionDTO {
	party := tx.Party()
	return &CrateTransactionDTO{
		ID:              tx.ID,
		PartyType:       party.Type(),
		PartyID:         party.ID(),
		Direction:       tx.Direction,
		Quantity:        tx.Quantity,
		DepositAmount:   tx.DepositAmount,
		InvoiceID:       tx.InvoiceID,
		LedgerEntryID:   tx.LedgerEntryID,
		BalanceBefore:   tx.BalanceBefore,
		BalanceAfter:    tx.BalanceAfter,
		Remark:          tx.Remark,
		TransactionDate: tx.TransactionDate,
	}
}
