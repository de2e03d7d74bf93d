package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/application/uow"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/mandibooks/backend/internal/domain/partner"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/domain/trade"
	"github.com/mandibooks/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrPaymentInProgress is returned when a request with the same idempotency
// key is still being applied.
var ErrPaymentInProgress = shared.NewDomainError("CONCURRENCY_CONFLICT", "A payment with this idempotency key is in progress")

// ApplyPaymentInput represents input for applying a payment to an invoice
type ApplyPaymentInput struct {
	TenantID  uuid.UUID
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	Mode      finance.PaymentMode
	Date      time.Time
	Remark    string
	// IdempotencyKey makes retries of the same request apply once
	IdempotencyKey string
}

// PaymentConfig tunes the payment service
type PaymentConfig struct {
	Idempotency shared.IdempotencyConfig
	// LockTTL bounds how long the per-invoice lock is held
	LockTTL time.Duration
}

// DefaultPaymentConfig returns the default payment configuration
func DefaultPaymentConfig() PaymentConfig {
	return PaymentConfig{
		Idempotency: shared.DefaultIdempotencyConfig(),
		LockTTL:     30 * time.Second,
	}
}

// PaymentService applies payments to invoices. A payment moves the invoice's
// paid amount, the party balance and one cash or bank book in a single unit
// of work.
type PaymentService struct {
	scope       uow.TransactionScope
	recorder    *BookRecorder
	idempotency shared.IdempotencyStore
	locker      shared.Locker
	config      PaymentConfig
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService. idempotency and locker
// may be nil; row locks still serialize writers on the invoice.
func NewPaymentService(
	scope uow.TransactionScope,
	recorder *BookRecorder,
	idempotency shared.IdempotencyStore,
	locker shared.Locker,
	config PaymentConfig,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		scope:       scope,
		recorder:    recorder,
		idempotency: idempotency,
		locker:      locker,
		config:      config,
		logger:      logger,
	}
}

// ApplyPayment applies amount to one invoice. Sales payments are money in;
// purchase payments are money out. Overpayment, payment on a paid invoice,
// payment links on purchase invoices and non-cash payments with no bank
// account to post to are rejected before anything is written.
func (s *PaymentService) ApplyPayment(ctx context.Context, input ApplyPaymentInput) (*PaymentResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "apply")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, input.TenantID.String(),
		telemetry.SpanAttrInvoiceID, input.InvoiceID.String(),
		telemetry.SpanAttrAmount, input.Amount.String(),
	)

	if input.Mode == nil {
		return nil, shared.NewValidationError("mode", "is required")
	}
	amount := shared.RoundMoney(input.Amount)
	if err := shared.RequirePositive("amount", amount); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentMode, string(input.Mode.Kind()))

	if input.IdempotencyKey != "" {
		result, err := s.checkIdempotency(ctx, input)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if result != nil {
			return result, nil
		}
	}

	if s.locker != nil {
		release, err := s.locker.Acquire(ctx, "invoice:"+input.InvoiceID.String(), s.config.LockTTL)
		if err != nil {
			s.releaseKey(ctx, input)
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to lock invoice: %w", err)
		}
		defer release()
	}

	var result *PaymentResult
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		result, err = s.applyInTx(ctx, repos, input, amount)
		return err
	})
	if err != nil {
		s.releaseKey(ctx, input)
		if input.IdempotencyKey != "" && errors.Is(err, shared.ErrAlreadyExists) {
			// A concurrent request with the same key won the insert
			if replay, rerr := s.findReplay(ctx, input); rerr == nil && replay != nil {
				return replay, nil
			}
		}
		telemetry.RecordError(span, err)
		s.logger.Warn("Payment rejected",
			zap.String("tenant_id", input.TenantID.String()),
			zap.String("invoice_id", input.InvoiceID.String()),
			zap.String("amount", amount.StringFixed(2)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Payment applied",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("invoice_id", input.InvoiceID.String()),
		zap.String("payment_id", result.Payment.ID.String()),
		zap.String("mode", string(result.Payment.Mode)),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("invoice_status", result.InvoiceStatus),
	)
	return result, nil
}

func (s *PaymentService) applyInTx(ctx context.Context, repos uow.TransactionalRepositories, input ApplyPaymentInput, amount decimal.Decimal) (*PaymentResult, error) {
	guard := shared.NewTenantGuard(input.TenantID)

	invoice, err := repos.Invoices().FindByIDForUpdate(ctx, input.TenantID, input.InvoiceID)
	if err != nil {
		return nil, err
	}
	if err := guard.Check(invoice); err != nil {
		return nil, err
	}
	if invoice.IsPurchase() && input.Mode.Kind() == finance.ModePaymentLink {
		return nil, shared.NewValidationError("mode", "payment links are only accepted on sales invoices").
			WithExpected("CASH|BANK|CHEQUE|UPI", string(input.Mode.Kind()))
	}
	if err := invoice.ApplyPayment(amount); err != nil {
		return nil, err
	}

	party, err := uow.LockParty(ctx, repos, input.TenantID, invoice.Party())
	if err != nil {
		return nil, fmt.Errorf("failed to lock invoice party: %w", err)
	}
	if err := shared.CheckPair(invoice, party); err != nil {
		return nil, err
	}

	pool, err := s.recorder.LockPoolFor(ctx, repos, input.TenantID, input.Mode)
	if err != nil {
		return nil, err
	}
	var bankAccountID *uuid.UUID
	if p := pool.Pool(); p.Book == finance.BookBank {
		bankAccountID = &p.AccountID
	}

	payment, err := finance.NewPayment(input.TenantID, invoice.ID, invoice.Party(), amount, input.Mode, bankAccountID)
	if err != nil {
		return nil, err
	}
	payment.WithDate(input.Date).WithIdempotencyKey(input.IdempotencyKey)
	payment.Remark = input.Remark

	entry, err := s.recorder.AppendInTx(ctx, repos, input.TenantID, pool, EntryInput{
		Date:        payment.PaymentDate,
		Description: paymentDescription(invoice, payment),
		Amount:      payment.SignedAmount(),
		Reference:   finance.LedgerReference{Type: finance.RefPayment, ID: &payment.ID},
	})
	if err != nil {
		return nil, err
	}
	payment.LedgerEntryID = &entry.ID
	if err := repos.Payments().Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	before, after := party.GetBalances().ReduceBalance(amount)
	if err := uow.SaveParty(ctx, repos, party); err != nil {
		return nil, err
	}
	ptx, err := partner.NewPartyTransaction(input.TenantID, party.Ref(), partner.PartyTxPayment, partner.PartyAccountBalance, amount.Neg(), before, after)
	if err != nil {
		return nil, err
	}
	ptx.WithSource("PAYMENT", payment.ID, invoice.InvoiceNumber)
	if err := uow.RecordPartyTransaction(ctx, repos, ptx); err != nil {
		return nil, err
	}

	if err := repos.Invoices().SaveWithLock(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	return &PaymentResult{
		Payment:       toPaymentDTO(payment),
		InvoiceStatus: string(invoice.Status),
		PaidAmount:    invoice.PaidAmount,
		BalanceAmount: invoice.BalanceAmount,
		PartyBalance:  after,
		PoolBalance:   pool.State().Balance,
	}, nil
}

func paymentDescription(invoice *trade.Invoice, payment *finance.Payment) string {
	verb := "Received"
	if payment.Direction == finance.PaymentMade {
		verb = "Paid"
	}
	desc := fmt.Sprintf("%s %s against %s", verb, payment.ModeKind, invoice.InvoiceNumber)
	if ref := payment.Mode().Reference(); ref != "" {
		desc += " (" + ref + ")"
	}
	return desc
}

// checkIdempotency returns the earlier result when the key was already
// accepted, and otherwise reserves the key for this request.
func (s *PaymentService) checkIdempotency(ctx context.Context, input ApplyPaymentInput) (*PaymentResult, error) {
	if replay, err := s.findReplay(ctx, input); err != nil || replay != nil {
		return replay, err
	}
	if s.idempotency == nil || !s.config.Idempotency.Enabled {
		return nil, nil
	}

	marked, err := s.idempotency.MarkProcessed(ctx, s.storeKey(input), s.config.Idempotency.TTL)
	if err != nil {
		// The unique key on payments still rejects duplicates
		s.logger.Warn("Idempotency store unavailable", zap.Error(err))
		return nil, nil
	}
	if marked {
		return nil, nil
	}

	replay, err := s.findReplay(ctx, input)
	if err != nil {
		return nil, err
	}
	if replay == nil {
		return nil, ErrPaymentInProgress
	}
	return replay, nil
}

func (s *PaymentService) findReplay(ctx context.Context, input ApplyPaymentInput) (*PaymentResult, error) {
	var result *PaymentResult
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		payment, err := repos.Payments().FindByIdempotencyKey(ctx, input.TenantID, input.IdempotencyKey)
		if shared.IsNotFound(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up idempotency key: %w", err)
		}
		if payment.InvoiceID != input.InvoiceID || !payment.Amount.Equal(shared.RoundMoney(input.Amount)) {
			return shared.NewValidationError("idempotency_key", "was already used for a different payment")
		}
		invoice, err := repos.Invoices().FindByIDForTenant(ctx, input.TenantID, payment.InvoiceID)
		if err != nil {
			return err
		}
		result = &PaymentResult{
			Payment:       toPaymentDTO(payment),
			InvoiceStatus: string(invoice.Status),
			PaidAmount:    invoice.PaidAmount,
			BalanceAmount: invoice.BalanceAmount,
			Replayed:      true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if result != nil {
		s.logger.Info("Payment replayed for idempotency key",
			zap.String("tenant_id", input.TenantID.String()),
			zap.String("payment_id", result.Payment.ID.String()),
		)
	}
	return result, nil
}

func (s *PaymentService) storeKey(input ApplyPaymentInput) string {
	return "payment:" + input.TenantID.String() + ":" + input.IdempotencyKey
}

func (s *PaymentService) releaseKey(ctx context.Context, input ApplyPaymentInput) {
	if input.IdempotencyKey == "" || s.idempotency == nil || !s.config.Idempotency.Enabled {
		return
	}
	if err := s.idempotency.Release(ctx, s.storeKey(input)); err != nil {
		s.logger.Warn("Failed to release idempotency key", zap.String("key", input.IdempotencyKey), zap.Error(err))
	}
}

// ListInvoicePayments lists the payments applied to an invoice
func (s *PaymentService) ListInvoicePayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PaymentDTO, error) {
	var payments []finance.Payment
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		if _, err := repos.Invoices().FindByIDForTenant(ctx, tenantID, invoiceID); err != nil {
			return err
		}
		var err error
		payments, err = repos.Payments().FindByInvoice(ctx, tenantID, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	dtos := make([]PaymentDTO, len(payments))
	for i := range payments {
		dtos[i] = toPaymentDTO(&payments[i])
	}
	return dtos, nil
}
