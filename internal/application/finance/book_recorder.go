package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/application/uow"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EntryInput describes one cashbook or bankbook line to append
type EntryInput struct {
	Date        time.Time
	Description string
	// Amount is signed: positive for an inflow, negative for an outflow
	Amount    decimal.Decimal
	Reference finance.LedgerReference
}

// BookRecorder appends entries to the cash and bank books and keeps every
// running balance of the pool chained.
type BookRecorder struct {
	logger *zap.Logger
}

// NewBookRecorder creates a new BookRecorder
func NewBookRecorder(logger *zap.Logger) *BookRecorder {
	return &BookRecorder{logger: logger}
}

// LockPoolFor resolves and locks the pool a payment mode posts to
func (r *BookRecorder) LockPoolFor(ctx context.Context, repos uow.TransactionalRepositories, tenantID uuid.UUID, mode finance.PaymentMode) (finance.PoolAccount, error) {
	return r.LockPool(ctx, repos, tenantID, finance.Book(mode), mode.BankAccount())
}

// LockPool locks a pool. The cashbook posts to the tenant's cash account,
// created on first use. A bankbook posts to the named bank account or, when
// none is named, to the tenant's default.
func (r *BookRecorder) LockPool(ctx context.Context, repos uow.TransactionalRepositories, tenantID uuid.UUID, book finance.LedgerBook, accountID *uuid.UUID) (finance.PoolAccount, error) {
	switch book {
	case finance.BookCash:
		return r.lockCashAccount(ctx, repos, tenantID)
	case finance.BookBank:
	default:
		return nil, shared.NewValidationError("book", "must be CASHBOOK or BANKBOOK").WithExpected("CASHBOOK|BANKBOOK", string(book))
	}

	if accountID == nil {
		def, err := repos.BankAccounts().FindDefault(ctx, tenantID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewValidationError("bank_account_id", "no bank account given and no default bank account configured").
				WithExpected("bank account", "none")
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find default bank account: %w", err)
		}
		id := def.ID
		accountID = &id
	}

	account, err := repos.BankAccounts().FindByIDForUpdate(ctx, tenantID, *accountID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewValidationError("bank_account_id", "bank account does not exist").
			WithExpected("existing bank account", accountID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock bank account: %w", err)
	}
	if err := shared.NewTenantGuard(tenantID).Check(account); err != nil {
		return nil, err
	}
	if !account.Active {
		return nil, shared.NewValidationError("bank_account_id", "bank account is inactive")
	}
	return account, nil
}

func (r *BookRecorder) lockCashAccount(ctx context.Context, repos uow.TransactionalRepositories, tenantID uuid.UUID) (*finance.CashAccount, error) {
	account, err := repos.CashAccounts().FindByTenantForUpdate(ctx, tenantID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to lock cash account: %w", err)
	}

	account, err = finance.NewCashAccount(tenantID, decimal.Zero)
	if err != nil {
		return nil, err
	}
	if err := repos.CashAccounts().Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create cash account: %w", err)
	}
	r.logger.Info("Cash account provisioned", zap.String("tenant_id", tenantID.String()))
	return account, nil
}

// AppendInTx appends one entry to the pool of account, which must have been
// locked in the same unit of work. A backdated entry lands at its date
// position and every later entry is re-chained from it. The account's stored
// balance is set to the balance of the pool's last entry.
func (r *BookRecorder) AppendInTx(ctx context.Context, repos uow.TransactionalRepositories, tenantID uuid.UUID, account finance.PoolAccount, in EntryInput) (*finance.LedgerEntry, error) {
	if err := shared.NewTenantGuard(tenantID).Check(account); err != nil {
		return nil, err
	}
	pool := account.Pool()
	entry, err := finance.NewLedgerEntry(tenantID, pool, in.Date, in.Description, in.Amount, in.Reference)
	if err != nil {
		return nil, err
	}

	state := account.State()
	entry.Sequence = state.NextSequence()

	opening := state.OpeningBalance
	prev, err := repos.LedgerEntries().FindLastOnOrBefore(ctx, tenantID, pool, entry.EntryDate)
	switch {
	case err == nil:
		opening = prev.Balance
	case errors.Is(err, shared.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to find preceding ledger entry: %w", err)
	}

	later, err := repos.LedgerEntries().FindAfter(ctx, tenantID, pool, entry.EntryDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load later ledger entries: %w", err)
	}

	chain := append([]*finance.LedgerEntry{entry}, later...)
	closing := finance.Rechain(opening, chain)

	if err := repos.LedgerEntries().Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create ledger entry: %w", err)
	}
	for _, e := range later {
		if err := repos.LedgerEntries().UpdateBalance(ctx, e); err != nil {
			return nil, fmt.Errorf("failed to re-chain ledger entry %s: %w", e.ID, err)
		}
	}

	state.Balance = closing
	if err := savePool(ctx, repos, account); err != nil {
		return nil, err
	}

	if len(later) > 0 {
		r.logger.Info("Backdated ledger entry re-chained later entries",
			zap.String("tenant_id", tenantID.String()),
			zap.String("book", string(pool.Book)),
			zap.String("account_id", pool.AccountID.String()),
			zap.Int("rechained", len(later)),
		)
	}
	return entry, nil
}

func savePool(ctx context.Context, repos uow.TransactionalRepositories, account finance.PoolAccount) error {
	switch a := account.(type) {
	case *finance.CashAccount:
		if err := repos.CashAccounts().SaveWithLock(ctx, a); err != nil {
			return fmt.Errorf("failed to save cash account: %w", err)
		}
	case *finance.BankAccount:
		if err := repos.BankAccounts().SaveWithLock(ctx, a); err != nil {
			return fmt.Errorf("failed to save bank account: %w", err)
		}
	default:
		return fmt.Errorf("unsupported pool account %T", account)
	}
	return nil
}

// ManualEntryInput is a cash or bank entry made directly in a book
type ManualEntryInput struct {
	TenantID      uuid.UUID
	Book          finance.LedgerBook
	BankAccountID *uuid.UUID
	Date          time.Time
	Description   string
	Amount        decimal.Decimal
}

// LedgerService records manual book entries and answers book queries
type LedgerService struct {
	scope    uow.TransactionScope
	recorder *BookRecorder
	logger   *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(scope uow.TransactionScope, recorder *BookRecorder, logger *zap.Logger) *LedgerService {
	return &LedgerService{scope: scope, recorder: recorder, logger: logger}
}

// AppendEntry records a manual entry (owner drawings, cash deposited into
// the bank and similar) in the cashbook or a bankbook.
func (s *LedgerService) AppendEntry(ctx context.Context, in ManualEntryInput) (*LedgerEntryDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "append_entry")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, in.TenantID.String(),
		telemetry.SpanAttrAmount, in.Amount.String(),
		"book", string(in.Book),
	)

	if in.Book == finance.BookCash && in.BankAccountID != nil {
		return nil, shared.NewValidationError("bank_account_id", "must be empty for cashbook entries")
	}

	var entry *finance.LedgerEntry
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		account, err := s.recorder.LockPool(ctx, repos, in.TenantID, in.Book, in.BankAccountID)
		if err != nil {
			return err
		}
		entry, err = s.recorder.AppendInTx(ctx, repos, in.TenantID, account, EntryInput{
			Date:        in.Date,
			Description: in.Description,
			Amount:      in.Amount,
			Reference:   finance.LedgerReference{Type: finance.RefManual},
		})
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("Manual ledger entry rejected", zap.String("tenant_id", in.TenantID.String()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Manual ledger entry recorded",
		zap.String("tenant_id", in.TenantID.String()),
		zap.String("entry_id", entry.ID.String()),
		zap.String("book", string(entry.Book)),
	)
	return toLedgerEntryDTO(entry), nil
}

// BookQuery bounds a cashbook or bankbook listing. Zero dates are open.
type BookQuery struct {
	TenantID      uuid.UUID
	BankAccountID uuid.UUID
	From          time.Time
	To            time.Time
}

// Cashbook lists the tenant's cash entries between From and To with the
// balance carried in and out of the range.
func (s *LedgerService) Cashbook(ctx context.Context, q BookQuery) (*BookDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "cashbook")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, q.TenantID.String())

	var book *BookDTO
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		account, err := repos.CashAccounts().FindByTenant(ctx, q.TenantID)
		if errors.Is(err, shared.ErrNotFound) {
			book = emptyBook(finance.BookCash, uuid.Nil, decimal.Zero)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to find cash account: %w", err)
		}
		book, err = s.readBook(ctx, repos, q, account)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return book, nil
}

// Bankbook lists the entries of one bank account between From and To
func (s *LedgerService) Bankbook(ctx context.Context, q BookQuery) (*BookDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "bankbook")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrTenantID, q.TenantID.String(),
		"bank_account_id", q.BankAccountID.String(),
	)

	var book *BookDTO
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		account, err := repos.BankAccounts().FindByIDForTenant(ctx, q.TenantID, q.BankAccountID)
		if err != nil {
			return err
		}
		book, err = s.readBook(ctx, repos, q, account)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return book, nil
}

func (s *LedgerService) readBook(ctx context.Context, repos uow.TransactionalRepositories, q BookQuery, account finance.PoolAccount) (*BookDTO, error) {
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return nil, shared.NewValidationError("to", "must not be before from")
	}
	pool := account.Pool()
	opening := account.State().OpeningBalance
	if !q.From.IsZero() {
		prev, err := repos.LedgerEntries().FindLastBefore(ctx, q.TenantID, pool, finance.TruncateDay(q.From))
		switch {
		case err == nil:
			opening = prev.Balance
		case errors.Is(err, shared.ErrNotFound):
		default:
			return nil, fmt.Errorf("failed to find opening entry: %w", err)
		}
	}

	from, to := q.From, q.To
	if !from.IsZero() {
		from = finance.TruncateDay(from)
	}
	if !to.IsZero() {
		to = finance.TruncateDay(to)
	}
	entries, err := repos.LedgerEntries().FindRange(ctx, q.TenantID, pool, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger entries: %w", err)
	}

	book := emptyBook(pool.Book, pool.AccountID, opening)
	for _, e := range entries {
		book.Entries = append(book.Entries, *toLedgerEntryDTO(e))
		book.TotalInflow = book.TotalInflow.Add(e.Inflow)
		book.TotalOutflow = book.TotalOutflow.Add(e.Outflow)
		book.ClosingBalance = e.Balance
	}
	return book, nil
}

func emptyBook(book finance.LedgerBook, accountID uuid.UUID, opening decimal.Decimal) *BookDTO {
	return &BookDTO{
		Book:           book,
		AccountID:      accountID,
		OpeningBalance: opening,
		ClosingBalance: opening,
		TotalInflow:    decimal.Zero,
		TotalOutflow:   decimal.Zero,
		Entries:        []LedgerEntryDTO{},
	}
}
