package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/application/uow"
	"github.com/mandibooks/backend/internal/domain/finance"
	"github.com/mandibooks/backend/internal/domain/shared"
	"github.com/mandibooks/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateBankAccountInput represents input for creating a bank account
type CreateBankAccountInput struct {
	TenantID       uuid.UUID
	BankName       string
	AccountNumber  string
	IFSC           string
	OpeningBalance decimal.Decimal
	IsDefault      bool
}

// AccountService manages the cash account and bank accounts of a tenant
type AccountService struct {
	scope    uow.TransactionScope
	recorder *BookRecorder
	logger   *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(scope uow.TransactionScope, recorder *BookRecorder, logger *zap.Logger) *AccountService {
	return &AccountService{scope: scope, recorder: recorder, logger: logger}
}

// CreateBankAccount adds a bank account. The first account of a tenant
// becomes its default.
func (s *AccountService) CreateBankAccount(ctx context.Context, input CreateBankAccountInput) (*BankAccountDTO, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "bank_account", "create")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrTenantID, input.TenantID.String())

	s.logger.Info("Creating bank account",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("bank_name", input.BankName),
	)

	account, err := finance.NewBankAccount(input.TenantID, input.BankName, input.AccountNumber, input.IFSC, input.OpeningBalance)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		exists, err := repos.BankAccounts().ExistsByAccountNumber(ctx, input.TenantID, account.AccountNumber)
		if err != nil {
			return fmt.Errorf("failed to check account number: %w", err)
		}
		if exists {
			return shared.NewDomainError("ALREADY_EXISTS", "Bank account number already exists")
		}

		makeDefault := input.IsDefault
		if !makeDefault {
			if _, err := repos.BankAccounts().FindDefault(ctx, input.TenantID); err != nil {
				if !shared.IsNotFound(err) {
					return fmt.Errorf("failed to find default bank account: %w", err)
				}
				makeDefault = true
			}
		}
		if makeDefault {
			if err := repos.BankAccounts().ClearDefault(ctx, input.TenantID); err != nil {
				return fmt.Errorf("failed to clear default bank account: %w", err)
			}
			account.SetDefault(true)
		}
		if err := repos.BankAccounts().Create(ctx, account); err != nil {
			return fmt.Errorf("failed to create bank account: %w", err)
		}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Bank account created",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("bank_account_id", account.ID.String()),
		zap.Bool("default", account.IsDefault),
	)
	dto := toBankAccountDTO(account)
	return &dto, nil
}

// SetDefaultBankAccount makes the account the one non-cash payments without
// an explicit account post to.
func (s *AccountService) SetDefaultBankAccount(ctx context.Context, tenantID, accountID uuid.UUID) (*BankAccountDTO, error) {
	var account *finance.BankAccount
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		account, err = repos.BankAccounts().FindByIDForUpdate(ctx, tenantID, accountID)
		if err != nil {
			return err
		}
		if !account.Active {
			return shared.NewValidationError("bank_account_id", "bank account is inactive")
		}
		if err := repos.BankAccounts().ClearDefault(ctx, tenantID); err != nil {
			return fmt.Errorf("failed to clear default bank account: %w", err)
		}
		account.SetDefault(true)
		return repos.BankAccounts().SaveWithLock(ctx, account)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Default bank account changed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("bank_account_id", accountID.String()),
	)
	dto := toBankAccountDTO(account)
	return &dto, nil
}

// ListBankAccounts lists the tenant's bank accounts
func (s *AccountService) ListBankAccounts(ctx context.Context, tenantID uuid.UUID) ([]BankAccountDTO, error) {
	var accounts []finance.BankAccount
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		filter := shared.DefaultFilter()
		filter.PageSize = 100
		filter.OrderBy = "created_at"
		filter.OrderDir = "asc"
		accounts, err = repos.BankAccounts().FindAllForTenant(ctx, tenantID, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	dtos := make([]BankAccountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toBankAccountDTO(&accounts[i])
	}
	return dtos, nil
}

// GetCashAccount returns the tenant's cash account, provisioning it on
// first access.
func (s *AccountService) GetCashAccount(ctx context.Context, tenantID uuid.UUID) (*CashAccountDTO, error) {
	var dto *CashAccountDTO
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		account, err := s.recorder.LockPool(ctx, repos, tenantID, finance.BookCash, nil)
		if err != nil {
			return err
		}
		state := account.State()
		dto = &CashAccountDTO{
			ID:             account.GetID(),
			OpeningBalance: state.OpeningBalance,
			Balance:        state.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}
