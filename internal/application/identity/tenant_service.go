package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/application/uow"
	"github.com/mandibooks/backend/internal/domain/identity"
	"github.com/mandibooks/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CreateTenantInput represents input for creating a tenant
type CreateTenantInput struct {
	Code string
	Name string
}

// TenantDTO represents a tenant
type TenantDTO struct {
	ID        uuid.UUID             `json:"id"`
	Code      string                `json:"code"`
	Name      string                `json:"name"`
	Status    identity.TenantStatus `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
}

// TenantService handles tenant management
type TenantService struct {
	scope  uow.TransactionScope
	logger *zap.Logger
}

// NewTenantService creates a new TenantService
func NewTenantService(scope uow.TransactionScope, logger *zap.Logger) *TenantService {
	return &TenantService{scope: scope, logger: logger}
}

// Create creates a new tenant
func (s *TenantService) Create(ctx context.Context, input CreateTenantInput) (*TenantDTO, error) {
	s.logger.Info("Creating new tenant", zap.String("code", input.Code))

	tenant, err := identity.NewTenant(input.Code, input.Name)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		existing, err := repos.Tenants().FindByCode(ctx, tenant.Code)
		if err == nil && existing != nil {
			return shared.NewDomainError("ALREADY_EXISTS", "Tenant code already exists")
		}
		if err != nil && !shared.IsNotFound(err) {
			return fmt.Errorf("failed to check tenant code: %w", err)
		}
		return repos.Tenants().Save(ctx, tenant)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Tenant created successfully",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("code", tenant.Code),
	)
	return toTenantDTO(tenant), nil
}

// GetByID returns a tenant by ID
func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	var tenant *identity.Tenant
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		tenant, err = repos.Tenants().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toTenantDTO(tenant), nil
}

// EnsureActive returns an error unless the tenant exists and is active.
// Request middleware calls it before any bookkeeping operation.
func (s *TenantService) EnsureActive(ctx context.Context, id uuid.UUID) error {
	tenant, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if tenant.Status != identity.TenantStatusActive {
		return shared.NewDomainError("FORBIDDEN", "Tenant is suspended")
	}
	return nil
}

// Suspend blocks further bookkeeping for a tenant
func (s *TenantService) Suspend(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	return s.setStatus(ctx, id, (*identity.Tenant).Suspend)
}

// Activate re-enables a suspended tenant
func (s *TenantService) Activate(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	return s.setStatus(ctx, id, (*identity.Tenant).Activate)
}

func (s *TenantService) setStatus(ctx context.Context, id uuid.UUID, apply func(*identity.Tenant)) (*TenantDTO, error) {
	var tenant *identity.Tenant
	err := s.scope.Execute(ctx, func(repos uow.TransactionalRepositories) error {
		var err error
		tenant, err = repos.Tenants().FindByID(ctx, id)
		if err != nil {
			return err
		}
		apply(tenant)
		return repos.Tenants().Save(ctx, tenant)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Tenant status changed",
		zap.String("tenant_id", id.String()),
		zap.String("status", string(tenant.Status)),
	)
	return toTenantDTO(tenant), nil
}

func toTenantDTO(tenant *identity.Tenant) *TenantDTO {
	return &TenantDTO{
		ID:        tenant.ID,
		Code:      tenant.Code,
		Name:      tenant.Name,
		Status:    tenant.Status,
		CreatedAt: tenant.CreatedAt,
	}
}
