package identity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mandibooks/backend/internal/domain/shared"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant is a trading business (one mandi firm). Every other record carries
// its ID and may only reference records of the same tenant.
type Tenant struct {
	shared.BaseAggregateRoot
	Code   string       `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name   string       `gorm:"type:varchar(200);not null"`
	Status TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new tenant with required fields
func NewTenant(code, name string) (*Tenant, error) {
	code = strings.TrimSpace(code)
	if code == "" || len(code) > 50 {
		return nil, shared.NewValidationError("code", "must be 1-50 characters")
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 200 {
		return nil, shared.NewValidationError("name", "must be 1-200 characters")
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            TenantStatusActive,
	}, nil
}

// IsActive reports whether the tenant may record transactions
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// Suspend blocks further bookkeeping for the tenant
func (t *Tenant) Suspend() {
	t.Status = TenantStatusSuspended
	t.UpdatedAt = time.Now().UTC()
	t.IncrementVersion()
}

// Activate re-enables a suspended tenant
func (t *Tenant) Activate() {
	t.Status = TenantStatusActive
	t.UpdatedAt = time.Now().UTC()
	t.IncrementVersion()
}

// GetTenantID returns the tenant's own ID so a tenant can be guarded like
// any tenant-scoped entity.
func (t *Tenant) GetTenantID() uuid.UUID {
	return t.ID
}

// EntityName implements shared.Named
func (Tenant) EntityName() string { return "tenant" }
