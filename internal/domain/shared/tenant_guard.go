package shared

import (
	"reflect"

	"github.com/google/uuid"
)

// TenantScoped is implemented by every entity that belongs to a tenant.
type TenantScoped interface {
	GetID() uuid.UUID
	GetTenantID() uuid.UUID
}

// Named lets an entity report its kind in tenant mismatch errors.
type Named interface {
	EntityName() string
}

// TenantGuard checks that entities referenced by a mutation belong to the
// acting tenant. It must run before any write of the mutation.
type TenantGuard struct {
	tenantID uuid.UUID
}

// NewTenantGuard creates a guard for the acting tenant
func NewTenantGuard(tenantID uuid.UUID) TenantGuard {
	return TenantGuard{tenantID: tenantID}
}

// TenantID returns the acting tenant
func (g TenantGuard) TenantID() uuid.UUID {
	return g.tenantID
}

// Check returns a TenantMismatchError for the first entity owned by another
// tenant. Nil entries are skipped so optional references can be passed as-is.
func (g TenantGuard) Check(entities ...TenantScoped) error {
	if g.tenantID == uuid.Nil {
		return NewValidationError("tenant_id", "acting tenant is required")
	}
	for _, e := range entities {
		if isNil(e) {
			continue
		}
		if e.GetTenantID() != g.tenantID {
			name := "entity"
			if n, ok := e.(Named); ok {
				name = n.EntityName()
			}
			return &TenantMismatchError{
				Entity:         name,
				EntityID:       e.GetID(),
				ExpectedTenant: g.tenantID,
				ActualTenant:   e.GetTenantID(),
			}
		}
	}
	return nil
}

// CheckPair validates that a proposed entity and all entities it references
// share the proposed entity's tenant.
func CheckPair(owner TenantScoped, refs ...TenantScoped) error {
	return NewTenantGuard(owner.GetTenantID()).Check(refs...)
}

func isNil(e TenantScoped) bool {
	if e == nil {
		return true
	}
	v := reflect.ValueOf(e)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
